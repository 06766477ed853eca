// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextID(t *testing.T) {
	bn := diamond(t)
	vars := []int{0, 1, 3}
	assert.Equal(t, 12, contextwidth(bn.net, vars))
	assert.Equal(t, 1, contextwidth(bn.net, nil))

	seen := make(map[int]bool)
	ev := emptyEvidence(bn.net.Varnum())
	for id := 0; id < 12; id++ {
		setcontext(bn.net, vars, id, ev)
		assert.Equal(t, id, contextid(bn.net, vars, ev))
		seen[id] = true
	}
	assert.Len(t, seen, 12)

	ev[0], ev[1], ev[3] = 1, 2, 1
	// X0 is the least significant digit
	assert.Equal(t, 1+2*2+1*6, contextid(bn.net, vars, ev))
}

func TestXary(t *testing.T) {
	bn := diamond(t)
	vars := []int{0, 1, 3}
	ev := emptyEvidence(bn.net.Varnum())
	ev[1] = 2
	tests := []struct {
		name     string
		fixed    func(v int) bool
		expected []int
	}{
		{"free", func(int) bool { return false }, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{"X1 frozen", func(v int) bool { return v == 1 }, []int{4, 5, 10, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []int
			newxary(bn.net, vars, ev, tt.fixed).enumerate(func(id int) {
				ids = append(ids, id)
			})
			assert.Equal(t, tt.expected, ids)
		})
	}

	var ids []int
	newxary(bn.net, nil, ev, func(int) bool { return false }).enumerate(func(id int) {
		ids = append(ids, id)
	})
	assert.Equal(t, []int{0}, ids)
}

func TestSets(t *testing.T) {
	s := setof(5, 1, 3, 1)
	assert.Equal(t, []int{1, 3, 5}, s)
	assert.True(t, setcontains(s, 3))
	assert.False(t, setcontains(s, 4))
	assert.Equal(t, []int{1, 2, 3, 5, 6}, setunion(s, []int{2, 3, 6}))
	assert.True(t, setoverlap(s, []int{0, 5}))
	assert.False(t, setoverlap(s, []int{0, 2, 4}))
	assert.Equal(t, []int{1, 5}, seterase(s, 3))
}
