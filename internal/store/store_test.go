// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	s, err := Open("", nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get("sprinkler", "d1", "Rain=yes")
	assert.ErrorIs(t, err, ErrNotFound)

	r := Record{Network: "sprinkler", Model: "d1", Evidence: "Rain=yes|Wet=yes", Strategy: "dataflow", Probability: 0.8, Joint: 0.24, Marginal: 0.3}
	require.NoError(t, s.Put(r))

	got, err := s.Get("sprinkler", "d1", "Rain=yes|Wet=yes")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.Created.IsZero())
	assert.Equal(t, "dataflow", got.Strategy)
	assert.Equal(t, "d1", got.Model)
	assert.InDelta(t, 0.8, got.Probability, 1e-12)
	assert.InDelta(t, 0.24, got.Joint, 1e-12)

	_, err = s.Get("other", "d1", "Rain=yes|Wet=yes")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModelDigest(t *testing.T) {
	s, err := Open("", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(Record{Network: "ab", Model: "d1", Evidence: "B=yes", Probability: 0.31}))
	_, err = s.Get("ab", "d2", "B=yes")
	assert.ErrorIs(t, err, ErrNotFound, "circuits recompiled under the same network name")

	require.NoError(t, s.Put(Record{Network: "ab", Model: "d2", Evidence: "B=yes", Probability: 0.4}))
	got, err := s.Get("ab", "d1", "B=yes")
	require.NoError(t, err)
	assert.InDelta(t, 0.31, got.Probability, 1e-12)
	got, err = s.Get("ab", "d2", "B=yes")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, got.Probability, 1e-12)
}

func TestReplaceAndCount(t *testing.T) {
	s, err := Open("", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(Record{Network: "a", Evidence: "X=0", Probability: 0.1}))
	require.NoError(t, s.Put(Record{Network: "a", Evidence: "X=0", Probability: 0.2}))
	require.NoError(t, s.Put(Record{Network: "a", Evidence: "X=1", Probability: 0.9}))
	require.NoError(t, s.Put(Record{Network: "a", Model: "d", Evidence: "X=1", Probability: 0.8}))
	require.NoError(t, s.Put(Record{Network: "b", Evidence: "X=0", Probability: 0.5}))

	got, err := s.Get("a", "", "X=0")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, got.Probability, 1e-12)

	n, err := s.Count("a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(Record{Network: "n", Model: "d", Evidence: "A=1", Probability: 0.5}))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get("n", "d", "A=1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.Probability, 1e-12)
}
