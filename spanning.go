// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

// Spanning holds, for each tier, the sorted set of persistence variables
// decided in previous tiers that are still needed in this tier or after. The
// values of these variables form the key of the results cached for the tier.
// The spanning set of tier 0 is always empty.
type Spanning struct {
	sets [][]int
}

// NewSpanning derives the spanning sets from persistence sets with a forward
// scan over the tiers, decrementing the reference count of a variable each
// time a tier mentioning it is crossed.
func NewSpanning(p *Persistence) *Spanning {
	count := make([]int, len(p.count))
	copy(count, p.count)
	s := &Spanning{sets: make([][]int, p.Size())}
	var context []int
	for tier := 1; tier < p.Size(); tier++ {
		for _, v := range p.Set(tier - 1) {
			count[v]--
			if count[v] == 0 {
				context = seterase(context, v)
			} else {
				context = setinsert(context, v)
			}
		}
		s.sets[tier] = append([]int(nil), context...)
	}
	return s
}

// Size returns the number of tiers.
func (s *Spanning) Size() int {
	return len(s.sets)
}

// Set returns the spanning set of a tier.
func (s *Spanning) Set(tier int) []int {
	return s.sets[tier]
}
