// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

// Persistence records which variables are shared by more than one tier of an
// architecture. The value of such a variable is decided in the first tier that
// mentions it and must stay fixed in every following tier.
type Persistence struct {
	count     []int   // number of tiers mentioning each variable
	sets      [][]int // persistence set of each tier, set variables first
	variables []int   // sorted union of the persistence sets
	first     []int   // first tier of each persistence variable, or -1
}

// NewPersistence computes the persistence sets of partitions taken in the
// order given by ordering (a list of partition ids, one per tier).
func NewPersistence(net *Network, parts []Partition, ordering []int) *Persistence {
	p := &Persistence{
		count: make([]int, net.Varnum()),
		sets:  make([][]int, len(ordering)),
		first: make([]int, net.Varnum()),
	}
	for _, id := range ordering {
		for _, v := range parts[id].Set {
			p.count[v]++
		}
		for _, v := range parts[id].Cutset {
			p.count[v]++
		}
	}
	for v := range p.first {
		p.first[v] = -1
	}
	for tier, id := range ordering {
		for _, list := range [2][]int{parts[id].Set, parts[id].Cutset} {
			for _, v := range list {
				if p.count[v] > 1 {
					p.sets[tier] = append(p.sets[tier], v)
					p.variables = setinsert(p.variables, v)
					if p.first[v] < 0 {
						p.first[v] = tier
					}
				}
			}
		}
	}
	return p
}

// Size returns the number of tiers.
func (p *Persistence) Size() int {
	return len(p.sets)
}

// Set returns the persistence set of a tier.
func (p *Persistence) Set(tier int) []int {
	return p.sets[tier]
}

// Variables returns the sorted list of all persistence variables.
func (p *Persistence) Variables() []int {
	return p.variables
}

// Count returns the number of tiers that mention variable v.
func (p *Persistence) Count(v int) int {
	return p.count[v]
}

// List returns a dense array indexed by variable telling whether a variable
// is a persistence variable.
func (p *Persistence) List() []bool {
	res := make([]bool, len(p.count))
	for _, v := range p.variables {
		res[v] = true
	}
	return res
}

// fillConditionTiers sets the condition tier of every persistence variable to
// the tier following the first tier that decides it; other variables get
// TierInit.
func (p *Persistence) fillConditionTiers(ct ConditionTierList) {
	for v := range ct {
		ct[v] = TierInit
		if p.first[v] >= 0 {
			ct[v] = uint8(p.first[v] + 1)
		}
	}
}
