// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

// Context ids. The values of a list of variables (typically a spanning set)
// are encoded into an integer using a mixed radix, where the first variable of
// the list is the least significant digit. It is a perfect hash: the ids of a
// list range over [0..width) where width is the product of the dimensions.

// contextwidth returns the number of distinct context ids for vars.
func contextwidth(net *Network, vars []int) int {
	w := 1
	for _, v := range vars {
		w *= net.Dimension(v)
	}
	return w
}

// contextid returns the id of the values of vars in ev. Every variable in vars
// must be assigned.
func contextid(net *Network, vars []int, ev EvidenceList) int {
	id := 0
	for k := len(vars) - 1; k >= 0; k-- {
		id = id*net.Dimension(vars[k]) + ev[vars[k]]
	}
	return id
}

// setcontext writes the values encoded by id for vars into ev. It is the
// inverse of contextid.
func setcontext(net *Network, vars []int, id int, ev EvidenceList) {
	for _, v := range vars {
		d := net.Dimension(v)
		ev[v] = id % d
		id /= d
	}
}

// ************************************************************

// xary is a counter over the values of a list of variables, where some digits
// can be frozen.
type xary struct {
	dims   []int
	digits []int
	frozen []bool
}

// newxary returns a counter over vars, where the digits of the variables in
// vars for which fixed returns true are initialized from ev and never
// incremented. Other digits start at 0.
func newxary(net *Network, vars []int, ev EvidenceList, fixed func(v int) bool) *xary {
	x := &xary{
		dims:   make([]int, len(vars)),
		digits: make([]int, len(vars)),
		frozen: make([]bool, len(vars)),
	}
	for k, v := range vars {
		x.dims[k] = net.Dimension(v)
		if fixed(v) {
			x.frozen[k] = true
			x.digits[k] = ev[v]
		}
	}
	return x
}

// decimal returns the context id of the current digits.
func (x *xary) decimal() int {
	id := 0
	for k := len(x.digits) - 1; k >= 0; k-- {
		id = id*x.dims[k] + x.digits[k]
	}
	return id
}

// increment moves to the next value of the counter, skipping frozen digits.
// It returns false after the last value.
func (x *xary) increment() bool {
	for k := range x.digits {
		if x.frozen[k] {
			continue
		}
		x.digits[k]++
		if x.digits[k] < x.dims[k] {
			return true
		}
		x.digits[k] = 0
	}
	return false
}

// enumerate calls f on the id of every value of the counter, in increasing
// order of the free digits.
func (x *xary) enumerate(f func(id int)) {
	for {
		f(x.decimal())
		if !x.increment() {
			return
		}
	}
}
