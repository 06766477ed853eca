// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import "sort"

// Variable sets are represented by sorted slices of variable indices without
// duplicates.

// setinsert adds v to the sorted set s and returns the result.
func setinsert(s []int, v int) []int {
	k := sort.SearchInts(s, v)
	if k < len(s) && s[k] == v {
		return s
	}
	s = append(s, 0)
	copy(s[k+1:], s[k:])
	s[k] = v
	return s
}

// seterase removes v from the sorted set s and returns the result.
func seterase(s []int, v int) []int {
	k := sort.SearchInts(s, v)
	if k == len(s) || s[k] != v {
		return s
	}
	return append(s[:k], s[k+1:]...)
}

// setcontains reports whether v is in the sorted set s.
func setcontains(s []int, v int) bool {
	k := sort.SearchInts(s, v)
	return k < len(s) && s[k] == v
}

// setunion returns a new sorted set with the elements of a and b.
func setunion(a, b []int) []int {
	res := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			res = append(res, a[i])
			i++
		case a[i] > b[j]:
			res = append(res, b[j])
			j++
		default:
			res = append(res, a[i])
			i++
			j++
		}
	}
	res = append(res, a[i:]...)
	return append(res, b[j:]...)
}

// setoverlap reports whether two sorted sets have an element in common.
func setoverlap(a, b []int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return true
		}
	}
	return false
}

// setof returns the sorted set of the elements in s.
func setof(s ...int) []int {
	var res []int
	for _, v := range s {
		res = setinsert(res, v)
	}
	return res
}
