// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

// Node is a decision node of a weighted pseudo-Boolean decision diagram. It
// tests whether Variable has value Value. The probability of a node is
// Weight*P(Then) + P(Else). The nodes at index FalseIndex and TrueIndex are
// the two terminals; their Variable field is not used.
type Node struct {
	Variable int     // tested variable
	Value    int     // tested value of the variable
	Then     int     // index of the cofactor when Variable == Value
	Else     int     // index of the cofactor when Variable != Value
	Weight   float64 // weight of the then edge
}

// ************************************************************

// frame is an element of the explicit evaluation stack. A frame stands for the
// edge between parent and node; the then flag records which cofactor of the
// parent node is, so that a node with two identical cofactors is combined
// correctly. The stamp identifies the context under which node is evaluated.
type frame struct {
	parent   int32
	node     int32
	stamp    uint32
	then     bool
	expanded bool
}

// mgframe is an element of the stack used for multigraph evaluation.
type mgframe struct {
	node     int32
	expanded bool
}
