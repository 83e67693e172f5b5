package ast

import "testing"

var testSpan = Span{File: "t.idl", Line: 1, Col: 1}

func TestIsNilNode(t *testing.T) {
	if !isNilNode(nil) {
		t.Error("nil interface not detected")
	}
	var b *Block
	if !isNilNode(b) {
		t.Error("typed nil pointer not detected")
	}
	if isNilNode(NewBlock(testSpan, nil)) {
		t.Error("live node reported nil")
	}
}

// A bodyless function hands adopt a typed nil *Block; it must not be
// wired in as a child.
func TestBodylessFunctionConstruction(t *testing.T) {
	d := NewFunctionDef(testSpan, "ext", nil, nil, nil, nil)
	for _, c := range d.children {
		if isNilNode(c) {
			t.Fatal("nil child adopted")
		}
	}
	Freeze(d)
}

func TestIfWithoutElseConstruction(t *testing.T) {
	st := NewIfStmt(testSpan, NewBoolLit(testSpan, true), NewBlock(testSpan, nil), nil)
	for _, c := range st.children {
		if isNilNode(c) {
			t.Fatal("nil child adopted")
		}
	}
	Freeze(st)
}
