package compiler

import (
	"testing"

	"ullambda/pkg/cell"
	"ullambda/pkg/heap"
	"ullambda/pkg/spine"
)

func newTranslator() (*Translator, *heap.Heap) {
	h := heap.New(64)
	s := spine.New(64)
	h.SetRoots(s)
	return New(h, s), h
}

func TestUnabstractBoundVariable(t *testing.T) {
	tr, _ := newTranslator()
	got, err := tr.unabstract(cell.MakeInt(0))
	if err != nil {
		t.Fatalf("unabstract: %v", err)
	}
	if got != cell.CombI {
		t.Errorf("unabstract(Int(0)) = %v, want I", got)
	}
}

func TestUnabstractFreeVariableShiftsIndex(t *testing.T) {
	tr, h := newTranslator()
	got, err := tr.unabstract(cell.MakeInt(2))
	if err != nil {
		t.Fatalf("unabstract: %v", err)
	}
	if !got.IsPair() {
		t.Fatalf("unabstract(Int(2)) = %v, want a pair", got)
	}
	p := h.At(got.PairIndex())
	if p.Car != cell.CombK || p.Cdr != cell.MakeInt(1) {
		t.Errorf("unabstract(Int(2)) = %+v, want (K, Int(1))", p)
	}
}

func TestUnabstractConstantAtom(t *testing.T) {
	tr, h := newTranslator()
	got, err := tr.unabstract(cell.CombS)
	if err != nil {
		t.Fatalf("unabstract: %v", err)
	}
	if !got.IsPair() {
		t.Fatalf("unabstract(S) = %v, want a pair", got)
	}
	p := h.At(got.PairIndex())
	if p.Car != cell.CombK || p.Cdr != cell.CombS {
		t.Errorf("unabstract(S) = %+v, want (K, S)", p)
	}
}

func TestUnabstractEtaReducesApplicationToVariable(t *testing.T) {
	// \x.(S x) == S, the K-then-I peephole.
	tr, h := newTranslator()
	term, err := h.Pair(cell.CombS, cell.MakeInt(0))
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	got, err := tr.unabstract(term)
	if err != nil {
		t.Fatalf("unabstract: %v", err)
	}
	if got != cell.CombS {
		t.Errorf("unabstract(S x) = %v, want S", got)
	}
}

func TestUnabstractTwoConstantsFoldsIntoSingleK(t *testing.T) {
	// \x.(S K) does not use x at all, so both sides collapse under one K.
	tr, h := newTranslator()
	term, err := h.Pair(cell.CombS, cell.CombK)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	got, err := tr.unabstract(term)
	if err != nil {
		t.Fatalf("unabstract: %v", err)
	}
	if !got.IsPair() {
		t.Fatalf("unabstract(S K) = %v, want a pair", got)
	}
	outer := h.At(got.PairIndex())
	if outer.Car != cell.CombK {
		t.Fatalf("unabstract(S K).Car = %v, want K", outer.Car)
	}
	if !outer.Cdr.IsPair() {
		t.Fatalf("unabstract(S K).Cdr = %v, want a pair", outer.Cdr)
	}
	inner := h.At(outer.Cdr.PairIndex())
	if inner.Car != cell.CombS || inner.Cdr != cell.CombK {
		t.Errorf("unabstract(S K) inner = %+v, want (S, K)", inner)
	}
}

func TestTranslateIdentity(t *testing.T) {
	// \x.x
	h := heap.New(64)
	s := spine.New(64)
	h.SetRoots(s)
	body := cell.MakeInt(0)
	lam, err := h.Pair(cell.LAMBDA, body)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	got, err := Translate(lam, h, s)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != cell.CombI {
		t.Errorf("Translate(\\x.x) = %v, want I", got)
	}
}

func TestTranslateConstantFunction(t *testing.T) {
	// \x.\y.x reduces to K.
	h := heap.New(64)
	s := spine.New(64)
	h.SetRoots(s)
	inner, err := h.Pair(cell.LAMBDA, cell.MakeInt(1))
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	outer, err := h.Pair(cell.LAMBDA, inner)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	got, err := Translate(outer, h, s)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != cell.CombK {
		t.Errorf("Translate(\\x.\\y.x) = %v, want K", got)
	}
}
