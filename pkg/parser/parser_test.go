package parser

import (
	"testing"

	"ullambda/pkg/cell"
	"ullambda/pkg/heap"
	"ullambda/pkg/spine"
)

// bitSlice replays a fixed sequence of bits, for tests that need exact
// control over the grammar's input without going through pkg/bitio.
type bitSlice struct {
	bits []int
	pos  int
}

func (b *bitSlice) ReadBit() (int, error) {
	if b.pos >= len(b.bits) {
		return 0, errEOF
	}
	v := b.bits[b.pos]
	b.pos++
	return v, nil
}

type eofError struct{}

func (eofError) Error() string { return "bitSlice exhausted" }

var errEOF error = eofError{}

func newParser(bits []int) (*Parser, *heap.Heap) {
	h := heap.New(64)
	s := spine.New(64)
	h.SetRoots(s)
	return New(&bitSlice{bits: bits}, h, s), h
}

func TestParseVariable(t *testing.T) {
	// '1' '0'  -> de Bruijn index 0
	p, _ := newParser([]int{1, 0})
	term, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !term.IsInt() || term.IntOf() != 0 {
		t.Errorf("Parse() = %v, want Int(0)", term)
	}
}

func TestParseVariableWithHigherIndex(t *testing.T) {
	// '1' '1' '1' '0' -> unary-encoded index 2
	p, _ := newParser([]int{1, 1, 1, 0})
	term, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !term.IsInt() || term.IntOf() != 2 {
		t.Errorf("Parse() = %v, want Int(2)", term)
	}
}

func TestParseAbstraction(t *testing.T) {
	// '00' then a variable '1' '0' -> \.0
	p, h := newParser([]int{0, 0, 1, 0})
	term, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !term.IsPair() {
		t.Fatalf("Parse() = %v, want a pair", term)
	}
	pair := h.At(term.PairIndex())
	if pair.Car != cell.LAMBDA {
		t.Errorf("abstraction.Car = %v, want LAMBDA", pair.Car)
	}
	if !pair.Cdr.IsInt() || pair.Cdr.IntOf() != 0 {
		t.Errorf("abstraction body = %v, want Int(0)", pair.Cdr)
	}
}

func TestParseApplication(t *testing.T) {
	// '01' then two variables: '1''0' (index 0) and '1''1''0' (index 1)
	p, h := newParser([]int{0, 1, 1, 0, 1, 1, 0})
	term, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !term.IsPair() {
		t.Fatalf("Parse() = %v, want a pair", term)
	}
	pair := h.At(term.PairIndex())
	if !pair.Car.IsInt() || pair.Car.IntOf() != 0 {
		t.Errorf("application.Car = %v, want Int(0)", pair.Car)
	}
	if !pair.Cdr.IsInt() || pair.Cdr.IntOf() != 1 {
		t.Errorf("application.Cdr = %v, want Int(1)", pair.Cdr)
	}
}

func TestParseTruncatedInputIsFatal(t *testing.T) {
	p, _ := newParser([]int{0, 1, 1, 0}) // application whose second term is missing
	if _, err := p.Parse(); err == nil {
		t.Fatalf("Parse on truncated input: expected error, got nil")
	}
}
