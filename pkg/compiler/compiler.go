// Package compiler implements bracket abstraction: translating a
// lambda tree with de Bruijn indices into an SKI-family combinator
// expression, applying the K/B/C/S'/B*/C' peephole rewrites of
// unabstract.go at construction time rather than as a later pass.
package compiler

import (
	"ullambda/pkg/cell"
	"ullambda/pkg/heap"
	"ullambda/pkg/spine"
)

// Translator walks a lambda tree and produces a combinator graph,
// allocating on h and rooting intermediate results on s across any
// allocation that could trigger a collection.
type Translator struct {
	h *heap.Heap
	s *spine.Stack
}

// New builds a Translator over the given heap and spine stack.
func New(h *heap.Heap, s *spine.Stack) *Translator {
	return &Translator{h: h, s: s}
}

// Translate is the single exported entry point: Translate(program).
func Translate(root cell.Cell, h *heap.Heap, s *spine.Stack) (cell.Cell, error) {
	return New(h, s).Translate(root)
}

// Translate walks term, replacing every abstraction with the result of
// unabstract on its translated body, and every application with the
// pair of its translated function and argument.
func (t *Translator) Translate(term cell.Cell) (cell.Cell, error) {
	if !term.IsPair() {
		return term, nil
	}
	p := t.h.At(term.PairIndex())
	if p.Car == cell.LAMBDA {
		body := p.Cdr
		tb, err := t.Translate(body)
		if err != nil {
			return 0, err
		}
		return t.unabstract(tb)
	}

	f := p.Car
	a := p.Cdr
	if err := t.s.Push(a); err != nil {
		return 0, err
	}
	tf, err := t.Translate(f)
	if err != nil {
		return 0, err
	}
	if err := t.s.Push(tf); err != nil {
		return 0, err
	}
	ta, err := t.Translate(t.s.Peek(1))
	if err != nil {
		return 0, err
	}
	result, err := t.h.Pair(t.s.Peek(0), ta)
	if err != nil {
		return 0, err
	}
	t.s.Drop(2)
	return result, nil
}
