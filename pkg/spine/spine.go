// Package spine implements the reducer's fixed-capacity spine stack: a
// downward-growing array of cell references that doubles as a
// garbage-collection root set.
package spine

import (
	"ullambda/pkg/cell"
	"ullambda/pkg/ulerr"
)

// Stack is a fixed-capacity array of Cell references. Slots
// [sp, len(cells)) are occupied; sp == len(cells) means empty. This
// mirrors clamb.c's RdStack, which grows its stack pointer downward
// from the end of a fixed array.
type Stack struct {
	cells []cell.Cell
	sp    int32
}

// New allocates a stack with the given capacity, every slot marked
// UNUSED so MaxDepth can find the high-water mark later.
func New(capacity int32) *Stack {
	s := &Stack{cells: make([]cell.Cell, capacity)}
	for i := range s.cells {
		s.cells[i] = cell.UNUSED
	}
	s.sp = int32(len(s.cells))
	return s
}

// SP returns the current stack pointer (index of the top element, or
// len(cells) if empty). Callers snapshot this as an activation's
// "bottom" marker.
func (s *Stack) SP() int32 { return s.sp }

// Push places c on top of the stack.
func (s *Stack) Push(c cell.Cell) error {
	if s.sp <= 0 {
		return ulerr.StackOverflow()
	}
	s.sp--
	s.cells[s.sp] = c
	return nil
}

// Pop removes and returns the top element.
func (s *Stack) Pop() cell.Cell {
	c := s.cells[s.sp]
	s.sp++
	return c
}

// Top returns the top element without removing it.
func (s *Stack) Top() cell.Cell { return s.cells[s.sp] }

// SetTop overwrites the top element in place.
func (s *Stack) SetTop(c cell.Cell) { s.cells[s.sp] = c }

// Peek returns the element n slots below the top (Peek(0) == Top()).
func (s *Stack) Peek(n int32) cell.Cell { return s.cells[s.sp+n] }

// Drop discards the top n elements.
func (s *Stack) Drop(n int32) { s.sp += n }

// SetAt overwrites the element n slots below the top in place.
func (s *Stack) SetAt(n int32, c cell.Cell) { s.cells[s.sp+n] = c }

// MaxDepth scans from the array's start for the first slot that is no
// longer UNUSED; every slot from there to the end has been occupied at
// some point, so their count is the deepest the stack has grown during
// this run.
func (s *Stack) MaxDepth() int32 {
	for i, c := range s.cells {
		if c != cell.UNUSED {
			return int32(len(s.cells)) - int32(i)
		}
	}
	return 0
}

// CopyRoots implements heap.RootSet: every occupied slot, from the
// current top through the end of the array, is a live root.
func (s *Stack) CopyRoots(copy func(cell.Cell) cell.Cell) {
	for i := s.sp; i < int32(len(s.cells)); i++ {
		s.cells[i] = copy(s.cells[i])
	}
}
