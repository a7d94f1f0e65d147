// Package vm implements the lazy graph reducer: a spine-driven
// combinator evaluator with in-place indirection updates and the
// READ/WRITE/PUTC/CONS/INC/RETURN I/O combinators.
package vm

import (
	"ullambda/pkg/cell"
	"ullambda/pkg/heap"
	"ullambda/pkg/spine"
	"ullambda/pkg/ulerr"
)

// ByteSource is the minimal input side the reducer needs; pkg/bitio.Reader
// satisfies it once parsing has consumed the leading bit-encoded program.
type ByteSource interface {
	ReadByte() (b byte, ok bool, err error)
}

// ByteSink is the minimal output side the reducer needs. *bufio.Writer
// satisfies it; cmd/clamb chooses buffered or unbuffered based on -u.
type ByteSink interface {
	WriteByte(c byte) error
}

// Reducer owns the heap and spine stack a program runs against, plus
// the byte streams READ and PUTC consult.
type Reducer struct {
	h   *heap.Heap
	s   *spine.Stack
	in  ByteSource
	out ByteSink

	reductions int64
}

// New builds a Reducer over the given heap, spine stack and I/O streams.
func New(h *heap.Heap, s *spine.Stack, in ByteSource, out ByteSink) *Reducer {
	return &Reducer{h: h, s: s, in: in, out: out}
}

// Reductions returns the number of successful rewrites performed so far.
func (r *Reducer) Reductions() int64 { return r.reductions }

// arg returns the argument carried by the pair n slots below the
// current head (ARG(n) in the reference reduction machine).
func (r *Reducer) arg(n int32) cell.Cell {
	return r.h.At(r.s.Peek(n).PairIndex()).Cdr
}

// setTop overwrites the pair currently at the top of the spine with
// (car, cdr), the in-place rewrite that gives the reducer call-by-need
// sharing: any other reference to this pair observes the reduct.
func (r *Reducer) setTop(car, cdr cell.Cell) {
	p := r.h.At(r.s.Top().PairIndex())
	p.Car = car
	p.Cdr = cdr
}

// EvalPrint wraps root as WRITE (root (READ NIL)) and reduces it to
// completion, streaming output bytes through out as they are produced.
func (r *Reducer) EvalPrint(root cell.Cell) error {
	readNil, err := r.h.Pair(cell.CombRead, cell.NIL)
	if err != nil {
		return err
	}
	applied, err := r.h.Pair(root, readNil)
	if err != nil {
		return err
	}
	top, err := r.h.Pair(cell.CombWrite, applied)
	if err != nil {
		return err
	}
	return r.Eval(top)
}

// Eval reduces the spine rooted at root to weak head normal form,
// looping until RETURN is reached or no further rule applies. It may
// be called recursively (by the INC and PUTC rules) against the same
// spine stack; bottom marks how many arguments are available to rules
// fired within this activation.
func (r *Reducer) Eval(root cell.Cell) error {
	bottom := r.s.SP()
	if err := r.s.Push(root); err != nil {
		return err
	}
	applicable := func(n int32) bool { return bottom-r.s.SP() > n }

	for {
		for r.s.Top().IsPair() {
			car := r.h.At(r.s.Top().PairIndex()).Car
			if err := r.s.Push(car); err != nil {
				return err
			}
		}
		top := r.s.Top()

		switch {
		case top == cell.CombI && applicable(1):
			// I x -> x
			r.s.Pop()
			p := r.h.At(r.s.Top().PairIndex())
			r.s.SetTop(p.Cdr)

		case top == cell.CombS && applicable(3):
			// S f g x -> f x (g x)
			a, err := r.h.Alloc(2)
			if err != nil {
				return err
			}
			f, g, x := r.arg(1), r.arg(2), r.arg(3)
			*r.h.At(a) = heap.Pair{Car: f, Cdr: x}
			*r.h.At(a + 1) = heap.Pair{Car: g, Cdr: x}
			r.s.Drop(3)
			r.setTop(cell.MakePair(a), cell.MakePair(a+1))

		case top == cell.CombK && applicable(2):
			// K x y -> I x, then follow the indirection immediately
			x := r.arg(1)
			r.s.Drop(2)
			r.setTop(cell.CombI, x)
			r.s.SetTop(x)

		case top == cell.CombB && applicable(3):
			// B f g x -> f (g x)
			gx, err := r.h.Pair(r.arg(2), r.arg(3))
			if err != nil {
				return err
			}
			f := r.arg(1)
			r.s.Drop(3)
			r.setTop(f, gx)

		case top == cell.CombC && applicable(3):
			// C f g x -> f x g
			fx, err := r.h.Pair(r.arg(1), r.arg(3))
			if err != nil {
				return err
			}
			g := r.arg(2)
			r.s.Drop(3)
			r.setTop(fx, g)

		case top == cell.CombSprime && applicable(4):
			// S' c f g x -> c (f x) (g x)
			a, err := r.h.Alloc(3)
			if err != nil {
				return err
			}
			c, f, g, x := r.arg(1), r.arg(2), r.arg(3), r.arg(4)
			*r.h.At(a) = heap.Pair{Car: f, Cdr: x}
			*r.h.At(a + 1) = heap.Pair{Car: g, Cdr: x}
			*r.h.At(a + 2) = heap.Pair{Car: c, Cdr: cell.MakePair(a)}
			r.s.Drop(4)
			r.setTop(cell.MakePair(a+2), cell.MakePair(a+1))

		case top == cell.CombBstar && applicable(4):
			// B* c f g x -> c (f (g x))
			a, err := r.h.Alloc(2)
			if err != nil {
				return err
			}
			g, x, f := r.arg(3), r.arg(4), r.arg(2)
			*r.h.At(a) = heap.Pair{Car: g, Cdr: x}
			*r.h.At(a + 1) = heap.Pair{Car: f, Cdr: cell.MakePair(a)}
			c := r.arg(1)
			r.s.Drop(4)
			r.setTop(c, cell.MakePair(a+1))

		case top == cell.CombCprime && applicable(4):
			// C' c f g x -> c (f x) g
			a, err := r.h.Alloc(2)
			if err != nil {
				return err
			}
			f, x, c := r.arg(2), r.arg(4), r.arg(1)
			*r.h.At(a) = heap.Pair{Car: f, Cdr: x}
			*r.h.At(a + 1) = heap.Pair{Car: c, Cdr: cell.MakePair(a)}
			g := r.arg(3)
			r.s.Drop(4)
			r.setTop(cell.MakePair(a+1), g)

		case top == cell.CombIota && applicable(1):
			// IOTA x -> x S K
			xs, err := r.h.Pair(r.arg(1), cell.CombS)
			if err != nil {
				return err
			}
			r.s.Pop()
			r.setTop(xs, cell.CombK)

		case top == cell.CombKI && applicable(2):
			// KI x y -> I y (y is already TOP's cdr, only car needs rewriting)
			r.s.Drop(2)
			r.h.At(r.s.Top().PairIndex()).Car = cell.CombI

		case top == cell.CombCons && applicable(3):
			// CONS x y f -> f x y
			fx, err := r.h.Pair(r.arg(3), r.arg(1))
			if err != nil {
				return err
			}
			y := r.arg(2)
			r.s.Drop(3)
			r.setTop(fx, y)

		case top == cell.CombRead && applicable(2):
			// READ _ f -> CONS Char(c) (READ NIL) f, or I KI at EOF
			b, ok, err := r.in.ReadByte()
			if err != nil {
				return err
			}
			if !ok {
				r.s.Pop()
				r.setTop(cell.CombI, cell.CombKI)
			} else {
				a, aerr := r.h.Alloc(2)
				if aerr != nil {
					return aerr
				}
				*r.h.At(a) = heap.Pair{Car: cell.CombCons, Cdr: cell.MakeChar(int(b))}
				*r.h.At(a + 1) = heap.Pair{Car: cell.CombRead, Cdr: cell.NIL}
				r.s.Pop()
				r.setTop(cell.MakePair(a), cell.MakePair(a+1))
			}

		case top == cell.CombWrite && applicable(1):
			// WRITE x -> x PUTC RETURN
			r.s.Pop()
			x := r.h.At(r.s.Top().PairIndex()).Cdr
			a, err := r.h.Pair(x, cell.CombPutc)
			if err != nil {
				return err
			}
			r.setTop(a, cell.CombReturn)

		case top == cell.CombPutc && applicable(3):
			// PUTC x y i -> putc(eval(x INC 0)); WRITE y
			a, err := r.h.Alloc(2)
			if err != nil {
				return err
			}
			x := r.arg(1)
			*r.h.At(a) = heap.Pair{Car: x, Cdr: cell.CombInc}
			*r.h.At(a + 1) = heap.Pair{Car: cell.MakePair(a), Cdr: cell.MakeInt(0)}
			r.s.Drop(2)
			if err := r.Eval(cell.MakePair(a + 1)); err != nil {
				return err
			}
			result := r.s.Top()
			if !result.IsInt() {
				return ulerr.NotANumber()
			}
			n := result.IntOf()
			if n < 0 || n >= 256 {
				return ulerr.InvalidCharacter(n)
			}
			if err := r.out.WriteByte(byte(n)); err != nil {
				return err
			}
			r.s.Pop()
			outer := r.h.At(r.s.Peek(1).PairIndex())
			outer.Cdr = r.h.At(r.s.Top().PairIndex()).Cdr
			r.s.Pop()
			outer.Car = cell.CombWrite

		case top == cell.CombReturn:
			return nil

		case top == cell.CombInc && applicable(1):
			// INC x -> eval(x) + 1
			c := r.arg(1)
			r.s.Pop()
			if err := r.Eval(c); err != nil {
				return err
			}
			result := r.s.Pop()
			if !result.IsInt() {
				return ulerr.IncNonNumber()
			}
			r.setTop(cell.CombI, cell.MakeInt(result.IntOf()+1))

		case top.IsChar() && applicable(2):
			c := top.CharOf()
			if c <= 0 {
				// Char(0) f z -> z
				z := r.arg(2)
				r.s.Drop(2)
				r.setTop(cell.CombI, z)
			} else {
				// Char(n+1) f z -> f (Char(n) f z)
				a, err := r.h.Alloc(2)
				if err != nil {
					return err
				}
				f, z := r.arg(1), r.arg(2)
				*r.h.At(a) = heap.Pair{Car: cell.MakeChar(c - 1), Cdr: f}
				*r.h.At(a + 1) = heap.Pair{Car: cell.MakePair(a), Cdr: z}
				r.s.Drop(2)
				r.setTop(f, cell.MakePair(a+1))
			}

		case top.IsInt() && applicable(1):
			return ulerr.AppliedNumber()

		default:
			return nil
		}
		r.reductions++
	}
}
