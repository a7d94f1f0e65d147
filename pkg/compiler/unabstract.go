package compiler

import "ullambda/pkg/cell"

// isK1 reports whether c has the shape (K, x) and returns x.
func (t *Translator) isK1(c cell.Cell) (bool, cell.Cell) {
	if !c.IsPair() {
		return false, 0
	}
	p := t.h.At(c.PairIndex())
	if p.Car != cell.CombK {
		return false, 0
	}
	return true, p.Cdr
}

// isB2 reports whether c has the shape ((B, x), y) and returns x, y.
func (t *Translator) isB2(c cell.Cell) (bool, cell.Cell, cell.Cell) {
	if !c.IsPair() {
		return false, 0, 0
	}
	p := t.h.At(c.PairIndex())
	if !p.Car.IsPair() {
		return false, 0, 0
	}
	inner := t.h.At(p.Car.PairIndex())
	if inner.Car != cell.CombB {
		return false, 0, 0
	}
	return true, inner.Cdr, p.Cdr
}

// unabstract removes the innermost binder from term, producing a
// combinator expression equivalent to \x.term. Its rewrites mutate
// pair cells that this translation pass just produced and that no
// other term can yet reference, so overwriting them in place is safe.
func (t *Translator) unabstract(term cell.Cell) (cell.Cell, error) {
	if term.IsInt() {
		n := term.IntOf()
		if n == 0 {
			return cell.CombI, nil
		}
		return t.h.Pair(cell.CombK, cell.MakeInt(n-1))
	}
	if !term.IsPair() {
		// A bare combinator surviving from an outer binder: K-abstract it.
		return t.h.Pair(cell.CombK, term)
	}

	p := t.h.At(term.PairIndex())
	u, v := p.Car, p.Cdr

	if err := t.s.Push(v); err != nil {
		return 0, err
	}
	uf, err := t.unabstract(u)
	if err != nil {
		return 0, err
	}
	if err := t.s.Push(uf); err != nil {
		return 0, err
	}
	ug, err := t.unabstract(t.s.Peek(1))
	if err != nil {
		return 0, err
	}
	// PUSHED(1) = ug: store back so the S-default case below can
	// re-read it after an allocation that might relocate it.
	t.s.SetAt(1, ug)
	f := t.s.Peek(0)

	var result cell.Cell
	kf, xf := t.isK1(f)
	kg, xg := t.isK1(ug)
	bf, bfx, bfy := t.isB2(f)
	bg, bgx, bgy := t.isB2(ug)

	switch {
	case kf && ug == cell.CombI:
		// S (K x) I => x
		result = xf

	case kf && kg:
		// S (K x) (K y) => K (x y)
		t.h.At(ug.PairIndex()).Car = xf
		t.h.At(ug.PairIndex()).Cdr = xg
		t.h.At(f.PairIndex()).Cdr = ug
		result = f

	case kf && bg:
		// S (K x) (B y z) => B* x y z
		t.h.At(f.PairIndex()).Car = cell.CombBstar
		bcell := t.h.At(ug.PairIndex()).Car
		t.h.At(bcell.PairIndex()).Car = f
		_ = bgx
		_ = bgy
		result = ug

	case kf:
		// S (K x) y => B x y
		t.h.At(f.PairIndex()).Car = cell.CombB
		result, err = t.h.Pair(f, ug)
		if err != nil {
			return 0, err
		}

	case bf && kg:
		// S (B x y) (K z) => C' x y z
		bcell := t.h.At(f.PairIndex()).Car
		t.h.At(bcell.PairIndex()).Car = cell.CombCprime
		t.h.At(ug.PairIndex()).Car = f
		_ = bfx
		_ = bfy
		result = ug

	case kg:
		// S x (K y) => C x y
		t.h.At(ug.PairIndex()).Car = cell.CombC
		t.h.At(ug.PairIndex()).Cdr = f
		result, err = t.h.Pair(ug, xg)
		if err != nil {
			return 0, err
		}

	case bf:
		// S (B x y) z => S' x y z
		bcell := t.h.At(f.PairIndex()).Car
		t.h.At(bcell.PairIndex()).Car = cell.CombSprime
		result, err = t.h.Pair(f, ug)
		if err != nil {
			return 0, err
		}

	default:
		// S f g
		sf, err := t.h.Pair(cell.CombS, f)
		if err != nil {
			return 0, err
		}
		g := t.s.Peek(1) // re-read: the alloc above may have moved g
		result, err = t.h.Pair(sf, g)
		if err != nil {
			return 0, err
		}
	}

	t.s.Drop(2)
	return result, nil
}
