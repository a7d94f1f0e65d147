package vm

import (
	"fmt"
	"io"

	"ullambda/pkg/cell"
	"ullambda/pkg/heap"
)

// Unparse renders a combinator graph in bracketed prefix notation:
// backtick for application, then each primitive's canonical spelling.
// Anything else (a runtime value reached before any reduction, such as
// an Integer or Character literal in the source term) prints as '?'.
// Used only by -p, which stops after translate and never reduces.
func Unparse(w io.Writer, e cell.Cell, h *heap.Heap) error {
	if e.IsPair() {
		if _, err := io.WriteString(w, "`"); err != nil {
			return err
		}
		p := h.At(e.PairIndex())
		if err := Unparse(w, p.Car, h); err != nil {
			return err
		}
		return Unparse(w, p.Cdr, h)
	}

	var s string
	switch e {
	case cell.CombS:
		s = "S"
	case cell.CombK:
		s = "K"
	case cell.CombI:
		s = "I"
	case cell.CombB:
		s = "B"
	case cell.CombC:
		s = "C"
	case cell.CombSprime:
		s = "S'"
	case cell.CombBstar:
		s = "B*"
	case cell.CombCprime:
		s = "C'"
	case cell.CombKI:
		s = "`ki"
	default:
		s = "?"
	}
	_, err := fmt.Fprint(w, s)
	return err
}
