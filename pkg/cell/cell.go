// Package cell defines the tagged-value representation shared by the
// heap, the parser, the bracket-abstraction compiler and the reducer.
//
// A Cell is a 64-bit tagged handle, never a raw memory address. Pair
// cells carry an index into whichever heap arena currently owns them;
// resolving that index into an actual pair is the heap package's job.
// Keeping the tag discipline pointer-free is what lets the collector
// swap semi-spaces without leaving a dangling Go pointer; a pair Cell
// held in a local across a collection still names its old slot, which
// is why live cells are kept on the spine stack or in save slots.
package cell

import "fmt"

// Cell tag layout (low bits), mirroring the reference C implementation:
//
//	------00   Pair    (payload: index into the current arena)
//	------01   Int     (payload: signed integer)
//	------10   Combinator (payload: enumerated index)
//	-----011   Character  (payload: 0-255, sentinel 256 unused)
//	-----111   Immediate  (payload: enumerated singleton)
type Cell int64

const (
	tag2Mask = 0x3
	tag3Mask = 0x7

	tagPair = 0x0
	tagInt  = 0x1
	tagComb = 0x2
	tagChar = 0x3 // low 3 bits: 011
	tagImm  = 0x7 // low 3 bits: 111
)

// IsPair reports whether c is a pair reference.
func (c Cell) IsPair() bool { return int64(c)&tag2Mask == tagPair }

// IsInt reports whether c is an embedded integer.
func (c Cell) IsInt() bool { return int64(c)&tag2Mask == tagInt }

// IsComb reports whether c is a combinator.
func (c Cell) IsComb() bool { return int64(c)&tag2Mask == tagComb }

// IsChar reports whether c is a character.
func (c Cell) IsChar() bool { return int64(c)&tag3Mask == tagChar }

// IsImm reports whether c is one of the immediate singletons.
func (c Cell) IsImm() bool { return int64(c)&tag3Mask == tagImm }

// PairIndex returns the arena index of a pair cell. Undefined if !IsPair(c).
func (c Cell) PairIndex() int32 { return int32(int64(c) >> 2) }

// MakePair builds a pair cell referencing arena slot idx.
func MakePair(idx int32) Cell { return Cell(int64(idx) << 2) }

// IntOf returns the signed integer payload of an Int cell. Undefined if !IsInt(c).
func (c Cell) IntOf() int { return int(int64(c) >> 2) }

// MakeInt builds an Int cell holding n.
func MakeInt(n int) Cell { return Cell(int64(n)<<2) | tagInt }

// CombOf returns the combinator enum value of a Combinator cell.
func (c Cell) CombOf() Comb { return Comb(int64(c) >> 2) }

// MakeComb builds a Combinator cell for k.
func MakeComb(k Comb) Cell { return Cell(int64(k)<<2) | tagComb }

// CharOf returns the 0-255 payload of a Character cell.
func (c Cell) CharOf() int { return int(int64(c) >> 3) }

// MakeChar builds a Character cell for the byte value n.
func MakeChar(n int) Cell { return Cell(int64(n)<<3) | tagChar }

func makeImm(n int) Cell { return Cell(int64(n)<<3) | tagImm }

// Immediate singletons.
var (
	NIL     = makeImm(0) // placeholder argument of READ (READ NIL); the empty church list is KI
	COPIED  = makeImm(1) // GC forwarding marker (internal to heap package)
	UNUSED  = makeImm(2) // spine stack sentinel (internal to spine package)
	LAMBDA  = makeImm(3) // lambda-tree binder marker, never reaches the reducer
)

// Comb enumerates the fixed combinator set.
type Comb int64

const (
	S Comb = iota
	K
	I
	B
	C
	Sprime
	Bstar
	Cprime
	Iota
	KI
	Read
	Write
	Inc
	Cons
	Putc
	Return
)

// Definition names a combinator and the arity its reduction rule requires.
type Definition struct {
	Name  string
	Arity int
}

var definitions = map[Comb]*Definition{
	S:      {"S", 3},
	K:      {"K", 2},
	I:      {"I", 1},
	B:      {"B", 3},
	C:      {"C", 3},
	Sprime: {"S'", 4},
	Bstar:  {"B*", 4},
	Cprime: {"C'", 4},
	Iota:   {"IOTA", 1},
	KI:     {"KI", 2},
	Read:   {"READ", 2},
	Write:  {"WRITE", 1},
	Inc:    {"INC", 1},
	Cons:   {"CONS", 3},
	Putc:   {"PUTC", 3},
	Return: {"RETURN", 0},
}

// Lookup returns the Definition for a combinator enum value.
func Lookup(k Comb) (*Definition, error) {
	def, ok := definitions[k]
	if !ok {
		return nil, fmt.Errorf("combinator %d undefined", k)
	}
	return def, nil
}

func (k Comb) String() string {
	if def, ok := definitions[k]; ok {
		return def.Name
	}
	return fmt.Sprintf("Comb(%d)", int64(k))
}

// Combinator cells, built once, compared by value everywhere else.
var (
	CombS      = MakeComb(S)
	CombK      = MakeComb(K)
	CombI      = MakeComb(I)
	CombB      = MakeComb(B)
	CombC      = MakeComb(C)
	CombSprime = MakeComb(Sprime)
	CombBstar  = MakeComb(Bstar)
	CombCprime = MakeComb(Cprime)
	CombIota   = MakeComb(Iota)
	CombKI     = MakeComb(KI)
	CombRead   = MakeComb(Read)
	CombWrite  = MakeComb(Write)
	CombInc    = MakeComb(Inc)
	CombCons   = MakeComb(Cons)
	CombPutc   = MakeComb(Putc)
	CombReturn = MakeComb(Return)
)

// String renders a non-pair cell for diagnostics; pair cells cannot be
// rendered without a heap to resolve them (see pkg/vm's printer).
func (c Cell) String() string {
	switch {
	case c.IsInt():
		return fmt.Sprintf("%d", c.IntOf())
	case c.IsComb():
		return c.CombOf().String()
	case c.IsChar():
		return fmt.Sprintf("Char(%d)", c.CharOf())
	case c == NIL:
		return "NIL"
	case c == LAMBDA:
		return "LAMBDA"
	case c.IsImm():
		return fmt.Sprintf("Imm(%d)", int64(c)>>3)
	case c.IsPair():
		return fmt.Sprintf("Pair@%d", c.PairIndex())
	default:
		return "?"
	}
}
