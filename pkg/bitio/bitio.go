// Package bitio implements the interpreter's single input stream: the
// concatenation of every positional file argument followed by stdin,
// read first as a bit stream (for the parser) and later as a byte
// stream (for the READ combinator).
package bitio

import (
	"os"

	"ullambda/pkg/ulerr"
)

// Reader sequences a list of named files and then stdin into one
// logical byte source, and layers bit-at-a-time reads on top.
type Reader struct {
	names   []string
	pos     int // index into names of the currently open file, or len(names) once on stdin
	f       *os.File
	onStdin bool
	buf     [1]byte

	bitMask byte
	curByte byte
}

// New opens the first source (the first named file, or stdin if none
// were given). Matches clamb.c's input_init, which opens eagerly.
func New(names []string) (*Reader, error) {
	r := &Reader{names: names}
	if err := r.openCurrent(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) openCurrent() error {
	if r.pos < len(r.names) {
		f, err := os.Open(r.names[r.pos])
		if err != nil {
			return ulerr.CannotOpen(r.names[r.pos])
		}
		r.f = f
		r.onStdin = false
		return nil
	}
	r.f = os.Stdin
	r.onStdin = true
	return nil
}

func (r *Reader) advance() error {
	if !r.onStdin && r.f != nil {
		r.f.Close()
	}
	r.pos++
	return r.openCurrent()
}

// ReadByte returns the next byte of the logical stream. ok is false
// only once stdin itself is exhausted; err is non-nil only if the
// next positional file could not be opened when the current one ran
// out (a fatal condition regardless of parse vs. eval phase).
func (r *Reader) ReadByte() (b byte, ok bool, err error) {
	for {
		n, rerr := r.f.Read(r.buf[:])
		if n == 1 {
			return r.buf[0], true, nil
		}
		if r.onStdin {
			return 0, false, nil
		}
		if err := r.advance(); err != nil {
			return 0, false, err
		}
		_ = rerr
	}
}

// ReadBit returns the next most-significant-bit-first bit of the
// stream, fetching a fresh byte when the previous one is exhausted.
// EOF here is always fatal: the parser cannot make progress without
// the bits it expects.
func (r *Reader) ReadBit() (int, error) {
	if r.bitMask == 0 {
		b, ok, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ulerr.UnexpectedEOF()
		}
		r.curByte = b
		r.bitMask = 0x80
	}
	bit := 0
	if r.curByte&r.bitMask != 0 {
		bit = 1
	}
	r.bitMask >>= 1
	return bit, nil
}

// DiscardPartialByte drops any bits already consumed from the current
// byte, so the next ReadByte call (driven by the READ combinator)
// starts at the next byte boundary in the current source, exactly as
// spec.md's Input Format section requires.
func (r *Reader) DiscardPartialByte() { r.bitMask = 0 }

// Close releases the currently open file, if any (stdin is left open).
func (r *Reader) Close() {
	if !r.onStdin && r.f != nil {
		r.f.Close()
	}
}
