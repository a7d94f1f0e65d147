// Package heap implements the interpreter's cell arena: two equal
// capacity semi-spaces and a Cheney-style copying collector, rooted
// from an externally supplied RootSet (the reducer's spine stack) plus
// up to two caller-named save slots.
package heap

import (
	"time"

	"ullambda/pkg/cell"
	"ullambda/pkg/ulerr"
)

// Pair is the only heap-allocated cell shape; every other Cell variant
// is a self-contained tagged value needing no storage.
type Pair struct {
	Car, Cdr cell.Cell
}

// RootSet is implemented by anything the collector must scan as a
// root in addition to the caller-supplied save slots. The spine stack
// is the only implementer in this module; the interface exists so
// this package never imports pkg/spine.
type RootSet interface {
	// CopyRoots rewrites every root-held Cell through copy.
	CopyRoots(copy func(cell.Cell) cell.Cell)
}

// Notifier is called after each collection completes, before the
// growth policy commits a new heap size, mirroring clamb's
// "GC: alive / heap_size" -v2 trace.
type Notifier func(alive, heapSize int32)

// Heap owns two semi-spaces and knows which one is currently live.
type Heap struct {
	spaces   [2][]Pair
	active   int
	free     int32 // next free slot in spaces[active]
	heapSize int32 // capacity of spaces[active] as of the last collection
	nextSize int32 // capacity to allocate for the next to-space

	roots  RootSet
	notify Notifier
	gcTime time.Duration
}

// New creates a heap whose active semi-space holds initialSize pair
// slots. The opposite semi-space is allocated lazily on first
// collection, matching clamb.c's storage_init/gc_run split.
func New(initialSize int32) *Heap {
	h := &Heap{
		heapSize: initialSize,
		nextSize: initialSize * 3 / 2,
	}
	h.spaces[0] = make([]Pair, initialSize)
	return h
}

// SetRoots registers the collector's external root provider (normally
// the reducer's spine stack). Must be called before any allocation
// that could trigger a collection.
func (h *Heap) SetRoots(r RootSet) { h.roots = r }

// SetNotifier installs a callback invoked after every collection.
func (h *Heap) SetNotifier(n Notifier) { h.notify = n }

// HeapSize returns the current active semi-space capacity, for -v1/-v2 reporting.
func (h *Heap) HeapSize() int32 { return h.heapSize }

// GCTime returns the cumulative time spent inside collect, for -v1's
// "total gc time" line (mirrors clamb.c's total_gc_time global).
func (h *Heap) GCTime() time.Duration { return h.gcTime }

// At returns a pointer to pair slot idx in the active space, for
// direct field mutation (the reducer's SET primitive).
func (h *Heap) At(idx int32) *Pair { return &h.fromSpace()[idx] }

func (h *Heap) fromSpace() []Pair { return h.spaces[h.active] }

// Pair allocates a fresh pair with the given fields, collecting first
// if the active space is full. fst and snd are updated to their
// post-collection locations before being stored (they are not otherwise
// reachable as GC roots unless the caller has also pushed them elsewhere).
func (h *Heap) Pair(fst, snd cell.Cell) (cell.Cell, error) {
	if h.free >= h.heapSize {
		var err error
		fst, snd, err = h.collect(fst, snd)
		if err != nil {
			return 0, err
		}
	}
	idx := h.free
	h.free++
	h.spaces[h.active][idx] = Pair{fst, snd}
	return cell.MakePair(idx), nil
}

// Alloc reserves n contiguous, uninitialized pair slots and returns
// the index of the first. Collecting inside Alloc never needs save
// slots: every live value the caller cares about must already be
// reachable through the RootSet (typically because it was read from
// the spine stack, not cached in a local before the call).
func (h *Heap) Alloc(n int32) (int32, error) {
	if h.free+n > h.heapSize {
		if _, _, err := h.collect(cell.NIL, cell.NIL); err != nil {
			return 0, err
		}
		if h.free+n > h.heapSize {
			return 0, ulerr.HeapAllocFailed(int64(n))
		}
	}
	idx := h.free
	h.free += n
	return idx, nil
}

// CollectForce runs a collection unconditionally, updating save1/save2
// to their post-collection locations. Exposed for tests that need a
// collection at a chosen point.
func (h *Heap) CollectForce(save1, save2 cell.Cell) (cell.Cell, cell.Cell, error) {
	return h.collect(save1, save2)
}

func (h *Heap) allocSpace(n int32) (space []Pair, err error) {
	defer func() {
		if r := recover(); r != nil {
			space, err = nil, ulerr.HeapAllocFailed(int64(n))
		}
	}()
	return make([]Pair, n), nil
}

// collect performs one Cheney copy: roots are copied into the spare
// semi-space, then the spare is scanned linearly until every reachable
// field has been copied, at which point the spaces swap roles.
func (h *Heap) collect(save1, save2 cell.Cell) (cell.Cell, cell.Cell, error) {
	start := time.Now()

	toIdx := 1 - h.active
	if int32(len(h.spaces[toIdx])) != h.nextSize {
		space, err := h.allocSpace(h.nextSize)
		if err != nil {
			return 0, 0, err
		}
		h.spaces[toIdx] = space
	}

	from := h.fromSpace()
	to := h.spaces[toIdx]
	var toFree int32

	copyCell := func(c cell.Cell) cell.Cell {
		if !c.IsPair() {
			return c
		}
		idx := c.PairIndex()
		p := &from[idx]
		if p.Car == cell.COPIED {
			return p.Cdr
		}
		newIdx := toFree
		toFree++
		car := p.Car
		var cdr cell.Cell
		if car == cell.CombI {
			// Collapse I-indirection chains so they cannot regrow
			// across collections (spec.md invariant on I x chains).
			tmp := p.Cdr
			for tmp.IsPair() {
				tp := &from[tmp.PairIndex()]
				if tp.Car != cell.CombI {
					break
				}
				tmp = tp.Cdr
			}
			cdr = tmp
		} else {
			cdr = p.Cdr
		}
		to[newIdx] = Pair{car, cdr}
		p.Car = cell.COPIED
		p.Cdr = cell.MakePair(newIdx)
		return cell.MakePair(newIdx)
	}

	if h.roots != nil {
		h.roots.CopyRoots(copyCell)
	}
	save1 = copyCell(save1)
	save2 = copyCell(save2)

	for scan := int32(0); scan < toFree; scan++ {
		to[scan].Car = copyCell(to[scan].Car)
		to[scan].Cdr = copyCell(to[scan].Cdr)
	}

	numAlive := toFree
	if h.notify != nil {
		h.notify(numAlive, h.heapSize)
	}

	if h.heapSize != h.nextSize || numAlive*8 > h.nextSize {
		h.heapSize = h.nextSize
		if numAlive*8 > h.nextSize {
			h.nextSize = numAlive * 8
		}
		h.spaces[h.active] = nil // drop the old off-space
	}

	h.active = toIdx
	h.free = toFree
	h.gcTime += time.Since(start)

	if h.free >= h.heapSize {
		return h.collect(save1, save2)
	}
	return save1, save2, nil
}
