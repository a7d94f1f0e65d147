// Package stats formats the -v1 run report: reduction count,
// wall-clock evaluation time with GC time subtracted out, total GC
// time, and the spine stack's high-water mark — mirroring clamb.c's
// reductions/total_gc_time/rs_max_depth bookkeeping.
package stats

import (
	"fmt"
	"io"
	"time"
)

// Collector marks the start of a timed run; GC time itself is tracked
// by pkg/heap.Heap (GCTime) and passed into Report at the end.
type Collector struct {
	start time.Time
}

// New starts a collector with the clock running.
func New() *Collector {
	return &Collector{start: time.Now()}
}

// Report writes the -v1 summary block to w.
func (c *Collector) Report(w io.Writer, reductions int64, gcTime time.Duration, maxStackDepth int32) {
	evalTime := time.Since(c.start) - gcTime

	fmt.Fprintf(w, "\n%d reductions\n", reductions)
	fmt.Fprintf(w, "  total eval time --- %5.2f sec.\n", evalTime.Seconds())
	fmt.Fprintf(w, "  total gc time   --- %5.2f sec.\n", gcTime.Seconds())
	fmt.Fprintf(w, "  max stack depth --- %d\n", maxStackDepth)
}
