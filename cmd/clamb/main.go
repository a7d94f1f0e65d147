// Command clamb interprets Universal Lambda programs: bit-encoded
// lambda terms read from the given files (then stdin), compiled to a
// combinator graph and reduced against the remaining input bytes.
package main

import (
	"bufio"
	"fmt"
	"os"

	"ullambda/internal/config"
	"ullambda/internal/stats"
	"ullambda/pkg/bitio"
	"ullambda/pkg/compiler"
	"ullambda/pkg/heap"
	"ullambda/pkg/parser"
	"ullambda/pkg/spine"
	"ullambda/pkg/vm"
)

const version = "1.0.0"

func main() {
	unbuffered := false
	parseOnly := false
	verbosity := 0 // 0 (default, quiet), 1 (stats), 2 (GC trace)

	args := os.Args[1:]
	i := 0
	for ; i < len(args) && len(args[i]) > 0 && args[i][0] == '-'; i++ {
		switch args[i] {
		case "-h":
			printHelp()
			return
		case "-v":
			fmt.Printf("clamb %s\n", version)
			return
		case "-u":
			unbuffered = true
		case "-p":
			parseOnly = true
		case "-v0":
			verbosity = 0
		case "-v1":
			verbosity = 1
		case "-v2":
			verbosity = 2
		default:
			fatal(fmt.Errorf("unknown option %s", args[i]))
		}
	}
	inputFiles := args[i:]

	cfg := config.Load()

	in, err := bitio.New(inputFiles)
	if err != nil {
		fatal(err)
	}
	defer in.Close()

	h := heap.New(cfg.HeapSize)
	s := spine.New(cfg.SpineCapacity)
	h.SetRoots(s)

	var collector *stats.Collector
	if verbosity == 1 {
		collector = stats.New()
	} else if verbosity == 2 {
		h.SetNotifier(func(alive, heapSize int32) {
			fmt.Fprintf(os.Stderr, "GC: %d / %d\n", alive, heapSize)
		})
	}

	root, err := parser.New(in, h, s).Parse()
	if err != nil {
		fatal(err)
	}
	in.DiscardPartialByte()

	root, err = compiler.Translate(root, h, s)
	if err != nil {
		fatal(err)
	}

	if parseOnly {
		w := bufio.NewWriter(os.Stdout)
		if err := vm.Unparse(w, root, h); err != nil {
			fatal(err)
		}
		w.Flush()
		return
	}

	bufSize := cfg.OutputBufferSize
	if unbuffered {
		bufSize = 1
	}
	out := bufio.NewWriterSize(os.Stdout, bufSize)

	reducer := vm.New(h, s, in, out)
	if err := reducer.EvalPrint(root); err != nil {
		out.Flush()
		fatal(err)
	}
	out.Flush()

	if collector != nil {
		collector.Report(os.Stderr, reducer.Reductions(), h.GCTime(), s.MaxDepth())
	}
}

func printHelp() {
	fmt.Println("clamb — Universal Lambda interpreter")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  clamb [options] [input-file ...]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h    Print this help and exit")
	fmt.Println("  -u    Disable output buffering")
	fmt.Println("  -p    Parse and translate only; print combinator graph")
	fmt.Println("  -v    Print version and exit")
	fmt.Println("  -v0   Quiet (default)")
	fmt.Println("  -v1   Print reduction/timing statistics after evaluation")
	fmt.Println("  -v2   Log each garbage collection to stderr")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
