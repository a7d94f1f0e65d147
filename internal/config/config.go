// Package config resolves the interpreter's tunable defaults — initial
// heap size, spine stack capacity, and output buffering — from an
// optional .env file and the process environment, so that CLI flags
// only need to override what the user actually cares about.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// InitialHeapSize matches clamb.c's INITIAL_HEAP_SIZE (128K cells).
	InitialHeapSize = 128 * 1024
	// SpineCapacity matches clamb.c's RDSTACK_SIZE.
	SpineCapacity = 100000
	// OutputBufferSize is the byte capacity of the buffered stdout writer
	// used unless -u (unbuffered) is given.
	OutputBufferSize = 4096
)

// Config holds the resolved runtime defaults, before CLI flags apply
// any final overrides.
type Config struct {
	HeapSize         int32
	SpineCapacity    int32
	OutputBufferSize int
}

// Load reads a .env file in the current directory if one exists (a
// missing file is not an error — godotenv.Load's own error is
// swallowed exactly as an absent file would be) and then resolves
// CLAMB_HEAP_SIZE, CLAMB_SPINE_SIZE and CLAMB_OUTPUT_BUFFER from the
// environment, falling back to the built-in defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HeapSize:         envInt32("CLAMB_HEAP_SIZE", InitialHeapSize),
		SpineCapacity:    envInt32("CLAMB_SPINE_SIZE", SpineCapacity),
		OutputBufferSize: int(envInt32("CLAMB_OUTPUT_BUFFER", OutputBufferSize)),
	}
}

func envInt32(name string, def int32) int32 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return def
	}
	return int32(n)
}
