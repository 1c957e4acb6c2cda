package buffer

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrResourceNotFound is returned when a file is missing or cannot be
	// decoded into the buffer.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrUndo is returned by Undo and Redo when there is nothing to apply
	// or undo tracking is disabled.
	ErrUndo = errors.New("undo unavailable")
	// ErrUnknown wraps failures that have no better classification.
	ErrUnknown = errors.New("unknown failure")
	// ErrInvalidArgument is the panic value (wrapped) for positions outside
	// the 31-bit range every position must fit in.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MaxPos is the largest position or length a buffer accepts.
const MaxPos = math.MaxInt32

func checkPos(name string, v int) {
	if v < 0 || v > MaxPos {
		panic(fmt.Errorf("buffer: %s=%d out of range [0, %d]: %w", name, v, MaxPos, ErrInvalidArgument))
	}
}
