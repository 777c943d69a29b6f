package reverser

import "github.com/pkg/errors"

var (
	ErrAllocation    = errors.New("allocation failed")
	ErrTooLarge      = errors.New("write exceeds buffer capacity")
	ErrTransferFault = errors.New("transfer fault")
	ErrWouldBlock    = errors.New("operation would block")
	ErrInterrupted   = errors.New("interrupted")
	ErrReleased      = errors.New("buffer released")
	ErrClosed        = errors.New("endpoint closed")
)
