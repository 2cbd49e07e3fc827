package binomial

import "github.com/pkg/errors"

// Contract violations. Returned errors wrap one of these, test with errors.Is.
var (
	ErrEmptyHeap   = errors.New("heap is empty")
	ErrInvalidKey  = errors.New("key must be positive")
	ErrInvalidDiff = errors.New("diff must be positive and smaller than the key")
	ErrNotInHeap   = errors.New("item is not in this heap")
	ErrSelfMeld    = errors.New("cannot meld a heap into itself")
)
