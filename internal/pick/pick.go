// Package pick selects the next configuration value from a fixed
// candidate set, guaranteeing it differs from the previous selection.
package pick

import (
	"errors"
	"math/rand"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// None is the sentinel for "no previous selection".
const None = -1

var (
	ErrEmpty     = errors.New("empty candidate set")
	ErrDuplicate = errors.New("duplicate candidate")
)

// Picker draws indices into a fixed candidate set by rejection
// sampling: a draw equal to the previous selection is redrawn. With
// more than one candidate the expected number of redraws is a small
// constant; with exactly one candidate it degenerates to always
// returning it.
type Picker[T comparable] struct {
	candidates []T
	rng        *rand.Rand
}

// New builds a Picker over candidates. The set must be non-empty and
// free of duplicates; a duplicate would silently skew the no-repeat
// guarantee.
func New[T comparable](candidates []T) (*Picker[T], error) {
	return NewSeeded(candidates, time.Now().UnixNano())
}

// NewSeeded is New with a fixed seed, for reproducible runs and tests.
func NewSeeded[T comparable](candidates []T, seed int64) (*Picker[T], error) {
	if len(candidates) == 0 {
		return nil, ErrEmpty
	}
	seen := mapset.NewSet[T]()
	for _, c := range candidates {
		if !seen.Add(c) {
			return nil, ErrDuplicate
		}
	}
	return &Picker[T]{
		candidates: candidates,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// Next returns the index of the next selection, never equal to prev
// when the set has more than one member. Pass None when there is no
// previous selection.
func (p *Picker[T]) Next(prev int) int {
	if len(p.candidates) == 1 {
		return 0
	}
	for {
		i := p.rng.Intn(len(p.candidates))
		if i != prev {
			return i
		}
	}
}

// At returns the candidate at index i.
func (p *Picker[T]) At(i int) T { return p.candidates[i] }

// Len returns the candidate count.
func (p *Picker[T]) Len() int { return len(p.candidates) }
