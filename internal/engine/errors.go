package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadySpinning is returned by Spin while a spin is in progress.
// The call has no effect.
var ErrAlreadySpinning = errors.New("spin already in progress")

// ErrClosed is returned by Spin after Close.
var ErrClosed = errors.New("engine closed")

// NoCandidatesReason says why a spin had nothing to pick from.
// The remediation differs: add items, or clear history / allow duplicates.
type NoCandidatesReason string

const (
	// ReasonListEmpty means the item collection itself is empty.
	ReasonListEmpty NoCandidatesReason = "LIST_EMPTY"

	// ReasonDuplicatesExhausted means every item has already won this session
	// and duplicates are disallowed.
	ReasonDuplicatesExhausted NoCandidatesReason = "DUPLICATES_EXHAUSTED"
)

// NoCandidatesError reports a spin rejected for lack of eligible items.
// The engine stays Idle and nothing is mutated.
type NoCandidatesError struct {
	Reason NoCandidatesReason

	// Items is the size of the item collection.
	Items int

	// Excluded is how many items history excluded.
	Excluded int
}

// Error implements the error interface.
func (e *NoCandidatesError) Error() string {
	switch e.Reason {
	case ReasonListEmpty:
		return fmt.Sprintf("%s: no items to choose from", e.Reason)
	case ReasonDuplicatesExhausted:
		return fmt.Sprintf("%s: all %d items already selected this session; clear history or allow duplicates", e.Reason, e.Items)
	default:
		return fmt.Sprintf("%s: no eligible candidates", e.Reason)
	}
}

// IsNoCandidates returns true if err is a NoCandidatesError of any reason.
// Uses errors.As to handle wrapped errors.
func IsNoCandidates(err error) bool {
	var nc *NoCandidatesError
	return errors.As(err, &nc)
}

// IsListEmpty returns true if err is a NoCandidatesError caused by an empty list.
func IsListEmpty(err error) bool {
	var nc *NoCandidatesError
	if errors.As(err, &nc) {
		return nc.Reason == ReasonListEmpty
	}
	return false
}

// IsDuplicatesExhausted returns true if err is a NoCandidatesError caused by
// history covering every item.
func IsDuplicatesExhausted(err error) bool {
	var nc *NoCandidatesError
	if errors.As(err, &nc) {
		return nc.Reason == ReasonDuplicatesExhausted
	}
	return false
}
