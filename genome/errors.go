package genome

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBudget matches any *GenomeValidationError via errors.Is.
	ErrBudget = errors.New("genome budget exceeded")
	// ErrInvariant matches any *InvariantError via errors.Is.
	ErrInvariant = errors.New("genome invariant violated")
)

// Budget violation messages.
const (
	ViolationMaxMass       = "maxMass exceeded"
	ViolationNerveCapacity = "nerveCapacity exceeded"
)

// GenomeValidationError lists every budget a built body exceeded.
type GenomeValidationError struct {
	Violations []string
}

func (e *GenomeValidationError) Error() string {
	return "genome validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *GenomeValidationError) Is(target error) bool {
	return target == ErrBudget
}

// InvariantError reports a malformed genome. Gene is -1 when the problem is
// not tied to a single gene.
type InvariantError struct {
	Gene   int
	Reason string
	Err    error
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("gene %d: %s", e.Gene, e.Reason)
	if e.Gene < 0 {
		msg = e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}
