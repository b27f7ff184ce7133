package reducer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation marks a checkpoint where text that must still
	// reproduce the defect does not. It points at a non-deterministic
	// oracle or an engine defect.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrParse is the cause of an invariant violation on text that does not parse.
	ErrParse = errors.New("text does not parse")

	// ErrNotReproduced is the cause of an invariant violation on text the
	// oracle rejects.
	ErrNotReproduced = errors.New("text does not reproduce the defect")
)

// Stage names a checkpoint of a reduction run.
type Stage string

const (
	StageInput    Stage = "input"
	StageExtract  Stage = "extract"
	StageComments Stage = "comments"
)

// InvariantError is returned when a checkpoint assertion fails.
type InvariantError struct {
	Stage Stage
	Cause error
	Text  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v at %s checkpoint: %v", ErrInvariantViolation, e.Stage, e.Cause)
}

func (e *InvariantError) Unwrap() []error {
	return []error{ErrInvariantViolation, e.Cause}
}
