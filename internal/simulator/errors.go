package simulator

import (
	"errors"
	"fmt"
)

var (
	// ErrTickInProgress is returned by RunLiveTick while another tick is running.
	ErrTickInProgress = errors.New("simulator: tick already in progress")

	// ErrGeneration is reserved for sample validation failures. The current
	// factory never produces it.
	ErrGeneration = errors.New("simulator: sample generation failed")
)

// StoreError wraps a repository failure with the operation and location it
// happened for.
type StoreError struct {
	Op       string
	Location string
	Err      error
}

func (e *StoreError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s for %q: %v", e.Op, e.Location, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// OutputError wraps a failure to publish an already stored sample.
type OutputError struct {
	Topic    string
	SampleID string
	Err      error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("publish sample %s to %s: %v", e.SampleID, e.Topic, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
