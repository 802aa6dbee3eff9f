package sim

import "errors"

var (
	// ErrValidation is returned by Configure for an unusable SimulationConfig.
	ErrValidation = errors.New("invalid simulation config")
	// ErrInvalidState is returned when an operation is called in the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid engine state")
	// ErrEmptyResult is returned by Summarize before any customer has been simulated.
	ErrEmptyResult = errors.New("no customers simulated")
)
