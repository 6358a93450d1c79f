package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid id format")
)

// Workout engine errors. All of them are configuration or data errors:
// retrying with the same input fails the same way.
var (
	ErrInvalidSampleSize = errors.New("invalid sample size")
	ErrPoolTooSmall      = errors.New("exercise pool too small")
	ErrInvalidRoundCount = errors.New("circuit needs at least one round")
	ErrInvalidPosition   = errors.New("position out of range for circuits")
)

// PoolTooSmallError is returned by CircuitBuilder.Build when the pool holds
// fewer exercises than requested.
type PoolTooSmallError struct {
	Requested int
	Available int
}

func (e *PoolTooSmallError) Error() string {
	return fmt.Sprintf("tried to build circuit with %d exercises from a pool with only %d options",
		e.Requested, e.Available)
}

func (e *PoolTooSmallError) Is(target error) bool {
	return target == ErrPoolTooSmall
}
