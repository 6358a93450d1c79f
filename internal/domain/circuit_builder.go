package domain

import "fmt"

// CircuitBuilder accumulates circuit configuration and samples a new Circuit
// from its pool on every Build call. Setters return the builder for chaining.
type CircuitBuilder struct {
	pool         []Exercise
	rnd          RandSource
	numRounds    int
	numExercises int
	name         string
	following    *Circuit
}

// NewCircuitBuilder returns a builder for pool with one round, one exercise
// and an empty name.
func NewCircuitBuilder(pool []Exercise, rnd RandSource) *CircuitBuilder {
	return &CircuitBuilder{
		pool:         pool,
		rnd:          rnd,
		numRounds:    1,
		numExercises: 1,
	}
}

func (b *CircuitBuilder) WithNumRounds(n int) *CircuitBuilder {
	b.numRounds = n
	return b
}

func (b *CircuitBuilder) WithNumExercises(n int) *CircuitBuilder {
	b.numExercises = n
	return b
}

func (b *CircuitBuilder) WithName(name string) *CircuitBuilder {
	b.name = name
	return b
}

// WithFollowingCircuit appends c's exercises after the sampled ones. Only the
// exercises survive: c's name and round count are dropped and the built
// circuit's round count governs both groups.
func (b *CircuitBuilder) WithFollowingCircuit(c Circuit) *CircuitBuilder {
	b.following = &c
	return b
}

// Build samples the configured number of exercises and returns a new circuit.
func (b *CircuitBuilder) Build() (Circuit, error) {
	if b.numRounds < 1 {
		return Circuit{}, fmt.Errorf("%w: got %d", ErrInvalidRoundCount, b.numRounds)
	}
	if b.numExercises < 1 {
		return Circuit{}, fmt.Errorf("%w: circuit needs at least one exercise, got %d", ErrInvalidSampleSize, b.numExercises)
	}
	if len(b.pool) < b.numExercises {
		return Circuit{}, &PoolTooSmallError{Requested: b.numExercises, Available: len(b.pool)}
	}

	picked, err := Sample(b.pool, b.numExercises, b.rnd)
	if err != nil {
		return Circuit{}, err
	}
	if b.following != nil {
		picked = append(picked, b.following.exercises...)
	}

	return Circuit{name: b.name, numRounds: b.numRounds, exercises: picked}, nil
}
