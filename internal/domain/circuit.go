package domain

import "fmt"

// Circuit is a named, fixed list of exercises repeated for a number of
// rounds. Fields are unexported: once built a circuit never changes, so it is
// safe to share between workout states.
type Circuit struct {
	name      string
	numRounds int
	exercises []Exercise
}

// NewCircuit validates and freezes a circuit. The exercise slice is copied.
func NewCircuit(name string, numRounds int, exercises []Exercise) (Circuit, error) {
	if numRounds < 1 {
		return Circuit{}, fmt.Errorf("%w: got %d", ErrInvalidRoundCount, numRounds)
	}
	if len(exercises) == 0 {
		return Circuit{}, fmt.Errorf("%w: circuit %q has no exercises", ErrInvalidSampleSize, name)
	}
	ex := make([]Exercise, len(exercises))
	copy(ex, exercises)
	return Circuit{name: name, numRounds: numRounds, exercises: ex}, nil
}

func (c Circuit) Name() string   { return c.name }
func (c Circuit) NumRounds() int { return c.numRounds }
func (c Circuit) Len() int       { return len(c.exercises) }

// Exercise returns the i-th exercise of one round.
func (c Circuit) Exercise(i int) Exercise {
	return c.exercises[i]
}

// Exercises returns a copy of the circuit's exercise list.
func (c Circuit) Exercises() []Exercise {
	ex := make([]Exercise, len(c.exercises))
	copy(ex, c.exercises)
	return ex
}

// Steps is the number of exercises performed to finish the circuit.
func (c Circuit) Steps() int {
	return c.numRounds * len(c.exercises)
}

// CircuitSnapshot is the plain, storable form of a Circuit.
type CircuitSnapshot struct {
	Name      string     `json:"name" bson:"name" firestore:"name"`
	NumRounds int        `json:"num_rounds" bson:"num_rounds" firestore:"num_rounds"`
	Exercises []Exercise `json:"exercises" bson:"exercises" firestore:"exercises"`
}

// Snapshot returns the storable form of c.
func (c Circuit) Snapshot() CircuitSnapshot {
	return CircuitSnapshot{
		Name:      c.name,
		NumRounds: c.numRounds,
		Exercises: c.Exercises(),
	}
}

// Circuit rebuilds a frozen circuit from its snapshot.
func (s CircuitSnapshot) Circuit() (Circuit, error) {
	return NewCircuit(s.Name, s.NumRounds, s.Exercises)
}
