package domain

import "fmt"

// Position locates a user inside a workout. It only has meaning relative to
// a specific circuit sequence.
type Position struct {
	CircuitIndex  int `json:"circuit_index" bson:"circuit_index" firestore:"circuit_index"`
	RoundIndex    int `json:"round_index" bson:"round_index" firestore:"round_index"`
	ExerciseIndex int `json:"exercise_index" bson:"exercise_index" firestore:"exercise_index"`
}

// StartingPosition is the first exercise of the first round of the first circuit.
var StartingPosition = Position{}

func (p Position) String() string {
	return fmt.Sprintf("{%d,%d,%d}", p.CircuitIndex, p.RoundIndex, p.ExerciseIndex)
}

// WorkoutState is an immutable (circuits, position) pair. Transitions return
// new values; the circuits are shared between them.
type WorkoutState struct {
	circuits []Circuit
	position Position
}

// NewWorkoutState starts a workout over circuits at pos.
func NewWorkoutState(circuits []Circuit, pos Position) WorkoutState {
	return WorkoutState{circuits: circuits, position: pos}
}

func (s WorkoutState) Position() Position { return s.position }

// Circuits returns a copy of the circuit sequence.
func (s WorkoutState) Circuits() []Circuit {
	c := make([]Circuit, len(s.circuits))
	copy(c, s.circuits)
	return c
}

// IsCompleted reports whether the position has moved past the last circuit.
func (s WorkoutState) IsCompleted() bool {
	return s.position.CircuitIndex >= len(s.circuits)
}

// CurrentCircuit returns the circuit being worked through, or false once the
// workout is complete.
func (s WorkoutState) CurrentCircuit() (Circuit, bool) {
	if s.IsCompleted() {
		return Circuit{}, false
	}
	return s.circuits[s.position.CircuitIndex], true
}

// CurrentExercise returns the exercise at the current position, or false
// once the workout is complete.
func (s WorkoutState) CurrentExercise() (Exercise, bool) {
	c, ok := s.CurrentCircuit()
	if !ok {
		return Exercise{}, false
	}
	return c.Exercise(s.position.ExerciseIndex), true
}

// Next returns the state after finishing the current exercise. A complete
// state has no next state and returns false.
func (s WorkoutState) Next() (WorkoutState, bool) {
	c, ok := s.CurrentCircuit()
	if !ok {
		return WorkoutState{}, false
	}

	next := s.position
	next.ExerciseIndex++
	if next.ExerciseIndex >= c.Len() {
		next.ExerciseIndex = 0
		next.RoundIndex++
	}
	// rounds roll over against the circuit being left
	if next.RoundIndex >= c.NumRounds() {
		next.RoundIndex = 0
		next.CircuitIndex++
	}

	return WorkoutState{circuits: s.circuits, position: next}, true
}

// TotalSteps is the number of Next calls that take a fresh workout to
// completion.
func (s WorkoutState) TotalSteps() int {
	total := 0
	for _, c := range s.circuits {
		total += c.Steps()
	}
	return total
}

// CompletedSteps is the number of exercises finished before the current
// position.
func (s WorkoutState) CompletedSteps() int {
	if s.IsCompleted() {
		return s.TotalSteps()
	}
	done := 0
	for i := 0; i < s.position.CircuitIndex; i++ {
		done += s.circuits[i].Steps()
	}
	c := s.circuits[s.position.CircuitIndex]
	return done + s.position.RoundIndex*c.Len() + s.position.ExerciseIndex
}

// WorkoutSnapshot is the plain structural form of a WorkoutState handed to
// persistence.
type WorkoutSnapshot struct {
	Circuits []CircuitSnapshot `json:"circuits" bson:"circuits" firestore:"circuits"`
	Position Position          `json:"position" bson:"position" firestore:"position"`
}

// Snapshot returns the storable form of s.
func (s WorkoutState) Snapshot() WorkoutSnapshot {
	circuits := make([]CircuitSnapshot, len(s.circuits))
	for i, c := range s.circuits {
		circuits[i] = c.Snapshot()
	}
	return WorkoutSnapshot{Circuits: circuits, Position: s.position}
}

// State rebuilds a WorkoutState from a snapshot. Circuits are re-validated
// and an active position must point at an existing exercise.
func (snap WorkoutSnapshot) State() (WorkoutState, error) {
	circuits := make([]Circuit, len(snap.Circuits))
	for i, cs := range snap.Circuits {
		c, err := cs.Circuit()
		if err != nil {
			return WorkoutState{}, fmt.Errorf("circuit %d: %w", i, err)
		}
		circuits[i] = c
	}

	p := snap.Position
	if p.CircuitIndex < 0 || p.RoundIndex < 0 || p.ExerciseIndex < 0 {
		return WorkoutState{}, fmt.Errorf("%w: negative index in %s", ErrInvalidPosition, p)
	}
	if p.CircuitIndex < len(circuits) {
		c := circuits[p.CircuitIndex]
		if p.RoundIndex >= c.NumRounds() || p.ExerciseIndex >= c.Len() {
			return WorkoutState{}, fmt.Errorf("%w: %s", ErrInvalidPosition, p)
		}
	}

	return NewWorkoutState(circuits, p), nil
}
