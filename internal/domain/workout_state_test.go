package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func mustCircuit(t *testing.T, name string, rounds int, exercises ...Exercise) Circuit {
	t.Helper()
	c, err := NewCircuit(name, rounds, exercises)
	require.NoError(t, err)
	return c
}

func TestWorkoutStateEmptyIsCompleted(t *testing.T) {
	s := NewWorkoutState(nil, StartingPosition)

	assert.True(t, s.IsCompleted())
	_, ok := s.CurrentExercise()
	assert.False(t, ok)
	_, ok = s.CurrentCircuit()
	assert.False(t, ok)
	_, ok = s.Next()
	assert.False(t, ok)
}

func TestWorkoutStateWithCircuitIsActive(t *testing.T) {
	core := mustCircuit(t, "Core", 2, ex("A"), ex("B"))
	s := NewWorkoutState([]Circuit{core}, StartingPosition)

	assert.False(t, s.IsCompleted())
	got, ok := s.CurrentExercise()
	require.True(t, ok)
	assert.Equal(t, ex("A"), got)
	c, ok := s.CurrentCircuit()
	require.True(t, ok)
	assert.Equal(t, "Core", c.Name())
}

func TestWorkoutStateNext(t *testing.T) {
	core := mustCircuit(t, "Core", 2, ex("A"), ex("B"))
	legs := mustCircuit(t, "Legs", 1, ex("L"))

	tests := []struct {
		name     string
		circuits []Circuit
		from     Position
		want     Position
		wantEx   Exercise
		done     bool
	}{
		{
			name:     "advance exercise",
			circuits: []Circuit{core},
			from:     Position{0, 0, 0},
			want:     Position{0, 0, 1},
			wantEx:   ex("B"),
		},
		{
			name:     "exercise rollover",
			circuits: []Circuit{core},
			from:     Position{0, 0, 1},
			want:     Position{0, 1, 0},
			wantEx:   ex("A"),
		},
		{
			name:     "round rollover into next circuit",
			circuits: []Circuit{core, legs},
			from:     Position{0, 1, 1},
			want:     Position{1, 0, 0},
			wantEx:   ex("L"),
		},
		{
			name:     "round rollover into completion",
			circuits: []Circuit{core},
			from:     Position{0, 1, 1},
			want:     Position{1, 0, 0},
			done:     true,
		},
		{
			name:     "single circuit exhaustion",
			circuits: []Circuit{mustCircuit(t, "", 1, ex("A"))},
			from:     Position{0, 0, 0},
			want:     Position{1, 0, 0},
			done:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWorkoutState(tt.circuits, tt.from)
			next, ok := s.Next()
			require.True(t, ok)

			assert.Equal(t, tt.want, next.Position())
			assert.Equal(t, tt.done, next.IsCompleted())
			assert.Equal(t, tt.from, s.Position(), "receiver must not change")

			got, ok := next.CurrentExercise()
			assert.Equal(t, !tt.done, ok)
			if !tt.done {
				assert.Equal(t, tt.wantEx, got)
			} else {
				_, more := next.Next()
				assert.False(t, more)
			}
		})
	}
}

func TestWorkoutStateNextIsDeterministic(t *testing.T) {
	core := mustCircuit(t, "Core", 3, ex("A"), ex("B"), ex("C"))
	s := NewWorkoutState([]Circuit{core}, Position{0, 1, 2})

	a, _ := s.Next()
	b, _ := s.Next()
	assert.Equal(t, a.Position(), b.Position())

	c, _ := a.Next()
	assert.NotEqual(t, a.Position(), c.Position())
}

func TestWorkoutStateCompletionLaw(t *testing.T) {
	circuits := []Circuit{
		mustCircuit(t, "Core", 2, ex("A"), ex("B"), ex("C")),
		mustCircuit(t, "Full Body", 3, ex("D")),
		mustCircuit(t, "Legs", 2, ex("E"), ex("F")),
	}
	s := NewWorkoutState(circuits, StartingPosition)
	want := 2*3 + 3*1 + 2*2
	require.Equal(t, want, s.TotalSteps())

	steps := 0
	for !s.IsCompleted() {
		assert.Equal(t, steps, s.CompletedSteps())
		next, ok := s.Next()
		require.True(t, ok)
		s = next
		steps++
		require.LessOrEqual(t, steps, want)
	}
	assert.Equal(t, want, steps)
	assert.Equal(t, want, s.CompletedSteps())
}

func TestWorkoutStateSnapshotRoundTrip(t *testing.T) {
	circuits := []Circuit{
		mustCircuit(t, "Core", 2, ex("A"), ex("B")),
		mustCircuit(t, "Legs", 1, ex("C")),
	}
	s := NewWorkoutState(circuits, StartingPosition)

	for {
		back, err := s.Snapshot().State()
		require.NoError(t, err)
		assertEquivalent(t, s, back)

		data, err := json.Marshal(s.Snapshot())
		require.NoError(t, err)
		var fromJSON WorkoutSnapshot
		require.NoError(t, json.Unmarshal(data, &fromJSON))
		back, err = fromJSON.State()
		require.NoError(t, err)
		assertEquivalent(t, s, back)

		raw, err := bson.Marshal(s.Snapshot())
		require.NoError(t, err)
		var fromBSON WorkoutSnapshot
		require.NoError(t, bson.Unmarshal(raw, &fromBSON))
		back, err = fromBSON.State()
		require.NoError(t, err)
		assertEquivalent(t, s, back)

		next, ok := s.Next()
		if !ok {
			break
		}
		s = next
	}
}

func assertEquivalent(t *testing.T, want, got WorkoutState) {
	t.Helper()
	assert.Equal(t, want.IsCompleted(), got.IsCompleted())
	assert.Equal(t, want.Position(), got.Position())
	wantEx, wantOK := want.CurrentExercise()
	gotEx, gotOK := got.CurrentExercise()
	assert.Equal(t, wantOK, gotOK)
	assert.Equal(t, wantEx, gotEx)
}

func TestWorkoutSnapshotRejectsBadPosition(t *testing.T) {
	snap := WorkoutSnapshot{
		Circuits: []CircuitSnapshot{{Name: "Core", NumRounds: 2, Exercises: []Exercise{ex("A")}}},
	}

	for _, p := range []Position{{0, 2, 0}, {0, 0, 1}, {-1, 0, 0}} {
		snap.Position = p
		_, err := snap.State()
		assert.ErrorIs(t, err, ErrInvalidPosition, "position %s", p)
	}

	snap.Position = Position{1, 0, 0}
	s, err := snap.State()
	require.NoError(t, err)
	assert.True(t, s.IsCompleted())
}

func TestWorkoutSnapshotRejectsBadCircuit(t *testing.T) {
	snap := WorkoutSnapshot{
		Circuits: []CircuitSnapshot{{Name: "Broken", NumRounds: 0, Exercises: []Exercise{ex("A")}}},
	}
	_, err := snap.State()
	assert.ErrorIs(t, err, ErrInvalidRoundCount)
}
