package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

const meterName = "circuitbot"

// WorkoutMetrics counts workout lifecycle events
type WorkoutMetrics struct {
	started   otelmetric.Int64Counter
	completed otelmetric.Int64Counter
	exercises otelmetric.Int64Counter
}

// NewWorkoutMetrics registers the counters on the global meter provider.
// Before Initialize (or with telemetry disabled) they are no-ops.
func NewWorkoutMetrics() (*WorkoutMetrics, error) {
	meter := otel.Meter(meterName)

	started, err := meter.Int64Counter("circuitbot.workouts.started",
		otelmetric.WithDescription("Workouts assembled for a user"))
	if err != nil {
		return nil, err
	}
	completed, err := meter.Int64Counter("circuitbot.workouts.completed",
		otelmetric.WithDescription("Workouts walked through to the end"))
	if err != nil {
		return nil, err
	}
	exercises, err := meter.Int64Counter("circuitbot.exercises.completed",
		otelmetric.WithDescription("Exercises marked done"))
	if err != nil {
		return nil, err
	}

	return &WorkoutMetrics{started: started, completed: completed, exercises: exercises}, nil
}

func (m *WorkoutMetrics) WorkoutStarted(ctx context.Context, circuits int) {
	if m == nil {
		return
	}
	m.started.Add(ctx, 1, otelmetric.WithAttributes(attribute.Int("workout.circuits", circuits)))
}

func (m *WorkoutMetrics) ExerciseCompleted(ctx context.Context, circuit string) {
	if m == nil {
		return
	}
	m.exercises.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("workout.circuit", circuit)))
}

func (m *WorkoutMetrics) WorkoutCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.completed.Add(ctx, 1)
}
