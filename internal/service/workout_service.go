package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/mansoorceksport/circuitbot/internal/telemetry"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("circuitbot/service")

// ActiveWorkout is a stored workout with its state decoded.
type ActiveWorkout struct {
	WorkoutID string
	UserID    string
	State     domain.WorkoutState
	CreatedAt time.Time
}

// Transition describes one Advance call.
type Transition struct {
	WorkoutID string
	Before    domain.WorkoutState
	After     domain.WorkoutState
	// CircuitStarted is set when After sits on the first exercise of the
	// first round of a circuit that Before was not in.
	CircuitStarted bool
	Completed      bool
}

type WorkoutService struct {
	repo      domain.WorkoutRepository
	locker    domain.WorkoutLocker
	assembler *WorkoutAssembler
	metrics   *telemetry.WorkoutMetrics
}

func NewWorkoutService(
	repo domain.WorkoutRepository,
	locker domain.WorkoutLocker,
	assembler *WorkoutAssembler,
	metrics *telemetry.WorkoutMetrics,
) *WorkoutService {
	return &WorkoutService{
		repo:      repo,
		locker:    locker,
		assembler: assembler,
		metrics:   metrics,
	}
}

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Start returns the user's workout in progress, or assembles and stores a new
// one when there is none.
func (s *WorkoutService) Start(ctx context.Context, userID string) (*ActiveWorkout, error) {
	ctx, span := tracer.Start(ctx, "WorkoutService.Start", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.Current(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrWorkoutNotFound) {
		span.RecordError(err)
		return nil, err
	}
	return s.create(ctx, userID)
}

// Restart discards any workout in progress and assembles a new one.
func (s *WorkoutService) Restart(ctx context.Context, userID string) (*ActiveWorkout, error) {
	ctx, span := tracer.Start(ctx, "WorkoutService.Restart", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.create(ctx, userID)
}

func (s *WorkoutService) create(ctx context.Context, userID string) (*ActiveWorkout, error) {
	circuits, err := s.assembler.Assemble(ctx)
	if err != nil {
		trace.SpanFromContext(ctx).SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to assemble workout: %w", err)
	}

	state := domain.NewWorkoutState(circuits, domain.StartingPosition)
	record := &domain.Workout{
		UserID:    userID,
		WorkoutID: generateULID(),
		State:     state.Snapshot(),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.WorkoutStarted(ctx, len(circuits))
	log.WithFields(log.Fields{"user_id": userID, "workout_id": record.WorkoutID}).
		Infof("[Workout] assembled %d circuits, %d steps", len(circuits), state.TotalSteps())

	return &ActiveWorkout{
		WorkoutID: record.WorkoutID,
		UserID:    userID,
		State:     state,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Current loads the user's workout. It returns ErrWorkoutNotFound when the
// user has none.
func (s *WorkoutService) Current(ctx context.Context, userID string) (*ActiveWorkout, error) {
	record, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	state, err := record.State.State()
	if err != nil {
		return nil, fmt.Errorf("stored workout %s is corrupt: %w", record.WorkoutID, err)
	}
	return &ActiveWorkout{
		WorkoutID: record.WorkoutID,
		UserID:    record.UserID,
		State:     state,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Advance marks the current exercise done. The workout is deleted once the
// last step is passed.
func (s *WorkoutService) Advance(ctx context.Context, userID string) (*Transition, error) {
	ctx, span := tracer.Start(ctx, "WorkoutService.Advance", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	before, err := record.State.State()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("stored workout %s is corrupt: %w", record.WorkoutID, err)
	}

	t := &Transition{WorkoutID: record.WorkoutID, Before: before}

	after, ok := before.Next()
	if !ok {
		// a finished workout should never have been stored
		t.After = before
		t.Completed = true
		return t, s.repo.Delete(ctx, userID)
	}
	t.After = after

	if circuit, ok := before.CurrentCircuit(); ok {
		s.metrics.ExerciseCompleted(ctx, circuit.Name())
	}

	if after.IsCompleted() {
		if err := s.repo.Delete(ctx, userID); err != nil {
			return nil, err
		}
		t.Completed = true
		s.metrics.WorkoutCompleted(ctx)
		log.WithFields(log.Fields{"user_id": userID, "workout_id": record.WorkoutID}).
			Info("[Workout] completed")
		return t, nil
	}

	bp, ap := before.Position(), after.Position()
	t.CircuitStarted = ap.CircuitIndex != bp.CircuitIndex && ap.RoundIndex == 0 && ap.ExerciseIndex == 0

	record.State = after.Snapshot()
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("workout.position", ap.String()))
	return t, nil
}

// Abandon deletes the user's workout.
func (s *WorkoutService) Abandon(ctx context.Context, userID string) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.repo.Load(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}
