package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/mansoorceksport/circuitbot/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreWorkoutRepository stores workouts as documents keyed by user id
// in the "workouts" collection.
type FirestoreWorkoutRepository struct {
	workouts *firestore.CollectionRef
}

func NewFirestoreWorkoutRepository(client *firestore.Client) *FirestoreWorkoutRepository {
	return &FirestoreWorkoutRepository{
		workouts: client.Collection("workouts"),
	}
}

func (r *FirestoreWorkoutRepository) Save(ctx context.Context, w *domain.Workout) error {
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	if _, err := r.workouts.Doc(w.UserID).Set(ctx, w); err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}
	return nil
}

func (r *FirestoreWorkoutRepository) Load(ctx context.Context, userID string) (*domain.Workout, error) {
	snap, err := r.workouts.Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to load workout: %w", err)
	}

	var w domain.Workout
	if err := snap.DataTo(&w); err != nil {
		return nil, fmt.Errorf("failed to decode workout: %w", err)
	}
	return &w, nil
}

func (r *FirestoreWorkoutRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.workouts.Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil
}
