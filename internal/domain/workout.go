package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound = errors.New("no workout in progress")
	ErrWorkoutBusy     = errors.New("workout is being updated, try again")
)

// Workout is the persisted record of one user's workout in progress.
type Workout struct {
	ID        string          `json:"id" bson:"_id,omitempty" firestore:"-"`
	UserID    string          `json:"user_id" bson:"user_id" firestore:"user_id"`
	WorkoutID string          `json:"workout_id" bson:"workout_id" firestore:"workout_id"`
	State     WorkoutSnapshot `json:"state" bson:"state" firestore:"state"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at" firestore:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

// WorkoutRepository stores at most one workout per user.
type WorkoutRepository interface {
	// Save inserts or replaces the user's workout.
	Save(ctx context.Context, workout *Workout) error
	// Load returns ErrWorkoutNotFound when the user has no workout.
	Load(ctx context.Context, userID string) (*Workout, error)
	Delete(ctx context.Context, userID string) error
}

// WorkoutLocker serializes read-modify-write cycles on one user's workout.
type WorkoutLocker interface {
	// Lock returns ErrWorkoutBusy when another holder has the lock. The
	// returned func releases it.
	Lock(ctx context.Context, userID string) (func(), error)
}
