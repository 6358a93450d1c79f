package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrDuplicateExercise = errors.New("exercise already exists in category")
	ErrUnknownCategory   = errors.New("unknown exercise category")
)

// Category names an exercise pool circuits are sampled from
type Category string

const (
	CategoryCore      Category = "core"
	CategoryCompound  Category = "compound"
	CategoryFullBody  Category = "full_body"
	CategoryLowerBody Category = "lower_body"
	CategoryBack      Category = "back"
	CategoryChest     Category = "chest"
	CategoryCardio    Category = "cardio"
)

// Categories lists every known pool, in catalog order
var Categories = []Category{
	CategoryCore,
	CategoryCompound,
	CategoryFullBody,
	CategoryLowerBody,
	CategoryBack,
	CategoryChest,
	CategoryCardio,
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// Exercise is a single move in the catalog. The workout engine treats it as
// an opaque value and only passes it through.
type Exercise struct {
	ID              string    `json:"id" bson:"_id,omitempty" firestore:"id"`
	Category        Category  `json:"category" bson:"category" firestore:"category"`
	Description     string    `json:"description" bson:"description" firestore:"description"`
	Reps            *int      `json:"reps,omitempty" bson:"reps,omitempty" firestore:"reps,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty" bson:"duration_seconds,omitempty" firestore:"duration_seconds,omitempty"`
	GIF             string    `json:"gif,omitempty" bson:"gif,omitempty" firestore:"gif,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty" bson:"created_at,omitempty" firestore:"-"`
	UpdatedAt       time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" firestore:"-"`
}

// HasDuration reports whether the exercise is timed
func (e Exercise) HasDuration() bool {
	return e.DurationSeconds != nil && *e.DurationSeconds > 0
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	List(ctx context.Context, category Category) ([]*Exercise, error)
	ListByCategory(ctx context.Context, category Category) ([]Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id string) error
}
