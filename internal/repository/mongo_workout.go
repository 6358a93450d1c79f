package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWorkoutRepository keeps one workout document per user
type MongoWorkoutRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutRepository(db *mongo.Database) *MongoWorkoutRepository {
	coll := db.Collection("workouts")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"user_id": 1},
		Options: options.Index().SetUnique(true),
	})

	return &MongoWorkoutRepository{
		collection: coll,
	}
}

// Save upserts the workout keyed by user id
func (r *MongoWorkoutRepository) Save(ctx context.Context, w *domain.Workout) error {
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	filter := bson.M{"user_id": w.UserID}
	update := bson.M{
		"$set": bson.M{
			"workout_id": w.WorkoutID,
			"state":      w.State,
			"updated_at": w.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"user_id":    w.UserID,
			"created_at": w.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}
	return nil
}

func (r *MongoWorkoutRepository) Load(ctx context.Context, userID string) (*domain.Workout, error) {
	var doc workoutDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to load workout: %w", err)
	}
	return &domain.Workout{
		UserID:    doc.UserID,
		WorkoutID: doc.WorkoutID,
		State:     doc.State,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *MongoWorkoutRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil
}

type workoutDocument struct {
	UserID    string                 `bson:"user_id"`
	WorkoutID string                 `bson:"workout_id"`
	State     domain.WorkoutSnapshot `bson:"state"`
	CreatedAt time.Time              `bson:"created_at"`
	UpdatedAt time.Time              `bson:"updated_at"`
}
