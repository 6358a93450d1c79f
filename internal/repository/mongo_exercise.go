package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseRepository(db *mongo.Database) *MongoExerciseRepository {
	coll := db.Collection("exercises")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// a description is unique within its category
	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}, {Key: "description", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoExerciseRepository{
		collection: coll,
	}
}

func (r *MongoExerciseRepository) Create(ctx context.Context, ex *domain.Exercise) error {
	ex.CreatedAt = time.Now()
	ex.UpdatedAt = ex.CreatedAt
	ex.ID = ""

	result, err := r.collection.InsertOne(ctx, ex)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateExercise
		}
		return fmt.Errorf("failed to create exercise: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ex.ID = oid.Hex()
	}
	return nil
}

func (r *MongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var doc exerciseDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrExerciseNotFound
		}
		return nil, err
	}
	ex := doc.toDomain()
	return &ex, nil
}

// List returns the catalog, filtered to one category when category is set
func (r *MongoExerciseRepository) List(ctx context.Context, category domain.Category) ([]*domain.Exercise, error) {
	query := bson.M{}
	if category != "" {
		query["category"] = category
	}

	docs, err := r.find(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Exercise, len(docs))
	for i := range docs {
		ex := docs[i].toDomain()
		out[i] = &ex
	}
	return out, nil
}

// ListByCategory returns one category's pool in insertion order
func (r *MongoExerciseRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Exercise, error) {
	docs, err := r.find(ctx, bson.M{"category": category})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Exercise, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *MongoExerciseRepository) find(ctx context.Context, query bson.M) ([]exerciseDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode exercises: %w", err)
	}
	return docs, nil
}

func (r *MongoExerciseRepository) Update(ctx context.Context, ex *domain.Exercise) error {
	oid, err := primitive.ObjectIDFromHex(ex.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	ex.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"category":         ex.Category,
			"description":      ex.Description,
			"reps":             ex.Reps,
			"duration_seconds": ex.DurationSeconds,
			"gif":              ex.GIF,
			"updated_at":       ex.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateExercise
		}
		return fmt.Errorf("failed to update exercise: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrExerciseNotFound
	}
	return nil
}

func (r *MongoExerciseRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrExerciseNotFound
	}
	return nil
}

// exerciseDocument decodes _id as an ObjectID; domain.Exercise keeps it as a
// hex string.
type exerciseDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	Category        domain.Category    `bson:"category"`
	Description     string             `bson:"description"`
	Reps            *int               `bson:"reps,omitempty"`
	DurationSeconds *int               `bson:"duration_seconds,omitempty"`
	GIF             string             `bson:"gif,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (d exerciseDocument) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:              d.ID.Hex(),
		Category:        d.Category,
		Description:     d.Description,
		Reps:            d.Reps,
		DurationSeconds: d.DurationSeconds,
		GIF:             d.GIF,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
