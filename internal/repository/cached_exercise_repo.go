package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	log "github.com/sirupsen/logrus"
)

// CachedExerciseRepository serves category pools from Redis and falls back to
// the wrapped repository on a miss. Writes invalidate the touched categories.
type CachedExerciseRepository struct {
	domain.ExerciseRepository
	cache *RedisCacheRepository
	ttl   time.Duration
}

func NewCachedExerciseRepository(repo domain.ExerciseRepository, cache *RedisCacheRepository, ttl time.Duration) *CachedExerciseRepository {
	return &CachedExerciseRepository{
		ExerciseRepository: repo,
		cache:              cache,
		ttl:                ttl,
	}
}

func (r *CachedExerciseRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Exercise, error) {
	key := catalogKeyPrefix + string(category)

	var pool []domain.Exercise
	if err := r.cache.Get(ctx, key, &pool); err == nil {
		return pool, nil
	}

	pool, err := r.ExerciseRepository.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	// an empty pool is not cached so a seed shows up immediately
	if len(pool) > 0 {
		if err := r.cache.Set(ctx, key, pool, r.ttl); err != nil {
			log.Warnf("[Catalog] failed to cache %s pool: %v", category, err)
		}
	}
	return pool, nil
}

func (r *CachedExerciseRepository) Create(ctx context.Context, ex *domain.Exercise) error {
	if err := r.ExerciseRepository.Create(ctx, ex); err != nil {
		return err
	}
	r.invalidate(ctx, ex.Category)
	return nil
}

func (r *CachedExerciseRepository) Update(ctx context.Context, ex *domain.Exercise) error {
	// the category may change, so drop the old one too
	old, err := r.ExerciseRepository.GetByID(ctx, ex.ID)
	if err != nil {
		return err
	}
	if err := r.ExerciseRepository.Update(ctx, ex); err != nil {
		return err
	}
	r.invalidate(ctx, old.Category, ex.Category)
	return nil
}

func (r *CachedExerciseRepository) Delete(ctx context.Context, id string) error {
	old, err := r.ExerciseRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ExerciseRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, old.Category)
	return nil
}

func (r *CachedExerciseRepository) invalidate(ctx context.Context, categories ...domain.Category) {
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		keys = append(keys, catalogKeyPrefix+string(c))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Warnf("[Catalog] failed to invalidate %v: %v", categories, err)
	}
}
