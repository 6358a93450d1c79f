package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"golang.org/x/sync/errgroup"
)

// PoolPick asks for Count exercises sampled from one category.
type PoolPick struct {
	Category domain.Category
	Count    int
}

// CircuitRecipe describes one circuit of a workout. When Options holds more
// than one pick, one of them is chosen uniformly per assembly. Finisher, if
// set, is sampled separately and chained after the main exercises.
type CircuitRecipe struct {
	Name     string
	Rounds   int
	Options  []PoolPick
	Finisher *PoolPick
}

// DefaultRecipe is the workout served to chat users.
func DefaultRecipe() []CircuitRecipe {
	cardio := &PoolPick{Category: domain.CategoryCardio, Count: 1}
	return []CircuitRecipe{
		{
			Name:     "Core",
			Rounds:   2,
			Options:  []PoolPick{{Category: domain.CategoryCore, Count: 6}},
			Finisher: cardio,
		},
		{
			Name:   "Full Body",
			Rounds: 3,
			Options: []PoolPick{
				{Category: domain.CategoryCompound, Count: 2},
				{Category: domain.CategoryFullBody, Count: 1},
			},
			Finisher: cardio,
		},
		{
			Name:    "Legs",
			Rounds:  2,
			Options: []PoolPick{{Category: domain.CategoryLowerBody, Count: 3}},
		},
		{
			Name:    "Back",
			Rounds:  2,
			Options: []PoolPick{{Category: domain.CategoryBack, Count: 2}},
		},
		{
			Name:    "Chest",
			Rounds:  2,
			Options: []PoolPick{{Category: domain.CategoryChest, Count: 2}},
		},
	}
}

// PoolSource supplies the candidate exercises of a category.
type PoolSource interface {
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Exercise, error)
}

// WorkoutAssembler turns a recipe into circuits.
type WorkoutAssembler struct {
	pools  PoolSource
	recipe []CircuitRecipe
	rnd    domain.RandSource
}

func NewWorkoutAssembler(pools PoolSource, recipe []CircuitRecipe, rnd domain.RandSource) *WorkoutAssembler {
	if rnd == nil {
		rnd = NewLockedRand(time.Now().UnixNano())
	}
	return &WorkoutAssembler{pools: pools, recipe: recipe, rnd: rnd}
}

// Assemble loads every pool the recipe touches and builds one circuit per
// recipe entry, in recipe order.
func (a *WorkoutAssembler) Assemble(ctx context.Context) ([]domain.Circuit, error) {
	ctx, span := tracer.Start(ctx, "WorkoutAssembler.Assemble")
	defer span.End()

	pools, err := a.loadPools(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	circuits := make([]domain.Circuit, 0, len(a.recipe))
	for _, r := range a.recipe {
		c, err := a.build(r, pools)
		if err != nil {
			err = fmt.Errorf("failed to build %q circuit: %w", r.Name, err)
			span.RecordError(err)
			return nil, err
		}
		circuits = append(circuits, c)
	}
	return circuits, nil
}

func (a *WorkoutAssembler) build(r CircuitRecipe, pools map[domain.Category][]domain.Exercise) (domain.Circuit, error) {
	if len(r.Options) == 0 {
		return domain.Circuit{}, fmt.Errorf("%w: recipe has no pool", domain.ErrInvalidSampleSize)
	}
	pick := r.Options[0]
	if len(r.Options) > 1 {
		pick = r.Options[a.rnd.Intn(len(r.Options))]
	}

	builder := domain.NewCircuitBuilder(pools[pick.Category], a.rnd).
		WithName(r.Name).
		WithNumRounds(r.Rounds).
		WithNumExercises(pick.Count)

	if r.Finisher != nil {
		finisher, err := domain.NewCircuitBuilder(pools[r.Finisher.Category], a.rnd).
			WithNumExercises(r.Finisher.Count).
			Build()
		if err != nil {
			return domain.Circuit{}, fmt.Errorf("finisher: %w", err)
		}
		builder.WithFollowingCircuit(finisher)
	}

	return builder.Build()
}

func (a *WorkoutAssembler) loadPools(ctx context.Context) (map[domain.Category][]domain.Exercise, error) {
	needed := make(map[domain.Category]struct{})
	for _, r := range a.recipe {
		for _, p := range r.Options {
			needed[p.Category] = struct{}{}
		}
		if r.Finisher != nil {
			needed[r.Finisher.Category] = struct{}{}
		}
	}

	var mu sync.Mutex
	pools := make(map[domain.Category][]domain.Exercise, len(needed))

	g, gCtx := errgroup.WithContext(ctx)
	for category := range needed {
		g.Go(func() error {
			pool, err := a.pools.ListByCategory(gCtx, category)
			if err != nil {
				return fmt.Errorf("failed to load %s pool: %w", category, err)
			}
			mu.Lock()
			pools[category] = pool
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pools, nil
}

// LockedRand is a RandSource safe for use from concurrent requests.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
