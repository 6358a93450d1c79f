package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mansoorceksport/circuitbot/internal/catalog"
	"github.com/mansoorceksport/circuitbot/internal/config"
	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/mansoorceksport/circuitbot/internal/logging"
	"github.com/mansoorceksport/circuitbot/internal/repository"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	file := flag.String("file", "", "seed from a local catalog JSON file")
	s3Key := flag.String("s3-key", "", "seed from a catalog JSON object in S3_BUCKET, e.g. catalog/default.json")
	flag.Parse()

	// The seeder only needs Mongo (and optionally Redis/S3), so the full
	// server validation is skipped.
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logging.Setup(cfg.Log.Level, cfg.Log.JSON)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cat, err := loadCatalog(ctx, cfg, *file, *s3Key)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	var repo domain.ExerciseRepository = repository.NewMongoExerciseRepository(client.Database(cfg.MongoDB.Database))

	// With Redis reachable, writes also drop the cached pools.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnf("Redis unavailable, cached pools expire on their own: %v", err)
	} else {
		repo = repository.NewCachedExerciseRepository(repo, repository.NewRedisCacheRepository(redisClient), cfg.Catalog.CacheTTL)
	}

	created, skipped := 0, 0
	for _, ex := range cat.Exercises() {
		ex := ex
		if err := repo.Create(ctx, &ex); err != nil {
			if errors.Is(err, domain.ErrDuplicateExercise) {
				log.Debugf("Skipping duplicate: [%s] %s", ex.Category, ex.Description)
				skipped++
				continue
			}
			log.Errorf("Error creating [%s] %s: %v", ex.Category, ex.Description, err)
			continue
		}
		created++
	}
	log.Infof("Seeding exercises complete: %d created, %d already present", created, skipped)
}

func loadCatalog(ctx context.Context, cfg *config.Config, file, s3Key string) (catalog.Catalog, error) {
	var r io.ReadCloser
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		r = f
	case s3Key != "":
		src, err := repository.NewS3CatalogSource(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		body, err := src.Open(ctx, s3Key)
		if err != nil {
			return nil, err
		}
		r = body
	default:
		log.Info("Seeding from the embedded default catalog")
		return catalog.Default()
	}
	defer r.Close()
	return catalog.Parse(r)
}
