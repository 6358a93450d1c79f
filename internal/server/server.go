package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/circuitbot/internal/config"
	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/mansoorceksport/circuitbot/internal/handler"
	"github.com/mansoorceksport/circuitbot/internal/infrastructure/messenger"
	"github.com/mansoorceksport/circuitbot/internal/middleware"
	"github.com/mansoorceksport/circuitbot/internal/repository"
	"github.com/mansoorceksport/circuitbot/internal/service"
	"github.com/mansoorceksport/circuitbot/internal/telemetry"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// WorkoutRepo overrides the Mongo workout store (e.g. Firestore).
	WorkoutRepo domain.WorkoutRepository
	// Sender overrides the Send API client, mainly for tests.
	Sender service.MessageSender
	// Rand overrides the sampling source. Defaults to a time-seeded one.
	Rand domain.RandSource
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config

	// Initialize repositories
	cache := repository.NewRedisCacheRepository(deps.RedisClient)
	exerciseRepo := repository.NewCachedExerciseRepository(
		repository.NewMongoExerciseRepository(deps.MongoDB),
		cache,
		cfg.Catalog.CacheTTL,
	)
	workoutRepo := deps.WorkoutRepo
	if workoutRepo == nil {
		workoutRepo = repository.NewMongoWorkoutRepository(deps.MongoDB)
	}
	locker := repository.NewRedisWorkoutLocker(cache, cfg.Workout.LockTTL)
	deduper := repository.NewRedisMessageDeduper(cache, cfg.Workout.DedupTTL)

	sender := deps.Sender
	if sender == nil {
		sender = messenger.NewClient(messenger.Config{
			GraphURL:        cfg.Messenger.GraphURL,
			PageAccessToken: cfg.Messenger.PageAccessToken,
		})
	}

	metrics, err := telemetry.NewWorkoutMetrics()
	if err != nil {
		log.Warnf("Warning: workout metrics disabled: %v", err)
	}

	// Initialize services
	assembler := service.NewWorkoutAssembler(exerciseRepo, service.DefaultRecipe(), deps.Rand)
	workoutService := service.NewWorkoutService(workoutRepo, locker, assembler, metrics)
	conversationService := service.NewConversationService(workoutService, sender)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(conversationService, deduper, cfg.Messenger.ValidationToken)
	workoutHandler := handler.NewWorkoutHandler(workoutService, exerciseRepo)

	app := fiber.New(fiber.Config{
		AppName:      "circuitbot",
		BodyLimit:    int(cfg.Server.BodyLimitMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "circuitbot",
		})
	})

	// Messenger platform
	app.Get("/webhook", webhookHandler.Verify)
	app.Post("/webhook", middleware.VerifyHubSignature(cfg.Messenger.AppSecret), webhookHandler.Receive)

	v1 := app.Group("/v1")

	requireAdmin := middleware.VerifyAdminToken(cfg.JWT.Secret)
	adminRole := middleware.AuthorizeRole(domain.RoleAdmin)

	// Exercises: reads are public
	exercises := v1.Group("/exercises")
	exercises.Get("/", workoutHandler.ListExercises)
	exercises.Get("/:id", workoutHandler.GetExercise)
	exercises.Post("/", requireAdmin, adminRole, workoutHandler.CreateExercise)
	exercises.Put("/:id", requireAdmin, adminRole, workoutHandler.UpdateExercise)
	exercises.Delete("/:id", requireAdmin, adminRole, workoutHandler.DeleteExercise)

	workouts := v1.Group("/workouts", requireAdmin, adminRole)
	workouts.Use(middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Workout.DedupTTL))
	workouts.Get("/:user_id", workoutHandler.GetWorkout)
	workouts.Post("/:user_id", workoutHandler.StartWorkout)
	workouts.Post("/:user_id/next", workoutHandler.AdvanceWorkout)
	workouts.Delete("/:user_id", workoutHandler.DeleteWorkout)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("Error: %v", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
