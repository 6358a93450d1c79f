package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/mansoorceksport/circuitbot/internal/service"
	log "github.com/sirupsen/logrus"
)

type WorkoutHandler struct {
	workoutService *service.WorkoutService
	exerciseRepo   domain.ExerciseRepository
}

func NewWorkoutHandler(workoutService *service.WorkoutService, exerciseRepo domain.ExerciseRepository) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		exerciseRepo:   exerciseRepo,
	}
}

// WorkoutResponse is the JSON view of a workout in progress.
type WorkoutResponse struct {
	WorkoutID       string                 `json:"workout_id,omitempty"`
	UserID          string                 `json:"user_id"`
	State           domain.WorkoutSnapshot `json:"state"`
	Completed       bool                   `json:"completed"`
	Progress        Progress               `json:"progress"`
	CurrentCircuit  string                 `json:"current_circuit,omitempty"`
	CurrentExercise *domain.Exercise       `json:"current_exercise,omitempty"`
	CircuitStarted  bool                   `json:"circuit_started,omitempty"`
}

type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func newWorkoutResponse(workoutID, userID string, state domain.WorkoutState) WorkoutResponse {
	resp := WorkoutResponse{
		WorkoutID: workoutID,
		UserID:    userID,
		State:     state.Snapshot(),
		Completed: state.IsCompleted(),
		Progress:  Progress{Completed: state.CompletedSteps(), Total: state.TotalSteps()},
	}
	if c, ok := state.CurrentCircuit(); ok {
		resp.CurrentCircuit = c.Name()
	}
	if ex, ok := state.CurrentExercise(); ok {
		resp.CurrentExercise = &ex
	}
	return resp
}

// --- Exercises CRUD ---

func (h *WorkoutHandler) ListExercises(c *fiber.Ctx) error {
	var category domain.Category
	if q := c.Query("category"); q != "" {
		parsed, err := domain.ParseCategory(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		category = parsed
	}
	// public
	exs, err := h.exerciseRepo.List(c.UserContext(), category)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(exs)
}

func (h *WorkoutHandler) GetExercise(c *fiber.Ctx) error {
	ex, err := h.exerciseRepo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return exerciseError(c, err)
	}
	return c.JSON(ex)
}

func (h *WorkoutHandler) CreateExercise(c *fiber.Ctx) error {
	// Admin Only (Middleware check outside)
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := validateExercise(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req.ID = ""
	if err := h.exerciseRepo.Create(c.UserContext(), &req); err != nil {
		return exerciseError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *WorkoutHandler) UpdateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := validateExercise(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	req.ID = c.Params("id")
	if err := h.exerciseRepo.Update(c.UserContext(), &req); err != nil {
		return exerciseError(c, err)
	}
	return c.JSON(req)
}

func (h *WorkoutHandler) DeleteExercise(c *fiber.Ctx) error {
	if err := h.exerciseRepo.Delete(c.UserContext(), c.Params("id")); err != nil {
		return exerciseError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func validateExercise(ex *domain.Exercise) error {
	if _, err := domain.ParseCategory(string(ex.Category)); err != nil {
		return err
	}
	if ex.Description == "" {
		return errors.New("description is required")
	}
	return nil
}

func exerciseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrExerciseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateExercise):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Errorf("[Exercises] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// --- Workouts ---

func (h *WorkoutHandler) GetWorkout(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	w, err := h.workoutService.Current(c.UserContext(), userID)
	if err != nil {
		return workoutError(c, err)
	}
	return c.JSON(newWorkoutResponse(w.WorkoutID, w.UserID, w.State))
}

// StartWorkout returns the user's workout, assembling one if needed.
// ?fresh=true replaces a workout in progress.
func (h *WorkoutHandler) StartWorkout(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	var (
		w   *service.ActiveWorkout
		err error
	)
	if c.QueryBool("fresh") {
		w, err = h.workoutService.Restart(c.UserContext(), userID)
	} else {
		w, err = h.workoutService.Start(c.UserContext(), userID)
	}
	if err != nil {
		return workoutError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newWorkoutResponse(w.WorkoutID, w.UserID, w.State))
}

func (h *WorkoutHandler) AdvanceWorkout(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	t, err := h.workoutService.Advance(c.UserContext(), userID)
	if err != nil {
		return workoutError(c, err)
	}
	resp := newWorkoutResponse(t.WorkoutID, userID, t.After)
	resp.CircuitStarted = t.CircuitStarted
	return c.JSON(resp)
}

func (h *WorkoutHandler) DeleteWorkout(c *fiber.Ctx) error {
	if err := h.workoutService.Abandon(c.UserContext(), c.Params("user_id")); err != nil {
		return workoutError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func workoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrWorkoutNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrWorkoutBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrPoolTooSmall):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Errorf("[Workouts] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
