package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/mansoorceksport/circuitbot/internal/infrastructure/messenger"
	log "github.com/sirupsen/logrus"
)

// Quick reply and postback payloads.
const (
	PayloadGetStarted = "GET_STARTED"
	PayloadDone       = "DONE"
	PayloadStartTimer = "START_TIMER"
)

const helpText = `Commands:
new workout - build a fresh workout
done - mark the current exercise as done
status - show where you are
quit - drop the current workout`

// MessageSender delivers replies to a chat user.
type MessageSender interface {
	SendText(ctx context.Context, recipientID, text string) error
	SendQuickReplies(ctx context.Context, recipientID, text string, replies []messenger.QuickReply) error
	SendImage(ctx context.Context, recipientID, imageURL string) error
	SendAction(ctx context.Context, recipientID string, action messenger.SenderAction) error
}

// ConversationService maps chat input onto workout operations and renders
// the result back to the user.
type ConversationService struct {
	workouts *WorkoutService
	sender   MessageSender
}

func NewConversationService(workouts *WorkoutService, sender MessageSender) *ConversationService {
	return &ConversationService{workouts: workouts, sender: sender}
}

// HandleText reacts to a free text message.
func (s *ConversationService) HandleText(ctx context.Context, userID, text string) error {
	if err := s.sender.SendAction(ctx, userID, messenger.ActionMarkSeen); err != nil {
		log.Warnf("[Conversation] mark_seen for %s failed: %v", userID, err)
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case "new workout", "start":
		return s.newWorkout(ctx, userID)
	case "done":
		return s.advance(ctx, userID)
	case "status", "where am i":
		return s.status(ctx, userID)
	case "quit", "stop":
		return s.quit(ctx, userID)
	default:
		return s.sender.SendText(ctx, userID, helpText)
	}
}

// HandlePayload reacts to a quick reply or postback payload.
func (s *ConversationService) HandlePayload(ctx context.Context, userID, payload string) error {
	switch payload {
	case PayloadGetStarted:
		return s.resume(ctx, userID)
	case PayloadDone:
		return s.advance(ctx, userID)
	case PayloadStartTimer:
		return s.startTimer(ctx, userID)
	default:
		log.Warnf("[Conversation] unknown payload %q from %s", payload, userID)
		return s.sender.SendText(ctx, userID, helpText)
	}
}

func (s *ConversationService) newWorkout(ctx context.Context, userID string) error {
	s.typing(ctx, userID)
	w, err := s.workouts.Restart(ctx, userID)
	if err != nil {
		return s.replyError(ctx, userID, err)
	}
	if err := s.sender.SendText(ctx, userID, workoutOverview(w.State)); err != nil {
		return err
	}
	return s.showCurrent(ctx, userID, w.State, true)
}

func (s *ConversationService) resume(ctx context.Context, userID string) error {
	s.typing(ctx, userID)
	w, err := s.workouts.Start(ctx, userID)
	if err != nil {
		return s.replyError(ctx, userID, err)
	}
	pos := w.State.Position()
	return s.showCurrent(ctx, userID, w.State, pos.RoundIndex == 0 && pos.ExerciseIndex == 0)
}

func (s *ConversationService) advance(ctx context.Context, userID string) error {
	t, err := s.workouts.Advance(ctx, userID)
	if err != nil {
		return s.replyError(ctx, userID, err)
	}
	if t.Completed {
		return s.sender.SendText(ctx, userID, "Workout complete. Nice work! Send \"new workout\" when you are ready for another.")
	}
	return s.showCurrent(ctx, userID, t.After, t.CircuitStarted)
}

func (s *ConversationService) status(ctx context.Context, userID string) error {
	w, err := s.workouts.Current(ctx, userID)
	if err != nil {
		return s.replyError(ctx, userID, err)
	}
	return s.showCurrent(ctx, userID, w.State, false)
}

func (s *ConversationService) quit(ctx context.Context, userID string) error {
	if err := s.workouts.Abandon(ctx, userID); err != nil {
		return s.replyError(ctx, userID, err)
	}
	return s.sender.SendText(ctx, userID, "Workout dropped. Send \"new workout\" to build another.")
}

func (s *ConversationService) startTimer(ctx context.Context, userID string) error {
	w, err := s.workouts.Current(ctx, userID)
	if err != nil {
		return s.replyError(ctx, userID, err)
	}
	ex, ok := w.State.CurrentExercise()
	if !ok || !ex.HasDuration() {
		return s.sender.SendText(ctx, userID, "This one is not timed. Tap Done when you finish.")
	}
	return s.sender.SendQuickReplies(ctx, userID,
		fmt.Sprintf("Timer started: %d seconds. Go!", *ex.DurationSeconds),
		[]messenger.QuickReply{messenger.TextQuickReply("Done", PayloadDone)})
}

// showCurrent sends the current exercise, preceded by the circuit intro when
// withIntro is set.
func (s *ConversationService) showCurrent(ctx context.Context, userID string, state domain.WorkoutState, withIntro bool) error {
	circuit, ok := state.CurrentCircuit()
	if !ok {
		return s.sender.SendText(ctx, userID, "Workout complete.")
	}
	ex, _ := state.CurrentExercise()

	if withIntro {
		if err := s.sender.SendText(ctx, userID, circuitIntro(circuit)); err != nil {
			return err
		}
	}
	if ex.GIF != "" {
		if err := s.sender.SendImage(ctx, userID, ex.GIF); err != nil {
			log.Warnf("[Conversation] gif for %q failed: %v", ex.Description, err)
		}
	}

	replies := []messenger.QuickReply{messenger.TextQuickReply("Done", PayloadDone)}
	if ex.HasDuration() {
		replies = append(replies, messenger.TextQuickReply("Start Timer", PayloadStartTimer))
	}
	return s.sender.SendQuickReplies(ctx, userID, exerciseText(state, circuit, ex), replies)
}

func (s *ConversationService) replyError(ctx context.Context, userID string, err error) error {
	var text string
	switch {
	case errors.Is(err, domain.ErrWorkoutNotFound):
		text = "You have no workout going. Send \"new workout\" to start one."
	case errors.Is(err, domain.ErrWorkoutBusy):
		text = "Still saving your last step, try again in a moment."
	default:
		log.Errorf("[Conversation] %s: %v", userID, err)
		text = "Something went wrong on our side. Please try again."
	}
	if sendErr := s.sender.SendText(ctx, userID, text); sendErr != nil {
		return sendErr
	}
	if errors.Is(err, domain.ErrWorkoutNotFound) || errors.Is(err, domain.ErrWorkoutBusy) {
		return nil
	}
	return err
}

func (s *ConversationService) typing(ctx context.Context, userID string) {
	if err := s.sender.SendAction(ctx, userID, messenger.ActionTypingOn); err != nil {
		log.Warnf("[Conversation] typing_on for %s failed: %v", userID, err)
	}
}

func circuitIntro(c domain.Circuit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Start circuit: %s - %d rounds", c.Name(), c.NumRounds())
	for _, ex := range c.Exercises() {
		b.WriteString("\n- ")
		b.WriteString(ex.Description)
	}
	return b.String()
}

func workoutOverview(state domain.WorkoutState) string {
	circuits := state.Circuits()
	names := make([]string, 0, len(circuits))
	for _, c := range circuits {
		names = append(names, fmt.Sprintf("%s x%d", c.Name(), c.NumRounds()))
	}
	return fmt.Sprintf("New workout: %s (%d exercises total)", strings.Join(names, ", "), state.TotalSteps())
}

func exerciseText(state domain.WorkoutState, c domain.Circuit, ex domain.Exercise) string {
	pos := state.Position()
	return fmt.Sprintf("%s\n%s round %d/%d, exercise %d/%d (step %d of %d)",
		ex.Description,
		c.Name(), pos.RoundIndex+1, c.NumRounds(), pos.ExerciseIndex+1, c.Len(),
		state.CompletedSteps()+1, state.TotalSteps())
}
