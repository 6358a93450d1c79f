package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/mansoorceksport/circuitbot/internal/infrastructure/messenger"
)

type memWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[string]domain.Workout
	saves    int
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{workouts: make(map[string]domain.Workout)}
}

func (r *memWorkoutRepo) Save(_ context.Context, w *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.workouts[w.UserID] = *w
	return nil
}

func (r *memWorkoutRepo) Load(_ context.Context, userID string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[userID]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	return &w, nil
}

func (r *memWorkoutRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workouts, userID)
	return nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]bool)} }

func (l *memLocker) Lock(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[userID] {
		return nil, domain.ErrWorkoutBusy
	}
	l.held[userID] = true
	return func() {
		l.mu.Lock()
		delete(l.held, userID)
		l.mu.Unlock()
	}, nil
}

// memPools serves n generated exercises per category.
type memPools struct {
	mu    sync.Mutex
	sizes map[domain.Category]int
	calls int
	err   error
}

func (p *memPools) ListByCategory(_ context.Context, category domain.Category) ([]domain.Exercise, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	n := 10
	if size, ok := p.sizes[category]; ok {
		n = size
	}
	pool := make([]domain.Exercise, n)
	for i := range pool {
		pool[i] = domain.Exercise{Category: category, Description: fmt.Sprintf("%s-%d", category, i)}
	}
	return pool, nil
}

type sentMessage struct {
	kind    string
	text    string
	replies []messenger.QuickReply
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) SendText(_ context.Context, _ string, text string) error {
	f.sent = append(f.sent, sentMessage{kind: "text", text: text})
	return nil
}

func (f *fakeSender) SendQuickReplies(_ context.Context, _ string, text string, replies []messenger.QuickReply) error {
	f.sent = append(f.sent, sentMessage{kind: "quick_replies", text: text, replies: replies})
	return nil
}

func (f *fakeSender) SendImage(_ context.Context, _ string, url string) error {
	f.sent = append(f.sent, sentMessage{kind: "image", text: url})
	return nil
}

func (f *fakeSender) SendAction(_ context.Context, _ string, action messenger.SenderAction) error {
	f.sent = append(f.sent, sentMessage{kind: "action", text: string(action)})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	var out []sentMessage
	for _, m := range f.sent {
		if m.kind != "action" {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) reset() { f.sent = nil }
