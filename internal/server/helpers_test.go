package server

import (
	"context"
	"sync"
	"testing"

	"github.com/mansoorceksport/circuitbot/internal/infrastructure/messenger"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database connection
// along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("circuitbot_test"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Warnf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Warnf("failed to terminate container: %v", err)
		}
	}
}

// recordingSender captures Send API calls per recipient.
type recordingSender struct {
	mu   sync.Mutex
	sent map[string][]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(map[string][]string)}
}

func (r *recordingSender) record(id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[id] = append(r.sent[id], text)
	return nil
}

func (r *recordingSender) SendText(_ context.Context, id, text string) error {
	return r.record(id, text)
}

func (r *recordingSender) SendQuickReplies(_ context.Context, id, text string, _ []messenger.QuickReply) error {
	return r.record(id, text)
}

func (r *recordingSender) SendImage(_ context.Context, id, url string) error {
	return r.record(id, "image:"+url)
}

func (r *recordingSender) SendAction(context.Context, string, messenger.SenderAction) error {
	return nil
}

func (r *recordingSender) last(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.sent[id]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}
