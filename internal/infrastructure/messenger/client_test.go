package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendQuickReplies(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/me/messages", r.URL.Path)
		assert.Equal(t, "page-token", r.URL.Query().Get("access_token"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"recipient_id":"42","message_id":"m1"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{GraphURL: srv.URL, PageAccessToken: "page-token"})
	err := c.SendQuickReplies(context.Background(), "42", "10 Push ups", []QuickReply{
		TextQuickReply("Done", "DONE"),
	})
	require.NoError(t, err)

	assert.Equal(t, "42", got["recipient"].(map[string]any)["id"])
	msg := got["message"].(map[string]any)
	assert.Equal(t, "10 Push ups", msg["text"])
	replies := msg["quick_replies"].([]any)
	require.Len(t, replies, 1)
	assert.Equal(t, "DONE", replies[0].(map[string]any)["payload"])
}

func TestClientSendAction(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"recipient_id":"42"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{GraphURL: srv.URL, PageAccessToken: "t"})
	require.NoError(t, c.SendAction(context.Background(), "42", ActionTypingOn))
	assert.Equal(t, "typing_on", got["sender_action"])
	assert.NotContains(t, got, "message")
}

func TestClientGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{GraphURL: srv.URL, PageAccessToken: "bad"})
	err := c.SendText(context.Background(), "42", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token.")
	assert.Contains(t, err.Error(), "190")
}
