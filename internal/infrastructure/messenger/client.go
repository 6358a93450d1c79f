package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// SenderAction is a typing or read indicator.
type SenderAction string

const (
	ActionMarkSeen  SenderAction = "mark_seen"
	ActionTypingOn  SenderAction = "typing_on"
	ActionTypingOff SenderAction = "typing_off"
)

// Config holds Send API configuration
type Config struct {
	GraphURL        string // e.g. https://graph.facebook.com/v19.0
	PageAccessToken string
}

// Client is the Messenger Send API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// QuickReply is a text quick reply button.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// TextQuickReply returns a text quick reply with the given title and payload.
func TextQuickReply(title, payload string) QuickReply {
	return QuickReply{ContentType: "text", Title: title, Payload: payload}
}

type recipient struct {
	ID string `json:"id"`
}

type attachmentPayload struct {
	URL        string `json:"url"`
	IsReusable bool   `json:"is_reusable"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

type message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// SendRequest is the body of a Send API call.
type SendRequest struct {
	Recipient    recipient    `json:"recipient"`
	MessageType  string       `json:"messaging_type,omitempty"`
	Message      *message     `json:"message,omitempty"`
	SenderAction SenderAction `json:"sender_action,omitempty"`
}

// SendResponse is returned by the Send API on success.
type SendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// NewClient creates a new Send API client
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	return c.send(ctx, &SendRequest{
		Recipient:   recipient{ID: recipientID},
		MessageType: "RESPONSE",
		Message:     &message{Text: text},
	})
}

// SendQuickReplies sends text with quick reply buttons underneath.
func (c *Client) SendQuickReplies(ctx context.Context, recipientID, text string, replies []QuickReply) error {
	return c.send(ctx, &SendRequest{
		Recipient:   recipient{ID: recipientID},
		MessageType: "RESPONSE",
		Message:     &message{Text: text, QuickReplies: replies},
	})
}

// SendImage sends an image attachment by URL.
func (c *Client) SendImage(ctx context.Context, recipientID, imageURL string) error {
	return c.send(ctx, &SendRequest{
		Recipient:   recipient{ID: recipientID},
		MessageType: "RESPONSE",
		Message: &message{Attachment: &attachment{
			Type:    "image",
			Payload: attachmentPayload{URL: imageURL, IsReusable: true},
		}},
	})
}

// SendAction sends a sender action such as typing_on.
func (c *Client) SendAction(ctx context.Context, recipientID string, action SenderAction) error {
	return c.send(ctx, &SendRequest{
		Recipient:    recipient{ID: recipientID},
		SenderAction: action,
	})
}

func (c *Client) send(ctx context.Context, body *SendRequest) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.config.GraphURL + "/me/messages?access_token=" + url.QueryEscape(c.config.PageAccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gErr graphError
		if json.Unmarshal(respBody, &gErr) == nil && gErr.Error.Message != "" {
			return fmt.Errorf("send api error: status %d, code %d: %s", resp.StatusCode, gErr.Error.Code, gErr.Error.Message)
		}
		return fmt.Errorf("send api error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var out SendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	log.Debugf("[Messenger] sent message %s to %s", out.MessageID, out.RecipientID)
	return nil
}
