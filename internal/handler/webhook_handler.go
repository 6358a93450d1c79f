package handler

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/circuitbot/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ChatHandler reacts to what a Messenger user sent.
type ChatHandler interface {
	HandleText(ctx context.Context, userID, text string) error
	HandlePayload(ctx context.Context, userID, payload string) error
}

// MessageDeduper reports whether a message id is seen for the first time.
type MessageDeduper interface {
	FirstSeen(ctx context.Context, mid string) (bool, error)
}

// WebhookHandler handles the Messenger platform webhook
type WebhookHandler struct {
	chat        ChatHandler
	dedup       MessageDeduper
	verifyToken string
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(chat ChatHandler, dedup MessageDeduper, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		chat:        chat,
		dedup:       dedup,
		verifyToken: verifyToken,
	}
}

// WebhookPayload is the body Messenger posts to the webhook.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type MessagingEvent struct {
	Sender    struct{ ID string } `json:"sender"`
	Recipient struct{ ID string } `json:"recipient"`
	Timestamp int64               `json:"timestamp"`
	Message   *struct {
		MID        string `json:"mid"`
		Text       string `json:"text"`
		IsEcho     bool   `json:"is_echo"`
		QuickReply *struct {
			Payload string `json:"payload"`
		} `json:"quick_reply"`
		Attachments []json.RawMessage `json:"attachments"`
	} `json:"message"`
	Postback *struct {
		MID     string `json:"mid"`
		Title   string `json:"title"`
		Payload string `json:"payload"`
	} `json:"postback"`
}

// Verify handles GET /webhook, the subscription handshake
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	if c.Query("hub.mode") == "subscribe" && c.Query("hub.verify_token") == h.verifyToken {
		log.Info("[Webhook] validating webhook")
		return c.Status(fiber.StatusOK).SendString(c.Query("hub.challenge"))
	}
	log.Warn("[Webhook] failed validation, verify tokens do not match")
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive handles POST /webhook. Signature checks run in middleware before
// this handler.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		log.Warnf("[Webhook] failed to parse body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if payload.Object != "page" {
		return c.SendStatus(fiber.StatusNotFound)
	}

	ctx := c.UserContext()
	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			h.dispatch(ctx, event)
		}
	}

	telemetry.AddSpanEvent(c, "webhook.received", attribute.Int("webhook.entries", len(payload.Entry)))
	return c.SendString("EVENT_RECEIVED")
}

func (h *WebhookHandler) dispatch(ctx context.Context, event MessagingEvent) {
	senderID := event.Sender.ID
	if senderID == "" {
		return
	}

	var (
		mid string
		err error
	)
	switch {
	case event.Message != nil:
		msg := event.Message
		if msg.IsEcho {
			log.Debugf("[Webhook] echo for message %s", msg.MID)
			return
		}
		mid = msg.MID
		if !h.firstSeen(ctx, mid) {
			return
		}
		switch {
		case msg.QuickReply != nil:
			err = h.chat.HandlePayload(ctx, senderID, msg.QuickReply.Payload)
		case msg.Text != "":
			err = h.chat.HandleText(ctx, senderID, msg.Text)
		default:
			log.Debugf("[Webhook] message %s from %s has %d attachments, ignored", mid, senderID, len(msg.Attachments))
		}
	case event.Postback != nil:
		mid = event.Postback.MID
		if !h.firstSeen(ctx, mid) {
			return
		}
		err = h.chat.HandlePayload(ctx, senderID, event.Postback.Payload)
	default:
		return
	}

	if err != nil {
		log.WithFields(log.Fields{"sender_id": senderID, "mid": mid}).
			Errorf("[Webhook] failed to handle event: %v", err)
	}
}

// firstSeen is true unless the store confirms mid was already handled.
// Store errors let the event through.
func (h *WebhookHandler) firstSeen(ctx context.Context, mid string) bool {
	first, err := h.dedup.FirstSeen(ctx, mid)
	if err != nil {
		log.Warnf("[Webhook] dedup check for %s failed: %v", mid, err)
		return true
	}
	if !first {
		log.Infof("[Webhook] duplicate delivery of %s skipped", mid)
	}
	return first
}
