package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// VerifyHubSignature rejects webhook deliveries whose X-Hub-Signature-256
// (or legacy X-Hub-Signature) header is not the HMAC of the raw body under
// appSecret.
func VerifyHubSignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			header string
			newMAC func() hash.Hash
			prefix string
		)
		if h := c.Get("X-Hub-Signature-256"); h != "" {
			header, newMAC, prefix = h, sha256.New, "sha256="
		} else if h := c.Get("X-Hub-Signature"); h != "" {
			header, newMAC, prefix = h, sha1.New, "sha1="
		} else {
			log.Warn("[Webhook] delivery without signature")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing signature",
			})
		}

		if !strings.HasPrefix(header, prefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Malformed signature",
			})
		}
		got, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Malformed signature",
			})
		}

		mac := hmac.New(newMAC, []byte(appSecret))
		mac.Write(c.Body())
		if !hmac.Equal(got, mac.Sum(nil)) {
			log.Warn("[Webhook] signature mismatch")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}
