package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func signSHA1(secret, body string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHubSignature(t *testing.T) {
	app := fiber.New()
	app.Post("/webhook", VerifyHubSignature("s3cret"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	body := `{"object":"page"}`
	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"sha256 ok", "X-Hub-Signature-256", sign("s3cret", body), http.StatusOK},
		{"sha1 ok", "X-Hub-Signature", signSHA1("s3cret", body), http.StatusOK},
		{"wrong secret", "X-Hub-Signature-256", sign("other", body), http.StatusUnauthorized},
		{"wrong prefix", "X-Hub-Signature-256", signSHA1("s3cret", body), http.StatusUnauthorized},
		{"not hex", "X-Hub-Signature-256", "sha256=zz", http.StatusUnauthorized},
		{"missing", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func adminToken(t *testing.T, secret string, roles []string, exp time.Time) string {
	t.Helper()
	claims := domain.AdminClaims{
		UserID: "admin-1",
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyAdminToken(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", VerifyAdminToken("jwt-secret"), AuthorizeRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(UserIDKey).(string))
	})

	hour := time.Now().Add(time.Hour)
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"admin", adminToken(t, "jwt-secret", []string{domain.RoleAdmin}, hour), http.StatusOK},
		{"no admin role", adminToken(t, "jwt-secret", []string{"viewer"}, hour), http.StatusForbidden},
		{"expired", adminToken(t, "jwt-secret", []string{domain.RoleAdmin}, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"bad signature", adminToken(t, "other", []string{domain.RoleAdmin}, hour), http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestIdempotencyMiddleware(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	calls := 0
	app := fiber.New()
	app.Post("/next", IdempotencyMiddleware(client, time.Minute), func(c *fiber.Ctx) error {
		calls++
		return c.JSON(fiber.Map{"call": calls})
	})

	send := func(id string) (*http.Response, string) {
		req := httptest.NewRequest(http.MethodPost, "/next", nil)
		if id != "" {
			req.Header.Set("X-Correlation-ID", id)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	_, first := send("abc")
	replay, second := send("abc")
	assert.Equal(t, first, second)
	assert.Equal(t, "true", replay.Header.Get("X-Idempotent-Replay"))
	assert.Equal(t, 1, calls)

	_, other := send("def")
	assert.JSONEq(t, `{"call":2}`, other)

	send("")
	send("")
	assert.Equal(t, 4, calls)
}
