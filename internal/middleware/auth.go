package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dropforge/gitdrop/internal/logger"
)

// Claims carried in a service token. This is the service's own front-door
// auth, independent of the per-request GitHub credential.
type Claims struct {
	Source    string `json:"source"` // "cli" or "ci"
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates a new auth middleware instance. Returns nil
// when no secret is configured, which disables the gate entirely.
func NewAuthMiddleware() *AuthMiddleware {
	secret := os.Getenv("GITDROP_AUTH_SECRET")
	if secret == "" {
		return nil
	}
	return &AuthMiddleware{secret: []byte(secret)}
}

// RequireAuth checks for a valid service token on every request except
// the health and metrics endpoints
func (am *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	if am == nil {
		return c.Next()
	}

	path := c.Path()
	if path == "/health" || path == "/metrics" {
		return c.Next()
	}

	token := extractServiceToken(c)
	if token == "" {
		return c.Status(401).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	claims, err := am.ValidateToken(token)
	if err != nil {
		logger.Debugf("Auth failed: %v", err)
		return c.Status(401).JSON(fiber.Map{
			"error": "invalid or expired token",
		})
	}

	c.Locals("claims", claims)
	return c.Next()
}

func extractServiceToken(c *fiber.Ctx) string {
	if token := c.Get("X-Gitdrop-Token"); token != "" {
		return token
	}
	if cookie := c.Cookies("gitdrop_token"); cookie != "" {
		return cookie
	}
	return c.Query("service_token")
}

// ValidateToken verifies the HMAC-signed token and returns its claims
func (am *AuthMiddleware) ValidateToken(tokenString string) (*Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token format")
	}

	if _, err := base64.RawURLEncoding.DecodeString(parts[0]); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, fmt.Errorf("token expired")
	}

	signatureInput := parts[0] + "." + parts[1]
	h := hmac.New(sha256.New, am.secret)
	h.Write([]byte(signatureInput))
	expectedSignature := base64.RawURLEncoding.EncodeToString(h.Sum(nil))

	if expectedSignature != parts[2] {
		return nil, fmt.Errorf("invalid signature")
	}

	return &claims, nil
}

// GenerateToken mints a new service token signed with the shared secret
func GenerateToken(source string, duration time.Duration) (string, error) {
	secret := os.Getenv("GITDROP_AUTH_SECRET")
	if secret == "" {
		return "", fmt.Errorf("GITDROP_AUTH_SECRET not set")
	}

	now := time.Now()
	claims := Claims{
		Source:    source,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(duration).Unix(),
	}

	header := map[string]string{
		"alg": "HS256",
		"typ": "JWT",
	}

	headerJSON, _ := json.Marshal(header)
	claimsJSON, _ := json.Marshal(claims)

	headerEncoded := base64.RawURLEncoding.EncodeToString(headerJSON)
	claimsEncoded := base64.RawURLEncoding.EncodeToString(claimsJSON)

	signatureInput := headerEncoded + "." + claimsEncoded
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signatureInput))
	signature := base64.RawURLEncoding.EncodeToString(h.Sum(nil))

	return signatureInput + "." + signature, nil
}
