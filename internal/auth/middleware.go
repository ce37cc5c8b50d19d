package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/dku-library/ticket-chat/pkg/util"
)

const requesterKey = "chat_requester"

// ChatAuthMiddleware validates bearer conversation tokens and exposes the
// requester email to handlers.
type ChatAuthMiddleware struct {
	tokens *TokenManager
}

// NewChatAuthMiddleware constructs middleware.
func NewChatAuthMiddleware(tokens *TokenManager) *ChatAuthMiddleware {
	return &ChatAuthMiddleware{tokens: tokens}
}

// Handle enforces a valid conversation token on turn routes.
func (m *ChatAuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing conversation token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid conversation token")
	}

	c.Locals(requesterKey, claims.Email)
	return c.Next()
}

// RequesterFromContext retrieves the requester email set by Handle.
func RequesterFromContext(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(requesterKey).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
