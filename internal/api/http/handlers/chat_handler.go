package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dku-library/ticket-chat/internal/api/dto"
	"github.com/dku-library/ticket-chat/internal/auth"
	"github.com/dku-library/ticket-chat/internal/chat"
	apperrors "github.com/dku-library/ticket-chat/pkg/util"
)

// ChatHandler exposes the conversation operations.
type ChatHandler struct {
	chat   *chat.Service
	tokens *auth.TokenManager
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *chat.Service, tokens *auth.TokenManager) *ChatHandler {
	return &ChatHandler{chat: chatService, tokens: tokens}
}

// Start POST /chat/start. Rejections come back with ok=false in the body,
// not as an HTTP error: they are conversational replies.
func (h *ChatHandler) Start(c *fiber.Ctx) error {
	var req dto.StartChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reply, err := h.chat.StartChat(c.UserContext(), chat.EmailKey(req.Email), req.Email)
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := dto.ChatReply{OK: reply.OK, Message: reply.Message}
	if reply.OK {
		token, _, err := h.tokens.GenerateToken(req.Email)
		if err != nil {
			return apperrors.MapError(err)
		}
		resp.ConversationToken = token
	}
	return c.JSON(resp)
}

// Turn POST /chat/turn.
func (h *ChatHandler) Turn(c *fiber.Ctx) error {
	email, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("conversation token required")
	}

	var req dto.ChatTurnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reply, err := h.chat.ChatTurn(c.UserContext(), chat.EmailKey(email), req.Message)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(dto.ChatReply{
		OK:           reply.OK,
		Message:      reply.Message,
		TicketResult: reply.TicketResult,
	})
}
