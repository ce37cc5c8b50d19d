package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/chat"
)

// Config holds Telegram connector configuration.
type Config struct {
	Token string // Bot token from @BotFather
}

// Connector drives the intake conversation over Telegram. The chat id is
// the user context, so the same session rules apply as over HTTP.
type Connector struct {
	bot    *tgbotapi.BotAPI
	chat   *chat.Service
	logger *zap.Logger
}

// New creates a new Telegram connector.
func New(cfg Config, chatService *chat.Service, logger *zap.Logger) (*Connector, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &Connector{bot: bot, chat: chatService, logger: logger}, nil
}

// Start begins long-polling for updates. Blocks until context is cancelled.
func (c *Connector) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := c.bot.GetUpdatesChan(u)

	c.logger.Info("telegram connector started", zap.String("bot", c.bot.Self.UserName))

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			c.handleMessage(ctx, update.Message)

		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			c.logger.Info("telegram connector stopped")
			return ctx.Err()
		}
	}
}

func (c *Connector) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	userKey := chat.TelegramKey(msg.Chat.ID)

	if text == "/start" {
		c.send(msg.Chat.ID, "Welcome to DKU Library Systems ticket chat. Please enter your institutional email to begin.")
		return
	}

	reply, err := c.route(ctx, userKey, text)
	if err != nil {
		c.logger.Error("telegram turn failed", zap.Error(err))
		c.send(msg.Chat.ID, "Something went wrong on our side. Please try again.")
		return
	}
	c.send(msg.Chat.ID, reply.Message)
}

// route treats an email-shaped message as a conversation start when no
// session is live; everything else is a regular turn.
func (c *Connector) route(ctx context.Context, userKey, text string) (*chat.Reply, error) {
	if strings.Contains(text, "@") {
		live, err := c.chat.HasSession(ctx, userKey)
		if err != nil {
			return nil, err
		}
		if !live {
			return c.chat.StartChat(ctx, userKey, text)
		}
	}
	return c.chat.ChatTurn(ctx, userKey, text)
}

func (c *Connector) send(chatID int64, text string) {
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		c.logger.Warn("telegram send failed", zap.Error(err))
	}
}
