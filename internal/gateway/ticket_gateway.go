package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dku-library/ticket-chat/internal/config"
	"github.com/dku-library/ticket-chat/internal/domain"
)

// submissionBody is the wire format the external ticket API expects.
type submissionBody struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	Impact      string `json:"impact"`
}

// TicketGateway submits finished drafts to the external ticket API. One
// synchronous POST per submission, no retry.
type TicketGateway struct {
	client *http.Client
	url    string
	token  string
	logger *zap.Logger
}

// NewTicketGateway builds the gateway. A missing token is a configuration
// error and fails construction.
func NewTicketGateway(cfg config.TicketAPIConfig, logger *zap.Logger) (*TicketGateway, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("ticket API token is not configured")
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("ticket API URL is not configured")
	}
	return &TicketGateway{
		client: &http.Client{Timeout: cfg.Timeout()},
		url:    cfg.URL,
		token:  cfg.Token,
		logger: logger,
	}, nil
}

// Submit posts the final payload and returns the merged, normalized
// result. A non-parseable response body is synthesized as
// {ok:false, error:<rawText>}; only transport-level failures return an
// error.
func (g *TicketGateway) Submit(ctx context.Context, payload domain.TicketDraft) (*domain.SubmissionResult, error) {
	body, err := json.Marshal(submissionBody{
		Token:       g.token,
		Email:       payload.Email,
		Title:       payload.Title,
		Description: payload.Description,
		Urgency:     payload.Urgency,
		Impact:      payload.Impact,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		parsed = map[string]any{"ok": false, "error": string(raw)}
	}
	parsed["http"] = resp.StatusCode

	result := normalizeResult(resp.StatusCode, parsed)
	g.logger.Info("ticket submission",
		zap.Int("http", result.HTTPStatus),
		zap.Bool("ok", result.OK),
		zap.String("ticket_id", result.TicketID))
	return result, nil
}

// normalizeResult resolves the API's key-naming variance into one
// canonical shape at receipt.
func normalizeResult(status int, merged map[string]any) *domain.SubmissionResult {
	result := &domain.SubmissionResult{
		HTTPStatus: status,
		OK:         boolField(merged, "ok") || boolField(merged, "success"),
		TicketID:   stringField(merged, "ticket_id", "id", "ticketId"),
		TicketURL:  stringField(merged, "url", "ticket_url", "link"),
		Raw:        merged,
	}
	if msg, ok := merged["error"].(string); ok {
		result.Error = msg
	}
	return result
}

func boolField(m map[string]any, key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
