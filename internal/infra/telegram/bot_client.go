// Package telegram sends messages through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"folio/config"
	"folio/internal/domain/service"
	"folio/internal/errors"
)

// ErrRejected is returned when the Bot API answers ok=false.
var ErrRejected = errors.New("telegram rejected the message")

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

type botClient struct {
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewBotClient creates a notifier that talks to telegram.apiBase.
// The bot token is supplied per call since each account brings its own bot.
func NewBotClient(cfg *config.Config, logger *slog.Logger) service.TelegramNotifier {
	return &botClient{
		apiBase:    strings.TrimRight(cfg.Telegram.APIBase, "/"),
		httpClient: &http.Client{Timeout: cfg.Telegram.Timeout},
		logger:     logger,
	}
}

func (c *botClient) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	if botToken == "" || chatID == "" {
		return errors.New("telegram bot token and chat id are required")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return errors.WithStack(err)
	}

	url := c.apiBase + "/bot" + botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		// The URL embeds the bot token; never surface it.
		return errors.New("build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(redactToken(err, botToken), "telegram request failed")
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrapf(err, "decode telegram response (status %d)", resp.StatusCode)
	}

	if !result.OK {
		c.logger.WarnContext(ctx, "Telegram rejected message",
			slog.Int("status", resp.StatusCode),
			slog.Int("error_code", result.ErrorCode),
			slog.String("description", result.Description),
		)

		return errors.Wrapf(ErrRejected, "%d %s", result.ErrorCode, result.Description)
	}

	return nil
}

func redactToken(err error, token string) error {
	return errors.New(strings.ReplaceAll(err.Error(), token, "<redacted>"))
}
