package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTelegramBaseURL is the public Bot API endpoint.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// TelegramNotifier sends alerts through the Telegram Bot API sendMessage
// method using Markdown parse mode.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	log      *logger.Logger
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NewTelegramNotifier creates a Telegram notifier.
func NewTelegramNotifier(cfg Config, log *logger.Logger) *TelegramNotifier {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}

	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Notify implements Notifier.
func (t *TelegramNotifier) Notify(ctx context.Context, message string) bool {
	if err := t.Send(ctx, message); err != nil {
		t.log.Warn("Failed to send Telegram alert", zap.Error(err))

		return false
	}

	t.log.Debug("Sent Telegram alert", zap.String("chat_id", t.chatID))

	return true
}

// Send posts message and returns any delivery error.
func (t *TelegramNotifier) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.chatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to encode telegram request", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to create telegram request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of the message.
		return errors.New(errors.ErrCodeNotificationFailed, "telegram request failed: "+redact(err.Error(), t.botToken))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var parsed sendMessageResponse
	_ = json.Unmarshal(data, &parsed)

	if resp.StatusCode != http.StatusOK || !parsed.OK {
		return errors.Newf(errors.ErrCodeNotificationFailed, "telegram returned status %d: %s", resp.StatusCode, parsed.Description)
	}

	return nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}

	return strings.ReplaceAll(s, secret, "<token>")
}
