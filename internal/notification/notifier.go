// Package notification delivers alert messages to chat endpoints.
package notification

import (
	"context"

	"github.com/rxtech-lab/argo-screener/internal/logger"
	"go.uber.org/zap"
)

// Notifier delivers a formatted alert. Delivery failures are logged and
// reported as false, never returned as errors.
type Notifier interface {
	Notify(ctx context.Context, message string) bool
}

// Config selects and configures the notifier.
type Config struct {
	BotToken string `yaml:"bot_token" json:"bot_token,omitempty" jsonschema:"description=Telegram bot token"`
	ChatID   string `yaml:"chat_id" json:"chat_id,omitempty" jsonschema:"description=Telegram chat id"`
	// BaseURL overrides the Telegram Bot API endpoint.
	BaseURL string `yaml:"base_url" json:"base_url,omitempty" validate:"omitempty,url"`
	// LogOnly logs alerts instead of sending them.
	LogOnly bool `yaml:"log_only" json:"log_only,omitempty"`
}

// Configured reports whether both Telegram credentials are set.
func (c Config) Configured() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// NewNotifier returns a Telegram notifier when credentials are configured, a
// log notifier when LogOnly is set, and a no-op notifier otherwise.
func NewNotifier(cfg Config, log *logger.Logger) Notifier {
	switch {
	case cfg.LogOnly:
		return NewLogNotifier(log)
	case cfg.Configured():
		return NewTelegramNotifier(cfg, log)
	default:
		return NewNopNotifier()
	}
}

// LogNotifier writes alerts to the logger.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, message string) bool {
	n.log.Info("Alert", zap.String("message", message))

	return true
}

// NopNotifier drops every alert.
type NopNotifier struct{}

// NewNopNotifier creates a notifier that sends nothing.
func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

// Notify implements Notifier. Nothing is delivered, so it reports false.
func (NopNotifier) Notify(context.Context, string) bool {
	return false
}
