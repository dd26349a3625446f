package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"copart-watcher/utils"
)

// TelegramNotifier sends price alerts to a Telegram chat
type TelegramNotifier struct {
	bot    *telego.Bot
	chatID int64
	logger *utils.Logger
}

// NewTelegramNotifier creates a bot client for the given token and chat
func NewTelegramNotifier(token string, chatID int64, logger *utils.Logger) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Send delivers one message with web previews disabled
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(n.chatID), text).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true})
	if _, err := n.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Debug("Notification delivered to chat %d", n.chatID)
	return nil
}
