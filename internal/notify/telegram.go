package notify

import (
	"context"
	"fmt"

	"github.com/Alias1177/StockSignals/internal/model"
	"github.com/Alias1177/StockSignals/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxMessageLen is the Telegram limit for one text message
const maxMessageLen = 4096

// Sender is the part of tgbotapi.BotAPI the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts the run brief to one chat
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier connects to the Bot API with token
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID), nil
}

// NewTelegramNotifierWithSender builds a notifier on an existing sender
func NewTelegramNotifierWithSender(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends the summary of r
func (n *TelegramNotifier) Notify(ctx context.Context, r *model.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("%s\n\n%s UTC", report.Summary(r), r.GeneratedAt.UTC().Format("2006-01-02 15:04"))
	if runes := []rune(text); len(runes) > maxMessageLen {
		text = string(runes[:maxMessageLen-1]) + "…"
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Info().Int64("chat_id", n.chatID).Str("run_id", r.RunID).Msg("Alert sent")
	return nil
}
