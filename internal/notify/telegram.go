package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nexaguru/nexaguru/internal/config"
	"github.com/nexaguru/nexaguru/internal/models"
)

// Telegram pushes payment events to the operator's chat so manual
// reconciliation does not depend on the customer reaching out first. Disabled
// entirely when no bot token or chat id is configured.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(cfg config.Config, log *slog.Logger) (*Telegram, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramAdminChatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: cfg.TelegramAdminChatID, log: log}, nil
}

func (t *Telegram) PaymentInitiated(account *models.Account, plan *models.Plan, payment *models.Payment) {
	text := fmt.Sprintf("Payment initiated\nAccount: %s\nPlan: %s (%d credits)\nAmount: %d %s\nReference: %s",
		account.Email, plan.Name, plan.Credits, payment.Amount, payment.Currency, payment.Reference)
	t.send(text)
}

func (t *Telegram) PaymentConfirmed(payment *models.Payment, plan *models.Plan) {
	text := fmt.Sprintf("Payment confirmed\nReference: %s\nCredits granted: %d", payment.Reference, plan.Credits)
	t.send(text)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Error("send operator notification", "err", err)
	}
}
