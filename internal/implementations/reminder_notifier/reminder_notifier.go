package remindernotifier

import (
	"context"

	"remindbot/internal/core/domain/bot"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"
)

// Telegram delivers reminders as plain bot messages.
type Telegram struct {
	sender bot.TelegramBotMessageSender
}

func NewTelegram(sender bot.TelegramBotMessageSender) *Telegram {
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &Telegram{sender: sender}
}

func (t *Telegram) Deliver(ctx context.Context, destination reminder.Destination, text string) error {
	return t.sender.SendTelegramBotMessage(ctx, bot.TelegramBotMessage{
		ChatID: bot.TelegramChatID(destination),
		Text:   text,
	})
}
