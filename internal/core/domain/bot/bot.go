package bot

import "context"

type TelegramChatID string

// TelegramBotMessage is a single sendMessage call. ReplyMarkup is encoded
// verbatim as the reply_markup field when set.
type TelegramBotMessage struct {
	ChatID      TelegramChatID
	Text        string
	ReplyMarkup interface{}
}

type TelegramBotMessageSender interface {
	SendTelegramBotMessage(ctx context.Context, m TelegramBotMessage) error
}

type WebAppInfo struct {
	URL string `json:"url"`
}

type KeyboardButton struct {
	Text   string      `json:"text"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

// ReplyKeyboardMarkup is the only keyboard kind that makes Telegram deliver
// web_app_data back to the bot.
type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
}

func NewWebAppKeyboard(text string, url string) ReplyKeyboardMarkup {
	return ReplyKeyboardMarkup{
		Keyboard:       [][]KeyboardButton{{{Text: text, WebApp: &WebAppInfo{URL: url}}}},
		ResizeKeyboard: true,
	}
}
