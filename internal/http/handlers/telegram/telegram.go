package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"remindbot/internal/core/domain/bot"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	service "remindbot/internal/core/services/schedule_reminder"
	"remindbot/internal/http/handlers/request"
	"remindbot/internal/http/handlers/response"
)

const (
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	WelcomeText      = "👋 Welcome! Click below to set a reminder:"
	WebAppButtonText = "📅 Open Reminder WebApp"
)

type Handler struct {
	log              logging.Logger
	botMessageSender bot.TelegramBotMessageSender
	scheduleReminder services.Service[service.Input, service.Result]
	webAppURL        string
	secretToken      string
}

func New(
	log logging.Logger,
	botMessageSender bot.TelegramBotMessageSender,
	scheduleReminder services.Service[service.Input, service.Result],
	webAppURL string,
	secretToken string,
) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if botMessageSender == nil {
		panic(e.NewNilArgumentError("botMessageSender"))
	}
	if scheduleReminder == nil {
		panic(e.NewNilArgumentError("scheduleReminder"))
	}
	if webAppURL == "" {
		panic(e.NewEmptyArgumentError("webAppURL"))
	}
	return &Handler{
		log:              log,
		botMessageSender: botMessageSender,
		scheduleReminder: scheduleReminder,
		webAppURL:        webAppURL,
		secretToken:      secretToken,
	}
}

type user struct {
	ID int64 `json:"id"`
}

type chat struct {
	ID int64 `json:"id"`
}

type webAppData struct {
	Data       string `json:"data"`
	ButtonText string `json:"button_text"`
}

type message struct {
	ID         int64       `json:"message_id"`
	From       user        `json:"from"`
	Chat       chat        `json:"chat"`
	Date       int64       `json:"date"`
	Text       string      `json:"text"`
	WebAppData *webAppData `json:"web_app_data"`
}

type update struct {
	ID      int64    `json:"update_id"`
	Message *message `json:"message"`
}

func (u *update) FromJSON(r io.Reader) error {
	return json.NewDecoder(r).Decode(u)
}

// ServeHTTP always answers 200 so Telegram does not redeliver updates the
// bot chose to ignore.
func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	defer response.Render(rw, struct{}{}, http.StatusOK)

	if h.secretToken != "" && r.Header.Get(SecretTokenHeader) != h.secretToken {
		h.log.Warning(r.Context(), "Telegram update with invalid secret token.")
		return
	}

	u := update{}
	if err := u.FromJSON(r.Body); err != nil {
		h.log.Error(
			r.Context(),
			"Could not decode Telegram update.",
			logging.Entry("err", err),
		)
		return
	}
	if u.Message == nil {
		h.log.Info(
			r.Context(),
			"Skip Telegram update.",
			logging.Entry("updateID", u.ID),
		)
		return
	}
	h.log.Info(
		r.Context(),
		"Got Telegram update.",
		logging.Entry("updateID", u.ID),
		logging.Entry("chatID", u.Message.Chat.ID),
	)

	chatID := bot.TelegramChatID(strconv.FormatInt(u.Message.Chat.ID, 10))
	switch {
	case u.Message.WebAppData != nil:
		h.sendBotMessage(r.Context(), chatID, h.schedule(r.Context(), chatID, u.Message.WebAppData.Data), nil)
	case isStartCommand(u.Message.Text):
		h.sendBotMessage(
			r.Context(),
			chatID,
			WelcomeText,
			bot.NewWebAppKeyboard(WebAppButtonText, h.webAppURL),
		)
	default:
		h.log.Info(r.Context(), "Skip Telegram message.", logging.Entry("updateID", u.ID))
	}
}

// schedule submits the web app payload and returns the reply text.
func (h *Handler) schedule(ctx context.Context, chatID bot.TelegramChatID, data string) string {
	input := request.Reminder{}
	if err := input.FromString(data); err != nil {
		h.log.Info(ctx, "Could not decode web app data.", logging.Entry("err", err))
		return reminder.RejectionText
	}
	if err := input.Validate(); err != nil {
		h.log.Info(ctx, "Invalid web app data.", logging.Entry("err", err))
		return reminder.RejectionText
	}
	result, err := h.scheduleReminder.Run(ctx, service.Input{
		Text:      input.Text,
		Time:      input.Time,
		Submitter: "telegram:" + string(chatID),
	})
	if err != nil {
		return reminder.RejectionText
	}
	return result.Confirmation
}

func (h *Handler) sendBotMessage(ctx context.Context, chatID bot.TelegramChatID, text string, markup interface{}) {
	err := h.botMessageSender.SendTelegramBotMessage(ctx, bot.TelegramBotMessage{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.log.Error(
			ctx,
			"Could not send Telegram bot message due to unexpected error.",
			logging.Entry("chatID", chatID),
			logging.Entry("err", err),
		)
		return
	}
	h.log.Info(
		ctx,
		"Telegram message successfully sent.",
		logging.Entry("chatID", chatID),
	)
}

func isStartCommand(text string) bool {
	command := strings.Fields(text)
	if len(command) == 0 {
		return false
	}
	// Commands in groups carry the bot name: /start@reminder_bot
	name, _, _ := strings.Cut(command[0], "@")
	return name == "/start"
}
