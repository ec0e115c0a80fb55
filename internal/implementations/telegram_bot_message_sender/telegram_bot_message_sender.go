package telegrambotmessagesender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"remindbot/internal/core/domain/bot"
	"remindbot/internal/core/domain/reminder"

	"golang.org/x/time/rate"
)

type telegramMessage struct {
	ChatID      string      `json:"chat_id"`
	Text        string      `json:"text"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

type telegramWebhook struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

type TelegramBotMessageSender struct {
	httpClient http.Client
	baseURL    url.URL
	token      string
	limiter    *rate.Limiter
}

// NewLimiter allows perSecond sendMessage calls per second without bursts.
func NewLimiter(perSecond float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// New creates a sender for the bot with the given token. Outgoing calls are
// throttled by limiter; a nil limiter disables throttling.
func New(
	baseURL url.URL,
	token string,
	timeout time.Duration,
	limiter *rate.Limiter,
) *TelegramBotMessageSender {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &TelegramBotMessageSender{
		baseURL:    baseURL,
		token:      token,
		limiter:    limiter,
		httpClient: http.Client{Timeout: timeout},
	}
}

// SendTelegramBotMessage sends m through the sendMessage method. Failures are
// reported as *reminder.TransportError; only failures that happened before
// Telegram accepted the request are marked retryable.
func (s *TelegramBotMessageSender) SendTelegramBotMessage(ctx context.Context, m bot.TelegramBotMessage) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return reminder.NewTransportError(err, false)
	}
	return s.call(ctx, "sendMessage", telegramMessage{
		ChatID:      string(m.ChatID),
		Text:        m.Text,
		ReplyMarkup: m.ReplyMarkup,
	})
}

// SetWebhook registers webhookURL as the update endpoint of the bot.
func (s *TelegramBotMessageSender) SetWebhook(ctx context.Context, webhookURL url.URL, secretToken string) error {
	return s.call(ctx, "setWebhook", telegramWebhook{URL: webhookURL.String(), SecretToken: secretToken})
}

func (s *TelegramBotMessageSender) call(ctx context.Context, method string, payload interface{}) error {
	url := s.baseURL.JoinPath(fmt.Sprintf("bot%s", s.token), method)
	var body bytes.Buffer
	encoder := json.NewEncoder(&body)
	err := encoder.Encode(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url.String(), &body)
	if err != nil {
		return err
	}
	request.Header.Add("content-type", "application/json")
	resp, err := s.httpClient.Do(request)
	if err != nil {
		return reminder.NewTransportError(err, isDialError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return reminder.NewTransportError(err, false)
		}
		return reminder.NewTransportError(
			fmt.Errorf("got unsuccessfull response from Telegram (%d): %s", resp.StatusCode, string(body)),
			resp.StatusCode == http.StatusTooManyRequests,
		)
	}
	return nil
}

// isDialError reports whether err happened while establishing the
// connection, so the request cannot have reached Telegram.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
