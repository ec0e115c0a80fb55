package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"remindbot/internal/core/domain/localtime"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	IsTestMode     bool     `env:"TEST_MODE" envDefault:"false"`
	Port           uint16   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	BaseURL        url.URL  `env:"BASE_URL"`

	TelegramBaseURL           url.URL       `env:"TELEGRAM_BASE_URL" envDefault:"https://api.telegram.org"`
	TelegramToken             string        `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramURLSecret         string        `env:"TELEGRAM_URL_SECRET,required"`
	TelegramSecretToken       string        `env:"TELEGRAM_SECRET_TOKEN"`
	TelegramRequestTimeout    time.Duration `env:"TELEGRAM_REQUEST_TIMEOUT" envDefault:"10s"`
	TelegramMessagesPerSecond float64       `env:"TELEGRAM_MESSAGES_PER_SECOND" envDefault:"20"`
	WebAppURL                 url.URL       `env:"WEB_APP_URL" envDefault:"https://www.uzeluz.com"`

	DestinationChatID       string        `env:"DESTINATION_CHAT_ID,required"`
	AdminChatID             string        `env:"ADMIN_CHAT_ID"`
	DisplayZone             string        `env:"DISPLAY_ZONE" envDefault:"America/New_York"`
	DisplayZoneAbbreviation string        `env:"DISPLAY_ZONE_ABBREVIATION" envDefault:"EST"`
	DeliveryMaxRetries      uint64        `env:"DELIVERY_MAX_RETRIES" envDefault:"0"`
	DeliveryClaimTTL        time.Duration `env:"DELIVERY_CLAIM_TTL" envDefault:"24h"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SubmissionsPerMinute    uint16        `env:"SUBMISSIONS_PER_MINUTE" envDefault:"10"`

	RedisURL               string `env:"REDIS_URL"`
	PostgresqlURL          string `env:"POSTGRESQL_URL"`
	MigrationsPath         string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	RabbitmqURL            string `env:"RABBITMQ_URL"`
	RabbitmqEventsExchange string `env:"RABBITMQ_EVENTS_EXCHANGE" envDefault:"reminder-events"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, value := range map[string]string{
		"TELEGRAM_BOT_TOKEN":  c.TelegramToken,
		"TELEGRAM_URL_SECRET": c.TelegramURLSecret,
		"DESTINATION_CHAT_ID": c.DestinationChatID,
	} {
		if value == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	if err := localtime.NewNormalizer(localtime.SystemZoneProvider{}).ValidateZone(c.DisplayZone); err != nil {
		return fmt.Errorf("invalid DISPLAY_ZONE: %w", err)
	}
	if c.DisplayZoneAbbreviation == "" {
		return errors.New("DISPLAY_ZONE_ABBREVIATION must not be empty")
	}
	if c.TelegramMessagesPerSecond <= 0 {
		return errors.New("TELEGRAM_MESSAGES_PER_SECOND must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.DeliveryClaimTTL <= 0 {
		return errors.New("DELIVERY_CLAIM_TTL must be positive")
	}
	return nil
}

// WebhookURL is the address Telegram posts updates to.
func (c *Config) WebhookURL() *url.URL {
	return c.BaseURL.JoinPath("telegram", "updates", c.TelegramURLSecret)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
