package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_URL_SECRET", "s3cret")
	t.Setenv("DESTINATION_CHAT_ID", "-1001")
}

func TestLoadDefaults(t *testing.T) {
	// Setup ---
	setRequired(t)

	// Exercise ---
	cfg, err := Load()

	// Verify ---
	require.Nil(t, err)
	assert.Equal(t, uint16(8080), cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramBaseURL.String())
	assert.Equal(t, "https://www.uzeluz.com", cfg.WebAppURL.String())
	assert.Equal(t, "America/New_York", cfg.DisplayZone)
	assert.Equal(t, "EST", cfg.DisplayZoneAbbreviation)
	assert.Equal(t, uint64(0), cfg.DeliveryMaxRetries)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.TelegramRequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.DeliveryClaimTTL)
	assert.Equal(t, uint16(10), cfg.SubmissionsPerMinute)
	assert.Equal(t, "", cfg.PostgresqlURL)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, "", cfg.RabbitmqURL)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BASE_URL", "https://bot.example.com")
	t.Setenv("DISPLAY_ZONE", "Europe/Berlin")
	t.Setenv("DISPLAY_ZONE_ABBREVIATION", "CET")
	t.Setenv("DELIVERY_MAX_RETRIES", "3")
	t.Setenv("SUBMISSIONS_PER_MINUTE", "0")

	cfg, err := Load()

	require.Nil(t, err)
	assert.Equal(t, uint16(9000), cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "Europe/Berlin", cfg.DisplayZone)
	assert.Equal(t, "CET", cfg.DisplayZoneAbbreviation)
	assert.Equal(t, uint64(3), cfg.DeliveryMaxRetries)
	assert.Equal(t, uint16(0), cfg.SubmissionsPerMinute)
	assert.Equal(t, "https://bot.example.com/telegram/updates/s3cret", cfg.WebhookURL().String())
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		id  string
		env map[string]string
	}{
		{id: "missing-token", env: map[string]string{"TELEGRAM_BOT_TOKEN": ""}},
		{id: "missing-destination", env: map[string]string{"DESTINATION_CHAT_ID": ""}},
		{id: "unknown-zone", env: map[string]string{"DISPLAY_ZONE": "Mars/Base"}},
		{id: "invalid-port", env: map[string]string{"PORT": "http"}},
		{id: "non-positive-rate", env: map[string]string{"TELEGRAM_MESSAGES_PER_SECOND": "0"}},
		{id: "invalid-timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			setRequired(t)
			for k, v := range testcase.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			assert.NotNil(t, err)
		})
	}
}
