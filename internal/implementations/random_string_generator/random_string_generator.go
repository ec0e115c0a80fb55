package randomstringgenerator

import (
	"crypto/rand"
	"math/big"

	"remindbot/internal/core/domain/reminder"

	"github.com/google/uuid"
)

type Generator struct {
	chars []rune
}

func NewGenerator() *Generator {
	return &Generator{
		chars: []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"),
	}
}

// GenerateReminderID returns a random (version 4) UUID.
func (g *Generator) GenerateReminderID() reminder.ID {
	return reminder.ID(uuid.New().String())
}

// GenerateWebhookSecret returns a token accepted by Telegram as a webhook
// secret (A-Z, a-z, 0-9). Characters are drawn from crypto/rand.
func (g *Generator) GenerateWebhookSecret() string {
	max := big.NewInt(int64(len(g.chars)))
	b := make([]rune, 32)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = g.chars[n.Int64()]
	}
	return string(b)
}
