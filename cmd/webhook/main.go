package main

import (
	"context"
	"fmt"
	"os"

	"remindbot/internal/config"
	randomstringgenerator "remindbot/internal/implementations/random_string_generator"
	telegrambotmessagesender "remindbot/internal/implementations/telegram_bot_message_sender"

	_ "time/tzdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	secretToken := cfg.TelegramSecretToken
	if secretToken == "" {
		secretToken = randomstringgenerator.NewGenerator().GenerateWebhookSecret()
		fmt.Printf("Generated TELEGRAM_SECRET_TOKEN=%s\n", secretToken)
	}

	sender := telegrambotmessagesender.New(cfg.TelegramBaseURL, cfg.TelegramToken, cfg.TelegramRequestTimeout, nil)
	url := cfg.WebhookURL()
	if err := sender.SetWebhook(context.Background(), *url, secretToken); err != nil {
		fmt.Fprintf(os.Stderr, "could not register telegram webhook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Webhook %s successfully registered\n", url)
}
