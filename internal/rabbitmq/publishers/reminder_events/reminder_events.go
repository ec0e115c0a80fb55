package reminderevents

import (
	"context"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *rabbitmq.Channel used to publish events.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type RabbitMQ struct {
	log      logging.Logger
	channel  Publisher
	exchange string
}

func NewRabbitMQ(log logging.Logger, channel Publisher, exchange string) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	return &RabbitMQ{log: log, channel: channel, exchange: exchange}
}

func (p *RabbitMQ) PublishReminderEvent(ctx context.Context, event reminder.Event) error {
	body, err := event.Marshal()
	if err != nil {
		return err
	}
	err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    string(event.ReminderID) + ":" + string(event.Type),
		Timestamp:    event.At,
		Type:         string(event.Type),
		Body:         body,
	})
	if err != nil {
		logging.Error(ctx, p.log, err, logging.Entry("reminderID", event.ReminderID))
		return err
	}
	p.log.Debug(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", p.exchange),
		logging.Entry("RK", event.Type),
		logging.Entry("reminderID", event.ReminderID),
	)
	return nil
}
