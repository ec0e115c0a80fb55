package reminderevents

import (
	"context"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"

	"github.com/r3labs/sse/v2"
)

const Stream = "reminders"

// SSE pushes events to browsers subscribed to Stream.
type SSE struct {
	server *sse.Server
}

func NewSSE(server *sse.Server) *SSE {
	if server == nil {
		panic(e.NewNilArgumentError("server"))
	}
	server.CreateStream(Stream)
	return &SSE{server: server}
}

func (p *SSE) PublishReminderEvent(ctx context.Context, event reminder.Event) error {
	data, err := event.Marshal()
	if err != nil {
		return err
	}
	p.server.Publish(Stream, &sse.Event{
		Event: []byte(event.Type),
		Data:  data,
	})
	return nil
}
