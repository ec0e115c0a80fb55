package reminderevents

import (
	"net/http"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	events "remindbot/internal/implementations/reminder_events"

	"github.com/r3labs/sse/v2"
)

// Handler streams reminder lifecycle events as server-sent events.
type Handler struct {
	log       logging.Logger
	sseServer *sse.Server
}

func New(log logging.Logger, sseServer *sse.Server) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sseServer == nil {
		panic(e.NewNilArgumentError("sseServer"))
	}
	return &Handler{log: log, sseServer: sseServer}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	query.Set("stream", events.Stream)
	r.URL.RawQuery = query.Encode()

	go func() {
		<-r.Context().Done()
		h.log.Info(r.Context(), "Unsubscribed from reminder events.")
	}()

	h.log.Info(r.Context(), "Subscribed to reminder events.")
	h.sseServer.ServeHTTP(rw, r)
}
