package createreminder

import (
	"errors"
	"net"
	"net/http"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/localtime"
	ratelimiter "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/services"
	service "remindbot/internal/core/services/schedule_reminder"
	"remindbot/internal/http/handlers/request"
	"remindbot/internal/http/handlers/response"
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(
	service services.Service[service.Input, service.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := request.Reminder{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{
		Text:      input.Text,
		Time:      input.Time,
		Submitter: "http:" + remoteHost(r),
	})
	if err != nil {
		if errors.Is(err, localtime.ErrInvalidTimestamp) {
			response.RenderError(rw, localtime.ErrInvalidTimestamp.Error(), http.StatusUnprocessableEntity)
			return
		}
		if errors.Is(err, ratelimiter.ErrRateLimitExceeded) {
			response.RenderError(rw, ratelimiter.ErrRateLimitExceeded.Error(), http.StatusTooManyRequests)
			return
		}
		response.RenderInternalError(rw)
		return
	}

	reminder := response.Reminder{}
	reminder.FromDomainType(result.Record, result.Confirmation)
	response.Render(rw, reminder, http.StatusCreated)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
