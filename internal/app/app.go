package app

import (
	"fmt"
	"net/http"

	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	createreminder "remindbot/internal/http/handlers/reminders/create_reminder"
	reminderevents "remindbot/internal/http/handlers/reminders/reminder_events"
	"remindbot/internal/http/handlers/response"
	"remindbot/internal/http/handlers/telegram"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	return &http.Server{
		Handler: NewRouter(deps, s),
		Addr:    deps.Config.Addr(),
	}
}

func NewRouter(deps *deps.Deps, s *services.Services) http.Handler {
	reminderRouter := chi.NewRouter()
	reminderRouter.Method(http.MethodPost, "/", createreminder.New(s.ScheduleReminder))

	telegramRouter := chi.NewRouter()
	telegramRouter.Method(
		http.MethodPost,
		fmt.Sprintf("/updates/%s", deps.Config.TelegramURLSecret),
		telegram.New(
			deps.Logger,
			deps.TelegramBotMessageSender,
			s.ScheduleReminder,
			deps.Config.WebAppURL.String(),
			deps.Config.TelegramSecretToken,
		),
	)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/reminders", reminderRouter)
	router.Mount("/telegram", telegramRouter)
	router.Method(http.MethodGet, "/events", reminderevents.New(deps.Logger, deps.SseServer))
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		response.Render(rw, map[string]string{"status": "ok"}, http.StatusOK)
	})

	return router
}
