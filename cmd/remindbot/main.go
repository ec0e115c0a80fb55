package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"remindbot/internal/app"
	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	dl "remindbot/internal/core/domain/logging"
	recoverreminders "remindbot/internal/core/services/recover_reminders"

	_ "time/tzdata"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	services := services.InitServices(deps)

	recoverPending(deps, services)

	httpServer := app.InitHttpServer(deps, services)
	go start(httpServer, deps)

	stopCh, closeCh := createChannel()
	defer closeCh()

	<-stopCh
	shutdown(context.Background(), httpServer, deps, services, shutdownDeps)
}

func recoverPending(deps *deps.Deps, services *services.Services) {
	if services.RecoverReminders == nil {
		return
	}
	result, err := services.RecoverReminders.Run(context.Background(), recoverreminders.Input{})
	if err != nil {
		panic(err)
	}
	deps.Logger.Info(
		context.Background(),
		"Pending reminders recovered.",
		dl.Entry("restored", result.Restored),
		dl.Entry("failed", result.Failed),
	)
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}

func start(server *http.Server, deps *deps.Deps) {
	deps.Logger.Info(
		context.Background(),
		"HTTP server has started.",
		dl.Entry("address", server.Addr),
		dl.Entry("isTestMode", deps.Config.IsTestMode),
		dl.Entry("displayZone", deps.Config.DisplayZone),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	} else {
		deps.Logger.Info(context.Background(), "HTTP service is stopping gracefully.")
	}
}

func shutdown(
	ctx context.Context,
	server *http.Server,
	deps *deps.Deps,
	services *services.Services,
	shutDownDeps func(),
) {
	ctx, cancel := context.WithTimeout(ctx, deps.Config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error(ctx, "Could not shut down HTTP server.", dl.Entry("err", err))
	}
	if err := services.Scheduler.Stop(ctx); err != nil {
		deps.Logger.Error(ctx, "Reminder scheduler did not stop in time.", dl.Entry("err", err))
	}

	shutDownDeps()
	deps.Logger.Info(ctx, "HTTP server has shutdowned.")
}
