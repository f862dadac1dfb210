package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpapi "github.com/solutionspma/yocreator-sub001/internal/http"
	"github.com/solutionspma/yocreator-sub001/internal/http/handlers"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/runner"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	st, cleanup, err := newJobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure job store")
	}
	defer cleanup()

	run := runner.New(st, buildHandlers(cfg, st, logger), logger)

	app := handlers.NewApp(st, run, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		ProcessLimit:   cfg.ProcessRateLimit,
		ProcessWindow:  cfg.ProcessRateWindow,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
