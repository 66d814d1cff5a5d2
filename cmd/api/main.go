package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/adapter/repo"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/creative"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/http/handlers"
	httpapi "github.com/Bhasvanth-Dev9380/ad-generator/internal/http"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/providers/genai"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/providers/imghost"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	modelClient, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}

	hostClient, err := imghost.NewClient(imghost.Options{
		APIKey:  cfg.ImgHostAPIKey,
		BaseURL: cfg.ImgHostBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image host client")
	}

	jobs := repo.NewJobRepository(dbpool)
	users := repo.NewUserRepository(dbpool)

	pipeline := creative.NewPipeline(creative.Options{
		Users:  users,
		Jobs:   jobs,
		Model:  modelClient,
		Host:   hostClient,
		Logger: &logger,
	})

	app := handlers.NewApp(pipeline, jobs, &logger, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, logger, cfg.CORSAllowedOrigins)
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
