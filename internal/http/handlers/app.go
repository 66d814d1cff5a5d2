package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/creative"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
)

// CreativeRunner is the pipeline surface the handlers depend on.
type CreativeRunner interface {
	Run(ctx context.Context, req creative.Request) (string, error)
}

// App is the handler container with constructor-injected collaborators.
type App struct {
	Runner         CreativeRunner
	Jobs           domain.JobRepository
	Logger         *infra.Logger
	MaxUploadBytes int64
}

// NewApp builds the handler container.
func NewApp(runner CreativeRunner, jobs domain.JobRepository, logger *infra.Logger, maxUploadBytes int64) *App {
	return &App{
		Runner:         runner,
		Jobs:           jobs,
		Logger:         logger,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
