// Package handlers implements the HTTP invocation surface of the render
// pipeline: job submission, job polling and the process triggers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/runner"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// App bundles the dependencies handlers need.
type App struct {
	Store  store.Store
	Runner *runner.Runner
	Logger infra.Logger
}

// NewApp creates the handler container.
func NewApp(st store.Store, run *runner.Runner, logger infra.Logger) *App {
	return &App{Store: st, Runner: run, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
