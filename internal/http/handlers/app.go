package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"donations/internal/donation"
)

// App holds the collaborators shared by the HTTP handlers.
type App struct {
	Donations     *donation.Service
	Logger        zerolog.Logger
	PublicBaseURL string
}

func NewApp(svc *donation.Service, logger zerolog.Logger, publicBaseURL string) *App {
	return &App{Donations: svc, Logger: logger, PublicBaseURL: publicBaseURL}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// MethodNotAllowed answers routes hit with an unsupported method.
func (a *App) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
}
