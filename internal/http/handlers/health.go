package handlers

import (
	"net/http"
)

const apiGreeting = "Hello from Render!"

func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (a *App) APIRoot(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"message": apiGreeting})
}
