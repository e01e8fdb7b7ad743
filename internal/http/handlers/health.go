package handlers

import (
	"net/http"

	"studio/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"styles":  domain.Styles(),
		"default": domain.DefaultStyle,
	})
}
