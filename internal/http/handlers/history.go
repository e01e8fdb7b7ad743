package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/history"
)

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries := a.History.List(r.Context())
	if entries == nil {
		entries = []history.Entry{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"items": entries,
		"limit": domain.MaxHistoryItems,
	})
}

func (a *App) GetHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := a.History.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		a.fail(w, domain.ErrNotFound)
		return
	}
	a.json(w, http.StatusOK, entry)
}

func (a *App) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	a.History.Remove(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ClearHistory(w http.ResponseWriter, r *http.Request) {
	a.History.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ExportHistory(w http.ResponseWriter, r *http.Request) {
	archive, err := history.Export(a.History.List(r.Context()))
	if err != nil {
		a.fail(w, err)
		return
	}
	name := "history-" + time.Now().UTC().Format("20060102-150405") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
