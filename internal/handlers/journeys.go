package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eb4890/thechoiceswemake/internal/storage"
)

// JourneysHandler serves the public archive of recorded journeys.
type JourneysHandler struct {
	store  storage.Store
	logger *slog.Logger
}

func NewJourneysHandler(store storage.Store, logger *slog.Logger) *JourneysHandler {
	return &JourneysHandler{
		store:  store,
		logger: logger,
	}
}

// ServeHTTP returns the most recent journeys, newest first. The archive
// is read straight from the store on every request.
func (h *JourneysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	journeys, err := h.store.ListJourneys(r.Context(), storage.JourneyListLimit)
	if err != nil {
		h.logger.Error("Failed to list journeys", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load the journey archive")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, journeys)
}
