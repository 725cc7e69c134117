package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

// ProposeHandler accepts public scenario submissions into the curation
// queue. Submissions are never visible to players until approved.
type ProposeHandler struct {
	store  storage.Store
	logger *slog.Logger
}

func NewProposeHandler(store storage.Store, logger *slog.Logger) *ProposeHandler {
	return &ProposeHandler{
		store:  store,
		logger: logger,
	}
}

func (h *ProposeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var sc scenario.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		h.logger.Warn("Invalid proposal body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected a JSON scenario.")
		return
	}

	sc.Title = strings.TrimSpace(sc.Title)
	sc.Description = strings.TrimSpace(sc.Description)
	sc.Prompt = strings.TrimSpace(sc.Prompt)
	sc.OpeningScene = strings.TrimSpace(sc.OpeningScene)
	if sc.Title == "" || sc.Description == "" || sc.Prompt == "" || sc.OpeningScene == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Title, description, prompt and opening scene are required.")
		return
	}
	if strings.TrimSpace(sc.Author) == "" {
		sc.Author = "Anonymous"
	}
	if strings.TrimSpace(sc.Category) == "" {
		sc.Category = scenario.DefaultCategory
	}

	pending := &scenario.PendingScenario{Scenario: sc}
	if err := h.store.InsertPendingScenario(r.Context(), pending); err != nil {
		if errors.Is(err, storage.ErrDuplicateTitle) {
			writeError(w, h.logger, http.StatusConflict, "A scenario with this title already exists. Choose a different title.")
			return
		}
		h.logger.Error("Failed to insert pending scenario", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to submit scenario")
		return
	}

	h.logger.Info("Scenario proposed", "title", pending.Title, "pending_id", pending.ID)
	writeJSON(w, h.logger, http.StatusCreated, pending)
}
