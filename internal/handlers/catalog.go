package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/eb4890/thechoiceswemake/internal/services"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

// CatalogHandler serves the read-only scenario catalog.
// Routes:
// GET /v1/scenarios  - visible scenarios in display order, meta last
// GET /v1/categories - controlled category vocabulary
type CatalogHandler struct {
	catalog *services.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	switch r.URL.Path {
	case "/v1/scenarios":
		h.handleScenarios(w, r)
	case "/v1/categories":
		writeJSON(w, h.logger, http.StatusOK, h.catalog.Categories(r.Context()))
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *CatalogHandler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	byTitle, order, err := h.catalog.LoadScenarios(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("Failed to load scenarios", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scenarios")
		return
	}

	list := make([]scenario.Scenario, 0, len(order))
	for _, title := range order {
		list = append(list, byTitle[title])
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}
