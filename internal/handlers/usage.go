package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eb4890/thechoiceswemake/internal/services"
)

type UsageResponse struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// UsageHandler reports the shared daily generation quota.
type UsageHandler struct {
	quota  *services.QuotaService
	logger *slog.Logger
}

func NewUsageHandler(quota *services.QuotaService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		quota:  quota,
		logger: logger,
	}
}

func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	used, err := h.quota.Usage(r.Context())
	if err != nil {
		h.logger.Error("Failed to read quota usage", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read usage")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, UsageResponse{
		Used:  used,
		Limit: h.quota.DailyLimit(r.Context()),
	})
}
