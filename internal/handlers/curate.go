package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

// AdminSecretHeader carries the moderation password on curation requests.
const AdminSecretHeader = "X-Admin-Secret"

// curateUpdateRequest is the body for in-place edits. Status selects
// which table the edit targets.
type curateUpdateRequest struct {
	Status string `json:"status"`
	scenario.Scenario
}

// CurateHandler is the moderation surface for pending submissions.
// All routes require the admin secret header.
// Routes:
// GET  /v1/curate              - approved + pending entries, newest first
// POST /v1/curate/{id}/approve - publish a pending submission (body: edited fields)
// POST /v1/curate/{id}/reject  - mark a pending submission rejected
// POST /v1/curate/{id}/release - lift an approved scenario's embargo now
// PUT  /v1/curate/{id}         - in-place edit of a pending or approved entry
type CurateHandler struct {
	store        storage.Store
	passwordHash string
	logger       *slog.Logger
}

func NewCurateHandler(store storage.Store, passwordHash string, logger *slog.Logger) *CurateHandler {
	return &CurateHandler{
		store:        store,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

// authorized compares the SHA-256 of the presented secret against the
// configured hash in constant time. An empty configured hash disables
// the moderation surface entirely.
func (h *CurateHandler) authorized(r *http.Request) bool {
	if h.passwordHash == "" {
		return false
	}
	sum := sha256.Sum256([]byte(r.Header.Get(AdminSecretHeader)))
	presented := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(presented), []byte(strings.ToLower(h.passwordHash))) == 1
}

func (h *CurateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !h.authorized(r) {
		h.logger.Warn("Unauthorized curation request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeError(w, h.logger, http.StatusUnauthorized, "Unauthorized")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/curate"), "/")
	if path == "" {
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleList(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodPut:
		h.handleUpdate(w, r, id)
	case action == "approve" && r.Method == http.MethodPost:
		h.handleApprove(w, r, id)
	case action == "reject" && r.Method == http.MethodPost:
		h.handleReject(w, r, id)
	case action == "release" && r.Method == http.MethodPost:
		h.handleRelease(w, r, id)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed for this curation route")
	}
}

func (h *CurateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListModeration(r.Context())
	if err != nil {
		h.logger.Error("Failed to list moderation entries", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load moderation queue")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, entries)
}

// handleApprove publishes a pending submission, applying any field edits
// the moderator made in the review form. A title already in the catalog
// leaves the catalog untouched while the pending row still transitions.
func (h *CurateHandler) handleApprove(w http.ResponseWriter, r *http.Request, id int64) {
	var sc scenario.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected a JSON scenario.")
		return
	}
	if strings.TrimSpace(sc.Title) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Title is required.")
		return
	}

	if err := h.store.ApproveScenario(r.Context(), id, &sc); err != nil {
		h.writeStoreError(w, err, "Failed to approve scenario")
		return
	}
	h.logger.Info("Scenario approved", "pending_id", id, "title", sc.Title)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CurateHandler) handleReject(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.store.RejectScenario(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to reject scenario")
		return
	}
	h.logger.Info("Scenario rejected", "pending_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CurateHandler) handleRelease(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.store.ReleaseScenarioEarly(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to release scenario")
		return
	}
	h.logger.Info("Scenario released early", "scenario_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CurateHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req curateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected a JSON scenario with 'status'.")
		return
	}
	if req.Status != scenario.StatusApproved && req.Status != scenario.StatusPending {
		writeError(w, h.logger, http.StatusBadRequest, "Status must be 'approved' or 'pending'.")
		return
	}

	if err := h.store.UpdateScenario(r.Context(), id, req.Status, &req.Scenario); err != nil {
		h.writeStoreError(w, err, "Failed to update scenario")
		return
	}
	h.logger.Info("Scenario updated", "id", id, "status", req.Status)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CurateHandler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "Entry not found")
	case errors.Is(err, storage.ErrDuplicateTitle):
		writeError(w, h.logger, http.StatusConflict, "A scenario with this title already exists.")
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, msg)
	}
}
