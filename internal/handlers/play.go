package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eb4890/thechoiceswemake/internal/services"
	"github.com/eb4890/thechoiceswemake/internal/session"
	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/chat"
	"github.com/eb4890/thechoiceswemake/pkg/choices"
	"github.com/eb4890/thechoiceswemake/pkg/play"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

// choiceInstruction asks the narrator for the decision-point options.
// The offline provider and the parser both key off its shape.
const choiceInstruction = "Pause the story. Based on everything that has happened so far, " +
	"generate 4 distinct choices the protagonist could make right now. " +
	"Respond with ONLY a numbered list (1-4), each option at most 25 words. " +
	"No commentary before or after the list."

// summaryInstructionFmt requests the journey draft. The final choice is
// interpolated so the summary anchors on the decision actually made.
const summaryInstructionFmt = "Summarize the story so far in 150-250 words, " +
	"written in the third person with a neutral, reflective tone. " +
	"The protagonist committed to this final choice: %q. " +
	"The summary must reference that choice and what led to it."

type beginRequest struct {
	ScenarioTitle string `json:"scenario_title"`
	Model         string `json:"model,omitempty"`
}

type sayRequest struct {
	Message string `json:"message"`
}

type chooseRequest struct {
	Choice string `json:"choice"`
}

type recordRequest struct {
	Summary   string `json:"summary"`
	Pseudonym string `json:"pseudonym,omitempty"`
}

// PlayResponse is the session snapshot returned from every play
// endpoint. History excludes the system message.
type PlayResponse struct {
	SessionID       uuid.UUID       `json:"session_id"`
	Phase           play.Phase      `json:"phase"`
	ScenarioTitle   string          `json:"scenario_title,omitempty"`
	Model           string          `json:"model,omitempty"`
	Soundtrack      string          `json:"soundtrack,omitempty"`
	History         chat.Transcript `json:"history,omitempty"`
	Choices         []string        `json:"choices,omitempty"`
	ChoicesFallback bool            `json:"choices_fallback,omitempty"`
	FinalChoice     string          `json:"final_choice,omitempty"`
	AISummary       string          `json:"ai_summary,omitempty"`
	EditedSummary   string          `json:"edited_summary,omitempty"`
}

func snapshot(s *play.Session) PlayResponse {
	return PlayResponse{
		SessionID:       s.ID,
		Phase:           s.Phase,
		ScenarioTitle:   s.ScenarioTitle,
		Model:           s.Model,
		Soundtrack:      s.Soundtrack,
		History:         s.History(),
		Choices:         s.GeneratedChoices,
		ChoicesFallback: s.ChoicesFallback,
		FinalChoice:     s.FinalChoice,
		AISummary:       s.AISummary,
		EditedSummary:   s.EditedSummary,
	}
}

// PlayHandler drives a play session through its phases.
// Routes:
// POST /v1/play               - begin a session from a catalog scenario
// GET  /v1/play/{id}          - session snapshot
// POST /v1/play/{id}/say      - one roleplay exchange
// POST /v1/play/{id}/ready    - enter the choice phase
// POST /v1/play/{id}/choose   - commit the final choice, enter summary
// POST /v1/play/{id}/back     - phase-dependent back edge
// POST /v1/play/{id}/record   - persist the journey
// POST /v1/play/{id}/reset    - abandon and return to setup
type PlayHandler struct {
	registry     *session.Registry
	catalog      *services.CatalogService
	generator    services.Generator
	store        storage.Store
	defaultModel string
	logger       *slog.Logger
}

func NewPlayHandler(registry *session.Registry, catalog *services.CatalogService, generator services.Generator, store storage.Store, defaultModel string, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{
		registry:     registry,
		catalog:      catalog,
		generator:    generator,
		store:        store,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/play"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleBegin(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.withSession(w, id, func(s *play.Session) error { return nil })
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	switch action {
	case "say":
		h.handleSay(w, r, id)
	case "ready":
		h.handleReady(w, r, id)
	case "choose":
		h.handleChoose(w, r, id)
	case "back":
		h.handleBack(w, id)
	case "record":
		h.handleRecord(w, r, id)
	case "reset":
		h.handleReset(w, id)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown play action")
	}
}

// withSession runs fn under the session lock and writes the resulting
// snapshot, translating domain errors to statuses.
func (h *PlayHandler) withSession(w http.ResponseWriter, id uuid.UUID, fn func(s *play.Session) error) {
	var resp PlayResponse
	err := h.registry.With(id, func(s *play.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		resp = snapshot(s)
		return nil
	})
	if err != nil {
		h.writePlayError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *PlayHandler) writePlayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
	case errors.Is(err, play.ErrEmptyChoice):
		writeError(w, h.logger, http.StatusBadRequest, "Choice cannot be empty.")
	case errors.Is(err, play.ErrInvalidTransition):
		writeError(w, h.logger, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Play request failed", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *PlayHandler) handleBegin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid begin request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'scenario_title' field.")
		return
	}
	if req.ScenarioTitle == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Scenario title is required.")
		return
	}

	byTitle, _, err := h.catalog.LoadScenarios(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("Failed to load scenarios", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scenarios")
		return
	}
	scn, ok := byTitle[req.ScenarioTitle]
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Scenario not found")
		return
	}

	model := req.Model
	if model == "" {
		model = h.defaultModel
	}

	s := h.registry.Create()
	systemPrompt := scenario.PromptPrefix + "\n\n" + scn.Prompt
	if err := s.Begin(scn.Title, systemPrompt, scn.OpeningScene, model, scn.Soundtrack); err != nil {
		h.registry.Delete(s.ID)
		h.writePlayError(w, err)
		return
	}
	h.catalog.IncrementPlays(r.Context(), scn.Title)

	h.logger.Info("Play session started",
		"session_id", s.ID,
		"scenario", scn.Title,
		"model", model)
	writeJSON(w, h.logger, http.StatusCreated, snapshot(s))
}

func (h *PlayHandler) handleSay(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req sayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Message cannot be empty.")
		return
	}

	h.withSession(w, id, func(s *play.Session) error {
		if err := s.RequireRoleplay(); err != nil {
			return err
		}
		prompt := s.Transcript.Append(chat.ChatRoleUser, message)
		reply := h.generator.Generate(r.Context(), s.Model, prompt, "")
		return s.Say(message, reply)
	})
}

func (h *PlayHandler) handleReady(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.withSession(w, id, func(s *play.Session) error {
		if err := s.RequireRoleplay(); err != nil {
			return err
		}
		raw := h.generator.Generate(r.Context(), s.Model, s.Transcript, choiceInstruction)
		parsed := choices.Parse(raw)
		fallback := false
		if !choices.Usable(parsed) {
			h.logger.Warn("Choice generation unusable, substituting fallback set",
				"session_id", s.ID,
				"parsed_count", len(parsed))
			parsed = choices.Fallback
			fallback = true
		}
		return s.EnterChoice(parsed, fallback)
	})
}

func (h *PlayHandler) handleChoose(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req chooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'choice' field.")
		return
	}

	h.withSession(w, id, func(s *play.Session) error {
		if err := s.Choose(req.Choice); err != nil {
			return err
		}
		if s.NeedsSummary() {
			instruction := fmt.Sprintf(summaryInstructionFmt, s.FinalChoice)
			draft := h.generator.Generate(r.Context(), s.Model, s.Transcript, instruction)
			return s.SetDraftSummary(draft)
		}
		return nil
	})
}

func (h *PlayHandler) handleBack(w http.ResponseWriter, id uuid.UUID) {
	h.withSession(w, id, func(s *play.Session) error {
		switch s.Phase {
		case play.PhaseChoice:
			return s.BackToRoleplay()
		case play.PhaseSummary:
			return s.BackToChoice()
		default:
			return fmt.Errorf("%w: cannot go back in phase %q", play.ErrInvalidTransition, s.Phase)
		}
	})
}

func (h *PlayHandler) handleRecord(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'summary' field.")
		return
	}

	h.withSession(w, id, func(s *play.Session) error {
		if err := s.RequireSummary(); err != nil {
			return err
		}
		summary := strings.TrimSpace(req.Summary)
		if summary == "" {
			summary = s.AISummary
		}

		var author *string
		if pseudonym := strings.TrimSpace(req.Pseudonym); pseudonym != "" {
			author = &pseudonym
		}
		journey := &scenario.Journey{
			ScenarioTitle: s.ScenarioTitle,
			LLMModel:      s.Model,
			ChoiceText:    s.FinalChoice,
			Summary:       summary,
			Author:        author,
		}
		if err := h.store.InsertJourney(r.Context(), journey); err != nil {
			return fmt.Errorf("failed to record journey: %w", err)
		}
		h.logger.Info("Journey recorded",
			"session_id", s.ID,
			"scenario", s.ScenarioTitle,
			"journey_id", journey.ID)
		return s.Recorded(summary)
	})
}

func (h *PlayHandler) handleReset(w http.ResponseWriter, id uuid.UUID) {
	h.withSession(w, id, func(s *play.Session) error {
		s.Reset()
		return nil
	})
}
