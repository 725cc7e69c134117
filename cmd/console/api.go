package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// PlayState mirrors the API's play session snapshot.
type PlayState struct {
	SessionID       string          `json:"session_id"`
	Phase           string          `json:"phase"`
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

type Usage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type apiClient struct {
	baseURL     string
	client      *http.Client
	adminSecret string
}

func (a *apiClient) healthy() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends a request and decodes the JSON response into out (when out
// is non-nil). Non-2xx responses are unwrapped into the API's error
// message.
func (a *apiClient) do(method, path string, reqBody, out any, wantStatus int) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, a.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.adminSecret != "" {
		req.Header.Set("X-Admin-Secret", a.adminSecret)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (a *apiClient) listScenarios() ([]scenario.Scenario, error) {
	var list []scenario.Scenario
	if err := a.do(http.MethodGet, "/v1/scenarios", nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *apiClient) listJourneys() ([]scenario.Journey, error) {
	var list []scenario.Journey
	if err := a.do(http.MethodGet, "/v1/journeys", nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *apiClient) usage() (*Usage, error) {
	var u Usage
	if err := a.do(http.MethodGet, "/v1/usage", nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *apiClient) beginPlay(scenarioTitle, model string) (*PlayState, error) {
	req := map[string]string{"scenario_title": scenarioTitle}
	if model != "" {
		req["model"] = model
	}
	var ps PlayState
	if err := a.do(http.MethodPost, "/v1/play", req, &ps, http.StatusCreated); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) say(sessionID, message string) (*PlayState, error) {
	var ps PlayState
	err := a.do(http.MethodPost, "/v1/play/"+sessionID+"/say",
		map[string]string{"message": message}, &ps, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) ready(sessionID string) (*PlayState, error) {
	var ps PlayState
	if err := a.do(http.MethodPost, "/v1/play/"+sessionID+"/ready", struct{}{}, &ps, http.StatusOK); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) choose(sessionID, choice string) (*PlayState, error) {
	var ps PlayState
	err := a.do(http.MethodPost, "/v1/play/"+sessionID+"/choose",
		map[string]string{"choice": choice}, &ps, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) back(sessionID string) (*PlayState, error) {
	var ps PlayState
	if err := a.do(http.MethodPost, "/v1/play/"+sessionID+"/back", struct{}{}, &ps, http.StatusOK); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) record(sessionID, summary, pseudonym string) (*PlayState, error) {
	var ps PlayState
	err := a.do(http.MethodPost, "/v1/play/"+sessionID+"/record",
		map[string]string{"summary": summary, "pseudonym": pseudonym}, &ps, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) reset(sessionID string) (*PlayState, error) {
	var ps PlayState
	if err := a.do(http.MethodPost, "/v1/play/"+sessionID+"/reset", struct{}{}, &ps, http.StatusOK); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (a *apiClient) propose(sc scenario.Scenario) (*scenario.PendingScenario, error) {
	var pending scenario.PendingScenario
	if err := a.do(http.MethodPost, "/v1/scenarios/propose", sc, &pending, http.StatusCreated); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (a *apiClient) listModeration() ([]scenario.ModerationEntry, error) {
	var entries []scenario.ModerationEntry
	if err := a.do(http.MethodGet, "/v1/curate", nil, &entries, http.StatusOK); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *apiClient) approve(id int64, sc scenario.Scenario) error {
	return a.do(http.MethodPost, fmt.Sprintf("/v1/curate/%d/approve", id), sc, nil, http.StatusNoContent)
}

func (a *apiClient) reject(id int64) error {
	return a.do(http.MethodPost, fmt.Sprintf("/v1/curate/%d/reject", id), struct{}{}, nil, http.StatusNoContent)
}

func (a *apiClient) release(id int64) error {
	return a.do(http.MethodPost, fmt.Sprintf("/v1/curate/%d/release", id), struct{}{}, nil, http.StatusNoContent)
}
