//go:build integration
// +build integration

// Live-API tests. They require a running server (and its Postgres and
// Redis) and exercise the offline model so no provider account or quota
// is consumed:
//
//	go test -tags integration ./integration/
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/pkg/chat"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

var (
	baseURL = "http://localhost:8080"
	client  = &http.Client{Timeout: 60 * time.Second}
)

func TestMain(m *testing.M) {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		baseURL = v
	}
	fmt.Printf("Running integration tests against %s\n", baseURL)

	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "API is not reachable: %v\n", err)
		os.Exit(1)
	}
	_ = resp.Body.Close()

	os.Exit(m.Run())
}

type playState struct {
	SessionID       string          `json:"session_id"`
	Phase           string          `json:"phase"`
	ScenarioTitle   string          `json:"scenario_title"`
	History         chat.Transcript `json:"history"`
	Choices         []string        `json:"choices"`
	ChoicesFallback bool            `json:"choices_fallback"`
	FinalChoice     string          `json:"final_choice"`
	AISummary       string          `json:"ai_summary"`
	EditedSummary   string          `json:"edited_summary"`
}

func postJSON(t *testing.T, path string, body any, wantStatus int, out any) {
	t.Helper()
	jsonData, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "POST %s: %s", path, string(raw))

	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

func getJSON(t *testing.T, path string, out any) {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "GET %s: %s", path, string(raw))
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestCatalogIsServed(t *testing.T) {
	var scenarios []scenario.Scenario
	getJSON(t, "/v1/scenarios", &scenarios)
	require.NotEmpty(t, scenarios)

	// The synthesized meta-scenario always closes the list.
	assert.Equal(t, scenario.DragonTitle, scenarios[len(scenarios)-1].Title)

	var categories []string
	getJSON(t, "/v1/categories", &categories)
	assert.NotEmpty(t, categories)
}

// TestOfflinePlaythrough records one full journey using the offline
// model end to end.
func TestOfflinePlaythrough(t *testing.T) {
	var scenarios []scenario.Scenario
	getJSON(t, "/v1/scenarios", &scenarios)
	require.NotEmpty(t, scenarios)
	title := scenarios[0].Title

	var ps playState
	postJSON(t, "/v1/play", map[string]string{"scenario_title": title, "model": "offline"}, http.StatusCreated, &ps)
	require.Equal(t, "roleplay", ps.Phase)
	id := ps.SessionID

	postJSON(t, "/v1/play/"+id+"/say", map[string]string{"message": "I look around."}, http.StatusOK, &ps)
	postJSON(t, "/v1/play/"+id+"/say", map[string]string{"message": "I weigh my options."}, http.StatusOK, &ps)
	// Two exchanges, plus the opening scene when the scenario has one.
	require.GreaterOrEqual(t, len(ps.History), 4)

	postJSON(t, "/v1/play/"+id+"/ready", struct{}{}, http.StatusOK, &ps)
	require.Equal(t, "choice", ps.Phase)
	require.Len(t, ps.Choices, 4)
	assert.False(t, ps.ChoicesFallback)

	chosen := ps.Choices[1]
	postJSON(t, "/v1/play/"+id+"/choose", map[string]string{"choice": chosen}, http.StatusOK, &ps)
	require.Equal(t, "summary", ps.Phase)
	require.NotEmpty(t, ps.AISummary)

	edited := ps.AISummary + " (edited)"
	postJSON(t, "/v1/play/"+id+"/record", map[string]string{"summary": edited, "pseudonym": "integration"}, http.StatusOK, &ps)
	require.Equal(t, "recorded", ps.Phase)

	var journeys []scenario.Journey
	getJSON(t, "/v1/journeys", &journeys)
	require.NotEmpty(t, journeys)
	latest := journeys[0]
	assert.Equal(t, title, latest.ScenarioTitle)
	assert.Equal(t, chosen, latest.ChoiceText)
	assert.Equal(t, edited, latest.Summary)
	assert.Equal(t, "integration", latest.AuthorLabel())
}

func TestUsageIsReported(t *testing.T) {
	var usage struct {
		Used  int `json:"used"`
		Limit int `json:"limit"`
	}
	getJSON(t, "/v1/usage", &usage)
	assert.GreaterOrEqual(t, usage.Used, 0)
	assert.Greater(t, usage.Limit, 0)
}

func TestCurateRequiresSecret(t *testing.T) {
	resp, err := client.Get(baseURL + "/v1/curate")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
