package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

func doPropose(t *testing.T, h *ProposeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/scenarios/propose", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestProposeHandler_Success(t *testing.T) {
	store := storage.NewMockStore()
	h := NewProposeHandler(store, testLogger())

	rr := doPropose(t, h, `{
		"title": "The Whistleblower",
		"description": "Your employer is poisoning the river.",
		"prompt": "You are the narrator of a corporate ethics dilemma.",
		"opening_scene": "The report sits open on your screen."
	}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var pending scenario.PendingScenario
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&pending))
	assert.NotZero(t, pending.ID)
	assert.Equal(t, scenario.StatusPending, pending.Status)
	// Omitted fields get their defaults.
	assert.Equal(t, "Anonymous", pending.Author)
	assert.Equal(t, scenario.DefaultCategory, pending.Category)

	// Submissions land in the pending queue, never the public catalog.
	require.Len(t, store.Pending, 1)
	assert.Empty(t, store.Catalog)
}

func TestProposeHandler_MissingFields(t *testing.T) {
	store := storage.NewMockStore()
	h := NewProposeHandler(store, testLogger())

	tests := []struct {
		name string
		body string
	}{
		{"no title", `{"description":"d","prompt":"p","opening_scene":"o"}`},
		{"no description", `{"title":"t","prompt":"p","opening_scene":"o"}`},
		{"no prompt", `{"title":"t","description":"d","opening_scene":"o"}`},
		{"no opening scene", `{"title":"t","description":"d","prompt":"p"}`},
		{"whitespace title", `{"title":"   ","description":"d","prompt":"p","opening_scene":"o"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doPropose(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	assert.Empty(t, store.Pending)
}

func TestProposeHandler_DuplicateTitle(t *testing.T) {
	store := storage.NewMockStore()
	h := NewProposeHandler(store, testLogger())

	body := `{"title":"The Whistleblower","description":"d","prompt":"p","opening_scene":"o"}`
	rr := doPropose(t, h, body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doPropose(t, h, body)
	require.Equal(t, http.StatusConflict, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "already exists")
}

func TestProposeHandler_MethodNotAllowed(t *testing.T) {
	h := NewProposeHandler(storage.NewMockStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/scenarios/propose", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
