package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/internal/storage"
	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

func TestJourneysHandler_ListNewestFirst(t *testing.T) {
	store := storage.NewMockStore()
	require.NoError(t, store.InsertJourney(t.Context(), &scenario.Journey{ScenarioTitle: "First", ChoiceText: "a", Summary: "s"}))
	require.NoError(t, store.InsertJourney(t.Context(), &scenario.Journey{ScenarioTitle: "Second", ChoiceText: "b", Summary: "s"}))
	h := NewJourneysHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/journeys", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var journeys []scenario.Journey
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&journeys))
	require.Len(t, journeys, 2)
	assert.Equal(t, "Second", journeys[0].ScenarioTitle)
	assert.Equal(t, "First", journeys[1].ScenarioTitle)
}

func TestJourneysHandler_StoreError(t *testing.T) {
	store := storage.NewMockStore()
	store.Err = errors.New("connection refused")
	h := NewJourneysHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/journeys", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
