package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageHandler(t *testing.T) {
	env := newTestEnv()
	h := NewUsageHandler(env.quota, testLogger())

	require.NoError(t, env.quota.IncrementUsage(t.Context()))
	require.NoError(t, env.quota.IncrementUsage(t.Context()))

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp UsageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Used)
	assert.Equal(t, 150, resp.Limit)
}

func TestUsageHandler_MethodNotAllowed(t *testing.T) {
	env := newTestEnv()
	h := NewUsageHandler(env.quota, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/usage", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
