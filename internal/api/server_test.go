package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/rules"
	"github.com/codewithboateng/storytest/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.DB) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.CreateSchema())

	reg := rules.NewRegistry()
	require.NoError(t, rules.RegisterBuiltins(reg))

	s := &Server{
		DB:             db,
		Rules:          reg,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, db
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestRunsEndpoints(t *testing.T) {
	ts, db := newTestServer(t)

	var empty struct {
		Items []storage.RunRow `json:"items"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/runs", &empty))
	assert.NotNil(t, empty.Items)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/v1/runs/latest", nil))

	run := &ir.Run{
		ID: "run-1", StartedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), IRVersion: ir.Version,
		Violations: []ir.Violation{
			{Unit: "Game.dll", Type: "Game.SaveSystem", Member: "Save", RuleID: "PLACEHOLDER-THROW", Kind: ir.KindIncompleteImplementation, Severity: ir.SeverityHigh, Message: "throws"},
			{Unit: "Game.dll", Type: "Game.Marker", RuleID: "EMPTY-TYPE", Kind: ir.KindUnusedCode, Severity: ir.SeverityLow, Message: "empty"},
		},
	}
	require.NoError(t, db.SaveRun(run))

	var list struct {
		Items []storage.RunRow `json:"items"`
		Limit int              `json:"limit"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/runs?limit=999", &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 2, list.Items[0].Violations)
	assert.Equal(t, 200, list.Limit)

	var got ir.Run
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/runs/latest", &got))
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/runs/run-1", &got))
	assert.Len(t, got.Violations, 2)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/v1/runs/nope", nil))

	var vs struct {
		MinSeverity string         `json:"min_severity"`
		Items       []ir.Violation `json:"items"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/runs/run-1/violations?min_severity=high", &vs))
	assert.Equal(t, "HIGH", vs.MinSeverity)
	require.Len(t, vs.Items, 1)
	assert.Equal(t, "PLACEHOLDER-THROW", vs.Items[0].RuleID)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/v1/runs/run-1/violations?min_severity=urgent", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/v1/runs/nope/violations", nil))
}

func TestRulesAndExemptions(t *testing.T) {
	ts, db := newTestServer(t)

	var rs struct {
		Items []struct {
			ID    string `json:"id"`
			Stage string `json:"stage"`
		} `json:"items"`
		Count int `json:"count"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/rules", &rs))
	assert.Equal(t, len(rules.Builtins()), rs.Count)
	assert.Equal(t, "PLACEHOLDER-THROW", rs.Items[0].ID)

	id, err := db.CreateExemption("Game.Legacy", "kept for old saves", "dev", time.Time{})
	require.NoError(t, err)
	_, err = db.CreateExemption("Game.Old", "gone", "dev", time.Time{})
	require.NoError(t, err)
	require.NoError(t, db.RevokeExemption(id+1))

	var ex struct {
		Items      []storage.Exemption `json:"items"`
		ActiveOnly bool                `json:"active_only"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/exemptions?active=true", &ex))
	assert.True(t, ex.ActiveOnly)
	require.Len(t, ex.Items, 1)
	assert.Equal(t, "Game.Legacy", ex.Items[0].Pattern)

	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/exemptions", &ex))
	assert.Len(t, ex.Items, 2)
}

func TestHealthCORSAndFallback(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))

	res, err = http.Get(ts.URL + "/api/v1/nothing")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
