package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/storytest/internal/ir"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "storytest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.CreateSchema())
	return db
}

func run(id string, at time.Time, vs ...ir.Violation) *ir.Run {
	return &ir.Run{ID: id, StartedAt: at, Source: "bin", IRVersion: ir.Version, Violations: vs}
}

func TestRuns(t *testing.T) {
	db := openTemp(t)
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	high := ir.Violation{Unit: "Game.dll", Type: "Game.SaveSystem", Member: "Save", Token: 0x06000001, RuleID: "PLACEHOLDER-THROW", Kind: ir.KindIncompleteImplementation, Severity: ir.SeverityHigh, Message: "throws"}
	low := ir.Violation{Unit: "Game.dll", Type: "Game.Marker", RuleID: "EMPTY-TYPE", Kind: ir.KindUnusedCode, Severity: ir.SeverityLow, Message: "empty"}

	require.NoError(t, db.SaveRun(run("a", t0, high, low)))
	require.NoError(t, db.SaveRun(run("b", t0.Add(time.Hour), low)))
	// Saving again replaces the violations.
	require.NoError(t, db.SaveRun(run("a", t0, high)))

	got, err := db.LoadRun("a")
	require.NoError(t, err)
	assert.Equal(t, []ir.Violation{high}, got.Violations)

	latest, err := db.LoadLatestRun()
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)

	rows, err := db.ListRuns(10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, 1, rows[1].Violations)
	assert.True(t, rows[1].StartedAt.Equal(t0))

	vs, err := db.ListViolations("a", ir.SeverityLow)
	require.NoError(t, err)
	assert.Equal(t, []ir.Violation{high}, vs)

	vs, err = db.ListViolations("b", ir.SeverityMedium)
	require.NoError(t, err)
	assert.Empty(t, vs)

	_, err = db.LoadRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.ListViolations("missing", ir.SeverityLow)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadLatestRun_Empty(t *testing.T) {
	db := openTemp(t)
	_, err := db.LoadLatestRun()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExemptions(t *testing.T) {
	db := openTemp(t)

	_, err := db.CreateExemption("Game.Legacy::*", "   ", "dev", time.Time{})
	assert.ErrorIs(t, err, ir.ErrEmptyJustification)
	_, err = db.CreateExemption("Game.[", "bad pattern", "dev", time.Time{})
	assert.Error(t, err)

	id, err := db.CreateExemption("Game.Legacy::*", "  kept for save compatibility ", "dev", time.Time{})
	require.NoError(t, err)
	_, err = db.CreateExemption("Game.Old", "expired", "dev", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	all, err := db.ListExemptions(false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "kept for save compatibility", all[0].Justification)
	assert.Nil(t, all[0].ExpiresAt)
	assert.False(t, all[1].Active(time.Now()))

	active, err := db.ListExemptions(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)

	require.NoError(t, db.RevokeExemption(id))
	assert.ErrorIs(t, db.RevokeExemption(id), ErrNotFound)

	active, err = db.ListExemptions(true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAudit(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.LogAudit("dev", "exemption:create", "Game.Legacy::*", map[string]any{"id": 1}))
	require.NoError(t, db.LogAudit("dev", "exemption:revoke", "", nil))

	entries, err := db.ListAudit(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "exemption:revoke", entries[0].Action)
	assert.Equal(t, float64(1), entries[1].Meta["id"])
}
