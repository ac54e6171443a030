package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/codewithboateng/storytest/internal/ir"
)

// ListRuns returns a lightweight list of runs with counts, newest first.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.source, r.ir_version,
		       (SELECT COUNT(1) FROM violations v WHERE v.run_id = r.id) AS violations
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAt string
		if err := rows.Scan(&rr.ID, &startedAt, &rr.Source, &rr.IRVersion, &rr.Violations); err != nil {
			return nil, err
		}
		rr.StartedAt = parseTime(startedAt)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListViolations returns a run's violations at or above minSeverity, in
// report order. An unknown run yields ErrNotFound.
func (db *DB) ListViolations(runID string, minSeverity ir.Severity) ([]ir.Violation, error) {
	ok, err := db.HasRun(runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	const q = `
		SELECT unit, type, member, token, rule_id, kind, severity, message, source
		  FROM violations
		 WHERE run_id = ?
		   AND (CASE severity WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END) >= ?
		 ORDER BY seq`
	rows, err := db.conn.Query(q, runID, minSeverity.Rank())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ir.Violation{}
	for rows.Next() {
		var v ir.Violation
		var kind, sev string
		var token int64
		if err := rows.Scan(&v.Unit, &v.Type, &v.Member, &token, &v.RuleID, &kind, &sev, &v.Message, &v.Source); err != nil {
			return nil, err
		}
		v.Token = uint32(token)
		v.Kind, v.Severity = ir.Kind(kind), ir.Severity(sev)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (db *DB) HasRun(id string) (bool, error) {
	var one int
	err := db.conn.QueryRow(`SELECT 1 FROM runs WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// parseTime accepts RFC3339Nano or RFC3339 and yields the zero time otherwise.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
