package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewithboateng/storytest/internal/ir"
)

// Exemption is a stored opt-out. Pattern is matched against
// Namespace.Type and Namespace.Type::Member.
type Exemption struct {
	ID            int64      `json:"id"`
	Pattern       string     `json:"pattern"`
	Justification string     `json:"justification"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether e applies at time now.
func (e Exemption) Active(now time.Time) bool {
	if e.RevokedAt != nil {
		return false
	}
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}

// CreateExemption stores a new exemption. A zero expires means it never expires.
func (db *DB) CreateExemption(pattern, justification, createdBy string, expires time.Time) (int64, error) {
	ex, err := ir.NewExemption(justification)
	if err != nil {
		return 0, err
	}
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalid exemption pattern %q", pattern)
	}
	var exp any
	if !expires.IsZero() {
		exp = expires.UTC().Format(time.RFC3339Nano)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO exemptions(pattern, justification, expires_at, created_by, created_at)
VALUES(?,?,?,?,?)`,
		pattern, ex.Justification(), exp, createdBy, now)
	if err != nil {
		return 0, fmt.Errorf("create exemption: %w", err)
	}
	return res.LastInsertId()
}

// RevokeExemption marks an active exemption revoked; ErrNotFound otherwise.
func (db *DB) RevokeExemption(id int64) error {
	return execOne(db.conn, `UPDATE exemptions SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
}

func (db *DB) ListExemptions(activeOnly bool) ([]Exemption, error) {
	q := `
SELECT id, pattern, justification, expires_at, created_by, created_at, revoked_at
FROM exemptions`
	args := []any{}
	if activeOnly {
		q += ` WHERE revoked_at IS NULL AND (expires_at IS NULL OR expires_at > ?)`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Exemption{}
	for rows.Next() {
		var (
			e       Exemption
			exp, ra sql.NullString
			ca      string
		)
		if err := rows.Scan(&e.ID, &e.Pattern, &e.Justification, &exp, &e.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(ca)
		if exp.Valid {
			t := parseTime(exp.String)
			e.ExpiresAt = &t
		}
		if ra.Valid {
			t := parseTime(ra.String)
			e.RevokedAt = &t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
