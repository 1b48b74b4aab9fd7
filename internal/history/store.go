// Package history records one row per parsed upload in PostgreSQL so that
// earlier import results can be listed and re-opened.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

var (
	// ErrNotFound is returned when no run has the requested ID.
	ErrNotFound = errors.New("import not found")
	// ErrDisabled is returned by callers that run without a database.
	ErrDisabled = errors.New("import history disabled")
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Run is one recorded import.
type Run struct {
	ID         string                 `json:"id"`
	Filename   string                 `json:"filename"`
	Grammar    string                 `json:"grammar,omitempty"`
	Advertiser string                 `json:"advertiser,omitempty"`
	Segments   int                    `json:"segments"`
	Locations  int                    `json:"locations"`
	Errors     int                    `json:"errors"`
	Warnings   int                    `json:"warnings"`
	Findings   []core.ValidationError `json:"findings,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Store persists runs in the bulk_import_runs table.
type Store struct {
	db DBTX
}

// NewStore creates a Store over db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bulk_import_runs (
	id             UUID PRIMARY KEY,
	filename       TEXT NOT NULL,
	grammar        TEXT,
	advertiser     TEXT,
	segment_count  INTEGER NOT NULL DEFAULT 0,
	location_count INTEGER NOT NULL DEFAULT 0,
	error_count    INTEGER NOT NULL DEFAULT 0,
	warning_count  INTEGER NOT NULL DEFAULT 0,
	findings       JSONB NOT NULL DEFAULT '[]',
	ip_address     TEXT,
	user_agent     TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bulk_import_runs_created_at_idx ON bulk_import_runs (created_at DESC);
`

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

const insertRunSQL = `
INSERT INTO bulk_import_runs (
	id, filename, grammar, advertiser,
	segment_count, location_count, error_count, warning_count,
	findings, ip_address, user_agent
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at`

// Record stores the outcome of one parse. The client IP and user agent are
// taken from ctx.
func (s *Store) Record(ctx context.Context, id, filename string, result *core.ParseResult) (*Run, error) {
	run := NewRun(id, filename, result)
	run.IPAddress = GetIPAddressFromContext(ctx)
	run.UserAgent = GetUserAgentFromContext(ctx)

	if run.Findings == nil {
		run.Findings = []core.ValidationError{}
	}
	findings, err := json.Marshal(run.Findings)
	if err != nil {
		return nil, fmt.Errorf("encode findings: %w", err)
	}

	var created pgtype.Timestamptz
	err = s.db.QueryRow(ctx, insertRunSQL,
		toPgUUID(run.ID),
		run.Filename,
		toPgText(run.Grammar),
		toPgText(run.Advertiser),
		int32(run.Segments),
		int32(run.Locations),
		int32(run.Errors),
		int32(run.Warnings),
		findings,
		toPgText(run.IPAddress),
		toPgText(run.UserAgent),
	).Scan(&created)
	if err != nil {
		return nil, fmt.Errorf("record import %s: %w", id, err)
	}
	run.CreatedAt = created.Time
	return run, nil
}

// NewRun summarizes a parse result without storing it.
func NewRun(id, filename string, result *core.ParseResult) *Run {
	errs, warnings := result.Counts()
	run := &Run{
		ID:        id,
		Filename:  filename,
		Grammar:   string(result.Grammar),
		Segments:  len(result.Segments),
		Locations: len(result.Locations),
		Errors:    errs,
		Warnings:  warnings,
		Findings:  result.Errors,
	}
	if result.Project != nil {
		run.Advertiser = result.Project.AdvertiserName
	}
	return run
}

const selectRunColumns = `
SELECT id, filename, grammar, advertiser,
	segment_count, location_count, error_count, warning_count,
	findings, ip_address, user_agent, created_at
FROM bulk_import_runs`

// Get returns one run by ID. A malformed ID is reported as ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, ErrNotFound
	}

	run, err := scanRun(s.db.QueryRow(ctx, selectRunColumns+" WHERE id = $1", pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import %s: %w", id, err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. Findings are omitted.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx, selectRunColumns+" ORDER BY created_at DESC LIMIT $1", int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		run.Findings = nil
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		id                               pgtype.UUID
		filename                         string
		grammar, advertiser              pgtype.Text
		segments, locations, errs, warns int32
		findings                         []byte
		ip, ua                           pgtype.Text
		created                          pgtype.Timestamptz
	)
	if err := row.Scan(&id, &filename, &grammar, &advertiser,
		&segments, &locations, &errs, &warns,
		&findings, &ip, &ua, &created); err != nil {
		return nil, err
	}

	run := &Run{
		ID:         uuidToString(id),
		Filename:   filename,
		Grammar:    grammar.String,
		Advertiser: advertiser.String,
		Segments:   int(segments),
		Locations:  int(locations),
		Errors:     int(errs),
		Warnings:   int(warns),
		IPAddress:  ip.String,
		UserAgent:  ua.String,
		CreatedAt:  created.Time,
	}
	if len(findings) > 0 {
		if err := json.Unmarshal(findings, &run.Findings); err != nil {
			return nil, fmt.Errorf("decode findings: %w", err)
		}
	}
	return run, nil
}

// Helper functions for type conversion

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
