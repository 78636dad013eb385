// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit persists every scored candidate, linked or discarded, so
// verdicts can be reviewed later. The resolvers never read it back.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// DefaultRecentLimit bounds Recent when no limit is given.
const DefaultRecentLimit = 50

// Store manages the audit SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one recorded verdict.
type Entry struct {
	RunID      string             `json:"run_id" yaml:"run_id"`
	UseCase    types.UseCase      `json:"use_case" yaml:"use_case"`
	Platform   types.Platform     `json:"platform,omitempty" yaml:"platform,omitempty"`
	Entity     string             `json:"entity" yaml:"entity"`
	RegistryID string             `json:"registry_id,omitempty" yaml:"registry_id,omitempty"`
	URL        string             `json:"url" yaml:"url"`
	Provider   types.ProviderName `json:"provider" yaml:"provider"`
	Score      int                `json:"score" yaml:"score"`
	Confidence types.Confidence   `json:"confidence" yaml:"confidence"`
	Linked     bool               `json:"linked" yaml:"linked"`
	Handle     string             `json:"handle,omitempty" yaml:"handle,omitempty"`
	Reasons    []string           `json:"reasons" yaml:"reasons"`
	Warnings   []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
}

// NewStore opens or creates the audit database at path and its schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS validations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			use_case TEXT NOT NULL,
			platform TEXT,
			entity TEXT,
			registry_id TEXT,
			url TEXT NOT NULL,
			provider TEXT,
			score INTEGER NOT NULL,
			confidence TEXT NOT NULL,
			linked INTEGER NOT NULL,
			handle TEXT,
			reasons TEXT,
			warnings TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_run_id ON validations(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_registry_id ON validations(registry_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRunID returns a fresh identifier grouping the verdicts of one
// resolution run.
func NewRunID() string {
	return uuid.NewString()
}

// Record writes every linked and rejected candidate of resolutions in one
// transaction and returns the number of rows written.
func (s *Store) Record(ctx context.Context, runID string, facts types.EntityFacts, resolutions ...types.Resolution) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO validations (run_id, use_case, platform, entity, registry_id, url, provider,
			score, confidence, linked, handle, reasons, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	created := s.now().UTC().Format(time.RFC3339Nano)
	entity := facts.DisplayName()
	count := 0
	for _, res := range resolutions {
		links := append(append([]types.ResolvedLink(nil), res.Links...), res.Rejected...)
		for _, l := range links {
			reasonsJSON, _ := json.Marshal(l.Validation.Reasons)
			warningsJSON, _ := json.Marshal(l.Validation.Warnings)
			handle := ""
			if l.Handle != nil {
				handle = l.Handle.Identifier
			}
			_, err := stmt.ExecContext(ctx,
				runID, string(res.UseCase), string(res.Platform), entity, facts.RegistryID,
				l.Candidate.URL, string(res.Provider), l.Validation.Score,
				string(l.Validation.Confidence), l.Validation.Linked, handle,
				string(reasonsJSON), string(warningsJSON), created,
			)
			if err != nil {
				return count, fmt.Errorf("inserting verdict for %s: %w", l.Candidate.URL, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing audit run: %w", err)
	}
	return count, nil
}

const selectEntries = `SELECT run_id, use_case, platform, entity, registry_id, url, provider,
	score, confidence, linked, handle, reasons, warnings, created_at FROM validations`

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.query(ctx, selectEntries+` ORDER BY id DESC LIMIT ?`, limit)
}

// Run returns the entries of one run in insertion order.
func (s *Store) Run(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, selectEntries+` WHERE run_id = ? ORDER BY id`, runID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                          Entry
			platform, registryID       sql.NullString
			provider, handle           sql.NullString
			reasons, warnings, created sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.UseCase, &platform, &e.Entity, &registryID, &e.URL, &provider,
			&e.Score, &e.Confidence, &e.Linked, &handle, &reasons, &warnings, &created); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		e.Platform = types.Platform(platform.String)
		e.RegistryID = registryID.String
		e.Provider = types.ProviderName(provider.String)
		e.Handle = handle.String
		json.Unmarshal([]byte(reasons.String), &e.Reasons)
		json.Unmarshal([]byte(warnings.String), &e.Warnings)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created.String)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FormatTable writes entries as a human-readable table to w.
func FormatTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No audit entries.")
		return
	}
	fmt.Fprintf(w, "%-20s  %-8s  %-12s  %-5s  %-6s  %-6s  %s\n",
		"Time", "Run", "Use case", "Score", "Conf", "Linked", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		useCase := string(e.UseCase)
		if e.Platform != "" {
			useCase += "/" + string(e.Platform)
		}
		fmt.Fprintf(w, "%-20s  %-8s  %-12s  %-5d  %-6s  %-6t  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), shortID(e.RunID), useCase,
			e.Score, e.Confidence, e.Linked, e.URL)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
