// Package store implements the persistent design catalogue.
//
// Designs live in SQLite with an FTS5 index over name, notes and material.
// Each row keeps the full parameter set plus a snapshot of the headline
// analysis taken when the design was saved.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/params"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// newID generates design IDs.
var newID = uuid.NewString

// ErrNotFound is returned when no design has the requested ID.
var ErrNotFound = errors.New("store: design not found")

// ErrEmptyName is returned by Save when the design has no name.
var ErrEmptyName = errors.New("store: design name is required")

// ─── Types ───────────────────────────────────────────────────────────────────

// Design is one catalogued design.
type Design struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Notes               string          `json:"notes,omitempty"`
	TeethCS             int             `json:"teeth_cs"`
	Module              float64         `json:"module"`
	PressureAngle       float64         `json:"pressure_angle"`
	Material            params.Material `json:"material"`
	AddendumFactor      float64         `json:"addendum_factor"`
	DedendumFactor      float64         `json:"dedendum_factor"`
	WallThicknessFactor float64         `json:"wall_thickness_factor"`
	PrintTolerance      float64         `json:"print_tolerance"`
	Ratio               float64         `json:"ratio"`
	Strain              float64         `json:"strain"`
	ContactRatio        float64         `json:"contact_ratio"`
	IsValid             bool            `json:"is_valid"`
	CreatedAt           string          `json:"created_at"`
}

// Input returns the stored parameters in plain form.
func (d Design) Input() params.Input {
	return params.Input{
		TeethCS:             d.TeethCS,
		Module:              d.Module,
		PressureAngle:       params.Float64(d.PressureAngle),
		Material:            d.Material,
		AddendumFactor:      params.Float64(d.AddendumFactor),
		DedendumFactor:      params.Float64(d.DedendumFactor),
		WallThicknessFactor: params.Float64(d.WallThicknessFactor),
		PrintTolerance:      params.Float64(d.PrintTolerance),
	}
}

// Params rebuilds the validated model from the stored row.
func (d Design) Params() (params.Params, error) {
	return params.FromInput(d.Input())
}

// SearchResult embeds a Design with its FTS5 rank.
type SearchResult struct {
	Design
	Rank float64 `json:"rank"`
}

// MaterialCount is the number of designs saved for one material.
type MaterialCount struct {
	Material params.Material `json:"material"`
	Count    int             `json:"count"`
}

// Stats holds aggregate catalogue statistics.
type Stats struct {
	TotalDesigns int             `json:"total_designs"`
	ValidDesigns int             `json:"valid_designs"`
	Materials    []MaterialCount `json:"materials"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir          string
	MaxSearchResults int
}

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".hdrive"),
		MaxSearchResults: 50,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the design catalogue backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates the data directory if needed, opens designs.db with WAL
// mode and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = DefaultConfig().MaxSearchResults
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "designs.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS designs (
			id                    TEXT    PRIMARY KEY,
			name                  TEXT    NOT NULL,
			notes                 TEXT    NOT NULL DEFAULT '',
			teeth_cs              INTEGER NOT NULL,
			module                REAL    NOT NULL,
			pressure_angle        REAL    NOT NULL,
			material              TEXT    NOT NULL,
			addendum_factor       REAL    NOT NULL,
			dedendum_factor       REAL    NOT NULL,
			wall_thickness_factor REAL    NOT NULL,
			print_tolerance       REAL    NOT NULL,
			ratio                 REAL    NOT NULL,
			strain                REAL    NOT NULL,
			contact_ratio         REAL    NOT NULL,
			is_valid              INTEGER NOT NULL,
			created_at            TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_designs_created  ON designs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_designs_material ON designs(material);

		CREATE VIRTUAL TABLE IF NOT EXISTS designs_fts USING fts5(
			name,
			notes,
			material,
			content='designs',
			content_rowid='rowid'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='designs_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER designs_fts_insert AFTER INSERT ON designs BEGIN
				INSERT INTO designs_fts(rowid, name, notes, material)
				VALUES (new.rowid, new.name, new.notes, new.material);
			END;

			CREATE TRIGGER designs_fts_delete AFTER DELETE ON designs BEGIN
				INSERT INTO designs_fts(designs_fts, rowid, name, notes, material)
				VALUES ('delete', old.rowid, old.name, old.notes, old.material);
			END;

			CREATE TRIGGER designs_fts_update AFTER UPDATE ON designs BEGIN
				INSERT INTO designs_fts(designs_fts, rowid, name, notes, material)
				VALUES ('delete', old.rowid, old.name, old.notes, old.material);
				INSERT INTO designs_fts(rowid, name, notes, material)
				VALUES (new.rowid, new.name, new.notes, new.material);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return nil
}

// ─── Designs ─────────────────────────────────────────────────────────────────

const designColumns = `id, name, notes, teeth_cs, module, pressure_angle, material,
	addendum_factor, dedendum_factor, wall_thickness_factor, print_tolerance,
	ratio, strain, contact_ratio, is_valid, created_at`

// Save stores a design with a fresh ID and its analysis snapshot.
func (s *Store) Save(name, notes string, p params.Params) (*Design, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	summary := geometry.NewCalculator(p).Summary()
	mesh := harmonic.New(p).ValidateMeshing()

	d := Design{
		ID:                  newID(),
		Name:                name,
		Notes:               strings.TrimSpace(notes),
		TeethCS:             p.TeethCS(),
		Module:              p.Module(),
		PressureAngle:       p.PressureAngle(),
		Material:            p.Material(),
		AddendumFactor:      p.AddendumFactor(),
		DedendumFactor:      p.DedendumFactor(),
		WallThicknessFactor: p.WallThicknessFactor(),
		PrintTolerance:      p.PrintTolerance(),
		Ratio:               p.Ratio(),
		Strain:              summary.Analysis.Strain.Strain,
		ContactRatio:        summary.Analysis.ContactRatio,
		IsValid:             summary.IsValid && mesh.OverallValid,
	}

	_, err := s.db.Exec(`
		INSERT INTO designs (id, name, notes, teeth_cs, module, pressure_angle, material,
			addendum_factor, dedendum_factor, wall_thickness_factor, print_tolerance,
			ratio, strain, contact_ratio, is_valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Notes, d.TeethCS, d.Module, d.PressureAngle, string(d.Material),
		d.AddendumFactor, d.DedendumFactor, d.WallThicknessFactor, d.PrintTolerance,
		d.Ratio, d.Strain, d.ContactRatio, d.IsValid,
	)
	if err != nil {
		return nil, fmt.Errorf("store: save design: %w", err)
	}
	return s.Get(d.ID)
}

// Get retrieves a design by ID.
func (s *Store) Get(id string) (*Design, error) {
	row := s.db.QueryRow(`SELECT `+designColumns+` FROM designs WHERE id = ?`, id)
	d, err := scanDesign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get design: %w", err)
	}
	return d, nil
}

// List returns the most recent designs first.
func (s *Store) List(limit int) ([]Design, error) {
	limit = s.clampLimit(limit)
	rows, err := s.db.Query(
		`SELECT `+designColumns+` FROM designs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list designs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Design
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list designs: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Search runs a full-text query over name, notes and material. An empty
// query falls back to the most recent designs with a zero rank.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	limit = s.clampLimit(limit)

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		recent, err := s.List(limit)
		if err != nil {
			return nil, err
		}
		out := make([]SearchResult, len(recent))
		for i, d := range recent {
			out[i] = SearchResult{Design: d}
		}
		return out, nil
	}

	rows, err := s.db.Query(`
		SELECT d.id, d.name, d.notes, d.teeth_cs, d.module, d.pressure_angle, d.material,
		       d.addendum_factor, d.dedendum_factor, d.wall_thickness_factor, d.print_tolerance,
		       d.ratio, d.strain, d.contact_ratio, d.is_valid, d.created_at, fts.rank
		FROM designs_fts fts
		JOIN designs d ON d.rowid = fts.rowid
		WHERE designs_fts MATCH ?
		ORDER BY fts.rank LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var material string
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Notes, &r.TeethCS, &r.Module, &r.PressureAngle, &material,
			&r.AddendumFactor, &r.DedendumFactor, &r.WallThicknessFactor, &r.PrintTolerance,
			&r.Ratio, &r.Strain, &r.ContactRatio, &r.IsValid, &r.CreatedAt, &r.Rank,
		); err != nil {
			return nil, fmt.Errorf("store: search: %w", err)
		}
		r.Material = params.Material(material)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes a design by ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete design: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete design: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Stats returns catalogue totals and per-material counts, most used first.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(is_valid), 0) FROM designs`,
	).Scan(&stats.TotalDesigns, &stats.ValidDesigns); err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT material, COUNT(*) FROM designs GROUP BY material ORDER BY COUNT(*) DESC, material`)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var mc MaterialCount
		var material string
		if err := rows.Scan(&material, &mc.Count); err != nil {
			return nil, fmt.Errorf("store: stats: %w", err)
		}
		mc.Material = params.Material(material)
		stats.Materials = append(stats.Materials, mc)
	}
	return stats, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanDesign(row scanner) (*Design, error) {
	var d Design
	var material string
	if err := row.Scan(
		&d.ID, &d.Name, &d.Notes, &d.TeethCS, &d.Module, &d.PressureAngle, &material,
		&d.AddendumFactor, &d.DedendumFactor, &d.WallThicknessFactor, &d.PrintTolerance,
		&d.Ratio, &d.Strain, &d.ContactRatio, &d.IsValid, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.Material = params.Material(material)
	return &d, nil
}

func (s *Store) clampLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	}
	if limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}
	return limit
}

// sanitizeFTS quotes each word so user input cannot inject FTS5 operators.
func sanitizeFTS(query string) string {
	var quoted []string
	for _, w := range strings.Fields(query) {
		w = strings.Trim(w, `"`)
		if w == "" {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
