// Package indexdb keeps a queryable history of what each race saw, turn by
// turn. The intel files and the state blob stay the source of truth; the
// index can be deleted and rebuilt from archived turns.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"novaclient/internal/catalog"
	"novaclient/internal/intel"
	"novaclient/internal/orders"
)

const schemaVersion = "1"

type SQLiteIndex struct {
	db   *sql.DB
	once sync.Once
}

// StarRow is one distinct observation of a star by a race.
type StarRow struct {
	Name         string
	ReportYear   int
	RecordedTurn int
	Owner        string
	Gravity      int
	Radiation    int
	Temperature  int
	Colonists    int
}

type TurnRow struct {
	Race       string
	Year       int
	Stars      int
	Fleets     int
	Designs    int
	Messages   int
	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			race TEXT NOT NULL,
			year INTEGER NOT NULL,
			stars INTEGER NOT NULL,
			fleets INTEGER NOT NULL,
			designs INTEGER NOT NULL,
			messages INTEGER NOT NULL,
			research_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (race, year)
		);`,
		`CREATE TABLE IF NOT EXISTS star_reports (
			race TEXT NOT NULL,
			name TEXT NOT NULL,
			report_year INTEGER NOT NULL,
			recorded_turn INTEGER NOT NULL,
			owner TEXT NOT NULL,
			gravity INTEGER NOT NULL,
			radiation INTEGER NOT NULL,
			temperature INTEGER NOT NULL,
			colonists INTEGER NOT NULL,
			PRIMARY KEY (race, name, report_year)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_star_reports_turn ON star_reports(race, recorded_turn);`,
		`CREATE TABLE IF NOT EXISTS orders (
			race TEXT NOT NULL,
			year INTEGER NOT NULL,
			tech_level INTEGER NOT NULL,
			fleets INTEGER NOT NULL,
			stars INTEGER NOT NULL,
			designs INTEGER NOT NULL,
			deleted_fleets INTEGER NOT NULL,
			deleted_designs INTEGER NOT NULL,
			research_budget INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (race, year)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}

// RecordTurn stores the turn summary and every report whose observation year
// has not been indexed yet. Reports that did not change since the previous
// turn keep their first recorded_turn.
func (s *SQLiteIndex) RecordTurn(ctx context.Context, race string, snap *intel.Snapshot, reports map[string]*intel.StarIntel) error {
	if s == nil {
		return nil
	}
	research, err := json.Marshal(map[string]any{
		"levels":    snap.NewResearchLevels,
		"resources": snap.ResearchResources,
	})
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO turns(race,year,stars,fleets,designs,messages,research_json,recorded_at) VALUES(?,?,?,?,?,?,?,?)`,
		race, snap.TurnYear, len(snap.Stars), len(snap.Fleets), len(snap.Designs), len(snap.Messages), string(research), now,
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO star_reports(race,name,report_year,recorded_turn,owner,gravity,radiation,temperature,colonists) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, name := range sortedNames(reports) {
		r := reports[name]
		if r == nil || r.Year < 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, race, r.Name, r.Year, snap.TurnYear, r.Owner, r.Gravity, r.Radiation, r.Temperature, r.Colonists); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) RecordOrders(ctx context.Context, o *orders.Orders) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO orders(race,year,tech_level,fleets,stars,designs,deleted_fleets,deleted_designs,research_budget,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		o.Race, o.PlayerData.TurnYear, o.TechLevel, len(o.Fleets), len(o.Stars), len(o.Designs),
		len(o.DeletedFleets), len(o.DeletedDesigns), o.PlayerData.ResearchBudget,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// UpsertCatalog records the component catalog the client ran with, keyed by
// its file name.
func (s *SQLiteIndex) UpsertCatalog(ctx context.Context, path string, cat *catalog.Catalog) error {
	if s == nil || cat == nil || cat.Digest == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`,
		filepath.Base(path), cat.Digest, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// StarHistory lists the observations race made of the star, oldest first.
func (s *SQLiteIndex) StarHistory(ctx context.Context, race, name string) ([]StarRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name,report_year,recorded_turn,owner,gravity,radiation,temperature,colonists
		 FROM star_reports WHERE race=? AND name=? ORDER BY report_year`, race, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StarRow
	for rows.Next() {
		var r StarRow
		if err := rows.Scan(&r.Name, &r.ReportYear, &r.RecordedTurn, &r.Owner, &r.Gravity, &r.Radiation, &r.Temperature, &r.Colonists); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Turns(ctx context.Context, race string) ([]TurnRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT race,year,stars,fleets,designs,messages,recorded_at FROM turns WHERE race=? ORDER BY year`, race)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnRow
	for rows.Next() {
		var r TurnRow
		if err := rows.Scan(&r.Race, &r.Year, &r.Stars, &r.Fleets, &r.Designs, &r.Messages, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func sortedNames(m map[string]*intel.StarIntel) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
