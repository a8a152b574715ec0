package indexdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"novaclient/internal/catalog"
	"novaclient/internal/game"
	"novaclient/internal/intel"
	"novaclient/internal/orders"
)

func report(name, owner string, year, colonists int) *intel.StarIntel {
	st := game.NewStar()
	st.Name = name
	st.Owner = owner
	st.Colonists = colonists
	st.Gravity = 50
	return intel.NewStarIntelFrom(st, intel.InDeepScan, year)
}

func TestSQLiteIndex_RecordTurnAndHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	snap := intel.New()
	snap.TurnYear = 2101
	reports := map[string]*intel.StarIntel{"Sol": report("Sol", "Alice", 2101, 2500)}
	if err := idx.RecordTurn(ctx, "Alice", snap, reports); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}

	// Sol not rescanned in 2102: same report, no new row.
	snap.TurnYear = 2102
	reports["Rigel"] = report("Rigel", "Bob", 2102, 900)
	if err := idx.RecordTurn(ctx, "Alice", snap, reports); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}

	snap.TurnYear = 2103
	reports["Sol"] = report("Sol", "Alice", 2103, 3100)
	if err := idx.RecordTurn(ctx, "Alice", snap, reports); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}

	hist, err := idx.StarHistory(ctx, "Alice", "Sol")
	if err != nil {
		t.Fatalf("StarHistory: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history=%d rows want 2", len(hist))
	}
	if hist[0].ReportYear != 2101 || hist[0].RecordedTurn != 2101 || hist[0].Colonists != 2500 {
		t.Fatalf("first row=%+v", hist[0])
	}
	if hist[1].ReportYear != 2103 || hist[1].Colonists != 3100 || hist[1].Gravity != 50 {
		t.Fatalf("second row=%+v", hist[1])
	}

	turns, err := idx.Turns(ctx, "Alice")
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(turns) != 3 || turns[0].Year != 2101 || turns[2].Year != 2103 {
		t.Fatalf("turns=%+v", turns)
	}
	if other, _ := idx.StarHistory(ctx, "Bob", "Sol"); len(other) != 0 {
		t.Fatalf("history leaked across races: %+v", other)
	}
}

func TestSQLiteIndex_RecordOrders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	o := &orders.Orders{
		Race:          "Alice",
		PlayerData:    orders.PlayerData{TurnYear: 2104, ResearchBudget: 15},
		TechLevel:     7,
		DeletedFleets: []string{"3C", "4D"},
	}
	if err := idx.RecordOrders(context.Background(), o); err != nil {
		t.Fatalf("RecordOrders: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var tech, deleted, budget int
	row := db.QueryRow(`SELECT tech_level,deleted_fleets,research_budget FROM orders WHERE race='Alice' AND year=2104`)
	if err := row.Scan(&tech, &deleted, &budget); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if tech != 7 || deleted != 2 || budget != 15 {
		t.Fatalf("row mismatch: tech=%d deleted=%d budget=%d", tech, deleted, budget)
	}
}

func TestSQLiteIndex_UpsertCatalog(t *testing.T) {
	dir := t.TempDir()
	raw := `[{"name":"Scanner","type":"scanner","mass":1,"cost":{"ironium":1}}]`
	catPath := filepath.Join(dir, "components.json")
	if err := os.WriteFile(catPath, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, err := catalog.Load(catPath)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	idx, err := OpenSQLite(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.UpsertCatalog(ctx, catPath, cat); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	var digest string
	if err := idx.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name='components.json'`).Scan(&digest); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if digest != cat.Digest {
		t.Fatalf("digest=%q want %q", digest, cat.Digest)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
