package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"novaclient/internal/ai"
	"novaclient/internal/catalog"
	"novaclient/internal/clientstate"
	"novaclient/internal/config"
	"novaclient/internal/orders"
	"novaclient/internal/persistence/archive"
	"novaclient/internal/persistence/indexdb"
	"novaclient/internal/persistence/journal"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to client.yaml (optional)")
		gameFolder = flag.String("game_folder", "", "game folder holding the turn files (overrides config)")
		components = flag.String("components", "", "component catalog path (overrides config)")
		race       = flag.String("race", "", "race to play (optional when the game folder has one race)")
		intelPath  = flag.String("intel", "", "turn file to open (optional)")
		statePath  = flag.String("state", "", "saved state to continue from (optional)")
		runAI      = flag.Bool("ai", false, "let the built-in planner make this turn's decisions")
		turnYear   = flag.Int("turn", 0, "with -ai, only act on this turn year (optional)")
		noPrompt   = flag.Bool("no_prompt", false, "fail instead of asking on stdin when the race is ambiguous")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if s := strings.TrimSpace(*gameFolder); s != "" {
		cfg.GameFolder = s
	}
	if s := strings.TrimSpace(*components); s != "" {
		cfg.Components = s
	}

	cat := catalog.NewFile(cfg.Components)
	opts := clientstate.Options{
		GameFolder: cfg.GameFolder,
		RaceName:   strings.TrimSpace(*race),
		IntelPath:  strings.TrimSpace(*intelPath),
		StatePath:  strings.TrimSpace(*statePath),
		Extensions: cfg.Extensions,
		Catalog:    cat,
		Logger:     logger,
	}
	if !*noPrompt {
		opts.Resolver = newPromptResolver(os.Stdin, os.Stdout, cfg.Extensions)
	}

	state := clientstate.New()
	if err := state.Initialize(opts); err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	logger.Printf("race=%s year=%d intel=%s stars=%d fleets=%d", state.RaceName, state.TurnYear,
		state.IntelPath(), len(state.PlayerStars), len(state.PlayerFleets))

	var jr *journal.Journal
	if cfg.Journal {
		jr = journal.Open(state.GameFolder, state.RaceName)
		defer jr.Close()
	}
	// fatalf closes the journal first; os.Exit skips deferred calls.
	fatalf := func(format string, args ...any) {
		if jr != nil {
			_ = jr.Close()
		}
		logger.Fatalf(format, args...)
	}
	record := func(kind string, detail map[string]any, err error) {
		if jr == nil {
			return
		}
		if werr := jr.Record(kind, state.TurnYear, detail, err); werr != nil {
			logger.Printf("journal %s: %v", kind, werr)
		}
	}

	if err := state.RestoreError(); err != nil {
		record(journal.KindRestoreFallback, map[string]any{"state": state.StatePath}, err)
	}
	st := state.Absorbed()
	record(journal.KindAbsorb, map[string]any{
		"intel":             state.IntelPath(),
		"stars_updated":     st.StarsUpdated,
		"stars_stale":       st.StarsStale,
		"enemy_designs":     st.EnemyDesigns,
		"tombstones_closed": st.TombstonesClosed,
	}, nil)

	if *runAI {
		p := &ai.Planner{TurnYear: *turnYear, Logger: logger}
		if _, err := p.Plan(state); err != nil {
			fatalf("ai: %v", err)
		}
	}

	o := orders.Build(nil, state)
	ordersPath := cfg.Extensions.OrdersPath(state.GameFolder, state.RaceName)
	if err := o.WriteFile(ordersPath); err != nil {
		fatalf("write orders: %v", err)
	}
	record(journal.KindOrders, map[string]any{
		"path":    ordersPath,
		"fleets":  len(o.Fleets),
		"stars":   len(o.Stars),
		"designs": len(o.Designs),
	}, nil)
	logger.Printf("orders written: %s", ordersPath)

	if err := state.Save(); err != nil {
		record(journal.KindSave, map[string]any{"path": state.StatePath}, err)
		fatalf("save state: %v", err)
	}
	record(journal.KindSave, map[string]any{"path": state.StatePath}, nil)

	if cfg.IndexDB != "" {
		if err := recordIndex(cfg.IndexDB, cfg.Components, cat.Catalog(), state, o); err != nil {
			// The index is secondary; the turn is already saved.
			logger.Printf("index: %v", err)
		}
	}
	if cfg.Archive {
		path, err := archive.ArchiveTurn(state.GameFolder, state.RaceName, state.IntelPath(), state.InputTurn)
		if err != nil {
			logger.Printf("archive: %v", err)
		} else {
			logger.Printf("turn archived: %s", path)
		}
	}
}

func recordIndex(dbPath, catalogPath string, cat *catalog.Catalog, state *clientstate.ClientState, o *orders.Orders) error {
	idx, err := indexdb.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.UpsertCatalog(ctx, catalogPath, cat); err != nil {
		return err
	}
	if err := idx.RecordTurn(ctx, state.RaceName, state.InputTurn, state.StarReports); err != nil {
		return err
	}
	return idx.RecordOrders(ctx, o)
}
