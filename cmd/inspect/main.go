package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"novaclient/internal/clientstate"
	"novaclient/internal/intel"
	"novaclient/internal/persistence/indexdb"
)

func main() {
	var (
		statePath = flag.String("state", "", "path to a saved client state")
		intelPath = flag.String("intel", "", "path to a turn file")
		starName  = flag.String("star", "", "also print what is known about this star")
		indexPath = flag.String("index_db", "", "with -star and -race, print the star's history from this index (optional)")
		raceName  = flag.String("race", "", "race whose history -index_db is read for")
	)
	flag.Parse()

	if *statePath == "" && *intelPath == "" {
		fmt.Fprintln(os.Stderr, "missing -state or -intel")
		os.Exit(2)
	}

	if *statePath != "" {
		s, err := clientstate.ReadFile(*statePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read state:", err)
			os.Exit(1)
		}
		printState(os.Stdout, s, *starName)
	}
	if *intelPath != "" {
		snap, err := intel.ReadFile(*intelPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read intel:", err)
			os.Exit(1)
		}
		printIntel(os.Stdout, snap, *starName)
	}
	if *indexPath != "" && *starName != "" {
		if err := printHistory(os.Stdout, *indexPath, *raceName, *starName); err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
	}
}

func printState(w io.Writer, s *clientstate.ClientState, star string) {
	fmt.Fprintf(w, "state race=%s game=%s year=%d first_turn=%v reports=%d enemy_designs=%d messages=%d deleted_fleets=%d deleted_designs=%d\n",
		s.RaceName, s.GameFolder, s.TurnYear, s.FirstTurn, len(s.StarReports), len(s.KnownEnemyDesigns),
		len(s.Messages), len(s.DeletedFleets), len(s.DeletedDesigns))
	fmt.Fprintf(w, "research levels=%v topics=%v budget=%d%%\n", s.ResearchLevels, s.ResearchTopics, s.ResearchBudget)

	names := make([]string, 0, len(s.PlayerRelations))
	for n := range s.PlayerRelations {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "relation %s=%s\n", n, s.PlayerRelations[n])
	}

	if star == "" {
		return
	}
	r, ok := s.StarReports[star]
	if !ok {
		fmt.Fprintf(w, "star %s: no report\n", star)
		return
	}
	fmt.Fprintf(w, "star %s year=%d owner=%s gravity=%d radiation=%d temperature=%d colonists=%d\n",
		r.Name, r.Year, r.Owner, r.Gravity, r.Radiation, r.Temperature, r.Colonists)
}

func printIntel(w io.Writer, snap *intel.Snapshot, star string) {
	fmt.Fprintf(w, "intel race=%s year=%d stars=%d fleets=%d designs=%d minefields=%d messages=%d battles=%d races=%d\n",
		snap.MyRace.Name, snap.TurnYear, len(snap.Stars), len(snap.Fleets), len(snap.Designs),
		len(snap.Minefields), len(snap.Messages), len(snap.Battles), len(snap.RaceNames))

	if star == "" {
		return
	}
	st, ok := snap.Stars[star]
	if !ok {
		fmt.Fprintf(w, "star %s: not in turn\n", star)
		return
	}
	fmt.Fprintf(w, "star %s year=%d owner=%s gravity=%d radiation=%d temperature=%d colonists=%d\n",
		st.Name, st.Year, st.Owner, st.Gravity, st.Radiation, st.Temperature, st.Colonists)
	if sb := snap.Starbase(st); sb != nil {
		fmt.Fprintf(w, "starbase %s owner=%s\n", sb.Name, sb.Owner)
	}
}

func printHistory(w io.Writer, dbPath, race, star string) error {
	if race == "" {
		return fmt.Errorf("-race is required with -index_db")
	}
	idx, err := indexdb.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	rows, err := idx.StarHistory(context.Background(), race, star)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(w, "history %s observed=%d recorded=%d owner=%s colonists=%d\n",
			r.Name, r.ReportYear, r.RecordedTurn, r.Owner, r.Colonists)
	}
	return nil
}
