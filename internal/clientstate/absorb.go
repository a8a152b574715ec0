package clientstate

import (
	"novaclient/internal/game"
	"novaclient/internal/intel"
	"novaclient/internal/xmlfmt"
)

func formatFleetKey(k uint64) string { return xmlfmt.FormatKey(k) }

// ScanFor picks the scan level and year a snapshot star is recorded with,
// from the point of view of race.
func ScanFor(star *game.Star, race string, turnYear int) (intel.ScanLevel, int) {
	switch {
	case star.Owner == race:
		return intel.Owned, turnYear
	case star.Year == turnYear:
		return intel.InDeepScan, star.Year
	case star.Year == game.Unset:
		return intel.InScan, star.Year
	default:
		return intel.InPlace, star.Year
	}
}

// AbsorbStats counts what one Absorb changed.
type AbsorbStats struct {
	StarsUpdated     int
	StarsStale       int
	EnemyDesigns     int
	TombstonesClosed int
}

// Absorb merges a freshly loaded turn into the accumulated state.
func (s *ClientState) Absorb(snap *intel.Snapshot) AbsorbStats {
	var st AbsorbStats
	s.ensureCollections()

	// The same turn absorbed again, e.g. a second pass over one turn file.
	again := s.TurnYear == snap.TurnYear
	s.InputTurn = snap
	s.TurnYear = snap.TurnYear
	s.PlayerRace = snap.MyRace

	s.ResearchResources = snap.ResearchResources
	for _, f := range game.ResearchFields() {
		if lvl := snap.NewResearchLevels.Get(f); lvl > s.ResearchLevels.Get(f) {
			s.ResearchLevels.Set(f, lvl)
		}
	}

	if !again {
		s.Messages = append(s.Messages, snap.Messages...)
	}

	s.PlayerFleets = snap.OwnedFleets(s.RaceName)
	s.PlayerStars = snap.OwnedStars(s.RaceName)

	for key, ds := range snap.Designs {
		if ds.Owner != s.RaceName {
			s.KnownEnemyDesigns[key] = ds
			st.EnemyDesigns++
		}
	}

	for name, star := range snap.Stars {
		report, ok := s.StarReports[name]
		if !ok {
			report = intel.NewStarIntel()
			s.StarReports[name] = report
		}
		scan, year := ScanFor(star, s.RaceName, snap.TurnYear)
		// A star not observed this turn repeats an old report; it only
		// counts when it is newer than what is already held.
		if ok && scan < intel.InDeepScan && year <= report.Year {
			st.StarsStale++
			continue
		}
		if report.Update(star, scan, year) {
			st.StarsUpdated++
		} else {
			st.StarsStale++
		}
	}

	before := len(s.DeletedFleets) + len(s.DeletedDesigns)
	s.DeletedFleets = keepIf(s.DeletedFleets, func(k string) bool {
		key, err := xmlfmt.ParseKey(k)
		if err != nil {
			return false
		}
		_, live := snap.Fleets[key]
		return live
	})
	s.DeletedDesigns = keepIf(s.DeletedDesigns, func(k string) bool {
		_, live := snap.Designs[k]
		return live
	})
	st.TombstonesClosed = before - len(s.DeletedFleets) - len(s.DeletedDesigns)
	return st
}

func keepIf(list []string, keep func(string) bool) []string {
	out := list[:0]
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
