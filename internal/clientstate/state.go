// Package clientstate holds everything a client knows about its race across
// turns, and persists it between sessions.
package clientstate

import (
	"errors"
	"io"
	"log"

	"novaclient/internal/catalog"
	"novaclient/internal/game"
	"novaclient/internal/intel"
	"novaclient/internal/research"
)

var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrIdentityUnresolved   = errors.New("identity unresolved")
	ErrMalformedState       = errors.New("malformed client state")
)

type Phase int

const (
	Uninitialized Phase = iota
	Initializing
	Ready
	Persisted
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Persisted:
		return "persisted"
	}
	return "unknown"
}

// ClientState is the accumulated knowledge of one race in one game.
//
// Every exported field is persisted. Tombstones hold fleet keys in hex and
// design keys as they appear in the intel.
type ClientState struct {
	DeletedFleets  []string
	DeletedDesigns []string
	Messages       []game.Message

	KnownEnemyDesigns map[string]*game.Design
	StarReports       map[string]*intel.StarIntel

	InputTurn           *intel.Snapshot
	AvailableComponents *catalog.RaceComponents
	PlayerFleets        []*game.Fleet
	PlayerStars         []*game.Star
	PlayerRace          game.Race

	TurnYear          int
	ResearchLevels    game.TechLevel
	ResearchResources game.TechLevel
	ResearchTopics    game.TechLevel
	ResearchBudget    int
	BattlePlans       map[string]*game.BattlePlan
	PlayerRelations   map[string]game.PlayerRelation

	FirstTurn bool

	GameFolder string
	RaceName   string
	StatePath  string

	phase      Phase
	logger     *log.Logger
	restoreErr error
	intelPath  string
	absorbed   AbsorbStats
}

const DefaultResearchBudget = 10

func New() *ClientState {
	s := &ClientState{
		ResearchTopics: game.NewTechLevel(0, 0, 1, 0, 0, 0),
		ResearchBudget: DefaultResearchBudget,
		FirstTurn:      true,
	}
	s.ensureCollections()
	return s
}

// ensureCollections allocates any nil map. Decoded blobs have nil maps when
// they were saved empty.
func (s *ClientState) ensureCollections() {
	if s.KnownEnemyDesigns == nil {
		s.KnownEnemyDesigns = map[string]*game.Design{}
	}
	if s.StarReports == nil {
		s.StarReports = map[string]*intel.StarIntel{}
	}
	if s.BattlePlans == nil {
		s.BattlePlans = map[string]*game.BattlePlan{}
	}
	if s.PlayerRelations == nil {
		s.PlayerRelations = map[string]game.PlayerRelation{}
	}
}

func (s *ClientState) Phase() Phase { return s.phase }

// IntelPath is the turn file the last Initialize read.
func (s *ClientState) IntelPath() string { return s.intelPath }

// Absorbed reports what the last Initialize merged.
func (s *ClientState) Absorbed() AbsorbStats { return s.absorbed }

// SetLogger sets where recoverable problems are reported. A nil logger
// discards them.
func (s *ClientState) SetLogger(l *log.Logger) { s.logger = l }

func (s *ClientState) reporter() *log.Logger {
	if s.logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.logger
}

// adopt replaces every persisted field with prior's, keeping the identity of s.
func (s *ClientState) adopt(prior *ClientState) {
	folder, race, path := s.GameFolder, s.RaceName, s.StatePath
	phase, logger := s.phase, s.logger
	lost := prior.restoreErr
	*s = *prior
	s.GameFolder, s.RaceName, s.StatePath = folder, race, path
	s.phase, s.logger, s.restoreErr = phase, logger, lost
	s.ensureCollections()
}

func (s *ClientState) setIdentity(gameFolder, race, statePath string) {
	s.GameFolder = gameFolder
	s.RaceName = race
	s.StatePath = statePath
}

// ResearchContext prices research in topic for the current race and levels.
func (s *ClientState) ResearchContext(topic game.ResearchField) research.Context {
	return research.Context{
		Levels:      s.ResearchLevels,
		CostFactors: s.PlayerRace.ResearchCosts,
		Topic:       topic,
	}
}

// CurrentTopic is the first field selected in ResearchTopics.
func (s *ClientState) CurrentTopic() game.ResearchField {
	for _, f := range game.ResearchFields() {
		if s.ResearchTopics.Get(f) > 0 {
			return f
		}
	}
	return game.Energy
}

// SetResearchTopic makes f the only selected research field.
func (s *ClientState) SetResearchTopic(f game.ResearchField) {
	s.ResearchTopics.Zero()
	s.ResearchTopics.Set(f, 1)
}

// DeleteFleet records a fleet the player scrapped so the next orders carry it.
func (s *ClientState) DeleteFleet(key uint64) {
	s.DeletedFleets = appendUnique(s.DeletedFleets, formatFleetKey(key))
}

func (s *ClientState) DeleteDesign(key string) {
	s.DeletedDesigns = appendUnique(s.DeletedDesigns, key)
	delete(s.KnownEnemyDesigns, key)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
