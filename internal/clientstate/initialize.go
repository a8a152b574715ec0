package clientstate

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"novaclient/internal/catalog"
	"novaclient/internal/game"
	"novaclient/internal/intel"
)

// Catalog supplies component definitions. Restore must succeed before any
// turn is interpreted.
type Catalog interface {
	Restore() error
	Determine(race game.Race, levels game.TechLevel) (*catalog.RaceComponents, error)
}

// Resolver settles identity when the launch options do not. Implementations
// return an error when the user cancels.
type Resolver interface {
	SelectRace(gameFolder string, races []string) (string, error)
	ChooseIntelFile(gameFolder string) (string, error)
}

type Options struct {
	GameFolder string
	RaceName   string
	// IntelPath opens a specific turn file.
	IntelPath string
	// StatePath resumes from a specific saved state.
	StatePath string

	Extensions game.Extensions
	Catalog    Catalog
	Resolver   Resolver
	Logger     *log.Logger
}

// Initialize resolves which race is being played, loads its history and the
// current turn, and brings the state to Ready. Every error is fatal to the
// session.
func (s *ClientState) Initialize(opts Options) error {
	s.phase = Initializing
	if opts.Logger != nil {
		s.logger = opts.Logger
	}
	opts.Extensions = opts.Extensions.Normalize()

	if opts.Catalog == nil {
		return fmt.Errorf("%w: no component catalog", ErrConfigurationMissing)
	}
	if err := opts.Catalog.Restore(); err != nil {
		return fmt.Errorf("%w: could not restore component definitions: %v", ErrConfigurationMissing, err)
	}

	if opts.GameFolder == "" {
		return fmt.Errorf("%w: game folder not set", ErrConfigurationMissing)
	}
	if fi, err := os.Stat(opts.GameFolder); err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: game folder %q not found", ErrConfigurationMissing, opts.GameFolder)
	}

	snap, err := s.resolve(opts)
	if err != nil {
		return err
	}

	s.absorbed = s.Absorb(snap)

	if s.FirstTurn {
		s.BattlePlans[game.DefaultPlanName] = game.DefaultBattlePlan()
		for _, name := range snap.RaceNames {
			s.PlayerRelations[name] = game.Neutral
		}
	}

	rc, err := opts.Catalog.Determine(s.PlayerRace, s.ResearchLevels)
	if err != nil {
		return fmt.Errorf("%w: could not determine available components: %v", ErrConfigurationMissing, err)
	}
	s.AvailableComponents = rc

	s.FirstTurn = false
	s.phase = Ready
	return nil
}

func (s *ClientState) resolve(opts Options) (*intel.Snapshot, error) {
	folder := opts.GameFolder
	ext := opts.Extensions

	if opts.IntelPath != "" {
		return s.fromIntel(opts, opts.IntelPath, opts.RaceName)
	}

	if opts.StatePath != "" {
		if !exists(opts.StatePath) {
			return nil, fmt.Errorf("%w: could not continue game, %s not found", ErrIdentityUnresolved, opts.StatePath)
		}
		prior, err := ReadFile(opts.StatePath)
		if err != nil {
			s.reporter().Printf("unable to read state file %s, race history will not be available: %v", opts.StatePath, err)
			prior = New()
			prior.restoreErr = err
		}
		race := opts.RaceName
		if race == "" {
			race = prior.RaceName
		}
		if race == "" {
			return nil, fmt.Errorf("%w: state file %s names no race", ErrIdentityUnresolved, opts.StatePath)
		}
		s.setIdentity(folder, race, opts.StatePath)
		s.adopt(prior)
		return s.loadTurn(ext.IntelPath(folder, race))
	}

	race := opts.RaceName
	if race == "" {
		races, err := ListRaces(folder, ext)
		if err != nil {
			return nil, err
		}
		switch len(races) {
		case 0:
		case 1:
			race = races[0]
		default:
			if opts.Resolver == nil {
				return nil, fmt.Errorf("%w: %d races in %s and no way to choose", ErrIdentityUnresolved, len(races), folder)
			}
			if race, err = opts.Resolver.SelectRace(folder, races); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrIdentityUnresolved, err)
			}
		}
	}

	if race == "" {
		if opts.Resolver == nil {
			return nil, fmt.Errorf("%w: no race files in %s", ErrIdentityUnresolved, folder)
		}
		path, err := opts.Resolver.ChooseIntelFile(folder)
		if err != nil || path == "" {
			return nil, fmt.Errorf("%w: unable to open a game: %v", ErrIdentityUnresolved, err)
		}
		return s.fromIntel(opts, path, "")
	}

	statePath := ext.StatePath(folder, race)
	if exists(statePath) {
		s.adopt(restorePath(statePath, folder, race, s.logger))
	}
	s.setIdentity(folder, race, statePath)
	return s.loadTurn(ext.IntelPath(folder, race))
}

// fromIntel opens an explicit turn file. Saved history is picked up unless the
// turn is the first of a new game.
func (s *ClientState) fromIntel(opts Options, path, race string) (*intel.Snapshot, error) {
	if !exists(path) {
		return nil, fmt.Errorf("%w: could not locate intel file %s", ErrIdentityUnresolved, path)
	}
	snap, err := intel.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if race == "" {
		race = snap.MyRace.Name
	}
	if race == "" {
		return nil, fmt.Errorf("%w: intel file %s names no race", ErrIdentityUnresolved, path)
	}

	statePath := opts.Extensions.StatePath(opts.GameFolder, race)
	if exists(statePath) && snap.TurnYear != game.StartingYear {
		s.adopt(restorePath(statePath, opts.GameFolder, race, s.logger))
	}
	s.setIdentity(opts.GameFolder, race, statePath)
	s.intelPath = path
	return snap, nil
}

func (s *ClientState) loadTurn(path string) (*intel.Snapshot, error) {
	snap, err := intel.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no turn file %s", ErrIdentityUnresolved, path)
		}
		return nil, err
	}
	s.intelPath = path
	return snap, nil
}

// ListRaces returns the race names that have a race file in gameFolder, sorted.
func ListRaces(gameFolder string, ext game.Extensions) ([]string, error) {
	ext = ext.Normalize()
	matches, err := filepath.Glob(ext.RaceFilePattern(gameFolder))
	if err != nil {
		return nil, err
	}
	races := make([]string, 0, len(matches))
	for _, m := range matches {
		races = append(races, strings.TrimSuffix(filepath.Base(m), "."+ext.Race))
	}
	sort.Strings(races)
	return races, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
