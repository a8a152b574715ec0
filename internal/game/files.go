package game

import (
	"path/filepath"
	"strings"
)

// Extensions are the file name suffixes of the per-race files in a game
// folder, without the leading dot.
type Extensions struct {
	Intel  string `yaml:"intel"`
	State  string `yaml:"state"`
	Orders string `yaml:"orders"`
	Race   string `yaml:"race"`
}

func DefaultExtensions() Extensions {
	return Extensions{Intel: "intel", State: "state", Orders: "orders", Race: "race"}
}

// Normalize strips leading dots and fills blank entries with defaults.
func (e Extensions) Normalize() Extensions {
	def := DefaultExtensions()
	fix := func(v, d string) string {
		v = strings.TrimPrefix(strings.TrimSpace(v), ".")
		if v == "" {
			return d
		}
		return v
	}
	return Extensions{
		Intel:  fix(e.Intel, def.Intel),
		State:  fix(e.State, def.State),
		Orders: fix(e.Orders, def.Orders),
		Race:   fix(e.Race, def.Race),
	}
}

func racePath(gameFolder, race, ext string) string {
	return filepath.Join(gameFolder, race+"."+ext)
}

func (e Extensions) IntelPath(gameFolder, race string) string {
	return racePath(gameFolder, race, e.Normalize().Intel)
}

func (e Extensions) StatePath(gameFolder, race string) string {
	return racePath(gameFolder, race, e.Normalize().State)
}

func (e Extensions) OrdersPath(gameFolder, race string) string {
	return racePath(gameFolder, race, e.Normalize().Orders)
}

// RaceFilePattern is the glob matching race files in gameFolder.
func (e Extensions) RaceFilePattern(gameFolder string) string {
	return filepath.Join(gameFolder, "*."+e.Normalize().Race)
}
