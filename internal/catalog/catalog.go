// Package catalog loads the component catalog and works out which components
// a race can build at its current tech levels.
package catalog

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"novaclient/internal/game"
)

//go:embed components.schema.json
var schemaText string

var ErrNotLoaded = errors.New("component catalog not loaded")

type Cost struct {
	Ironium   int `json:"ironium"`
	Boranium  int `json:"boranium"`
	Germanium int `json:"germanium"`
	Energy    int `json:"energy"`
}

type Requirements struct {
	Biotechnology int `json:"biotechnology"`
	Electronics   int `json:"electronics"`
	Energy        int `json:"energy"`
	Propulsion    int `json:"propulsion"`
	Weapons       int `json:"weapons"`
	Construction  int `json:"construction"`
}

func (r Requirements) Levels() game.TechLevel {
	return game.NewTechLevel(r.Biotechnology, r.Electronics, r.Energy, r.Propulsion, r.Weapons, r.Construction)
}

type ComponentDef struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Mass     int          `json:"mass"`
	Cost     Cost         `json:"cost"`
	Requires Requirements `json:"requires"`
	// RequiresTrait and ExcludedTrait restrict a component to races with or
	// without a given trait.
	RequiresTrait string `json:"requires_trait,omitempty"`
	ExcludedTrait string `json:"excluded_trait,omitempty"`
}

// Catalog is the full set of component definitions.
type Catalog struct {
	ByName map[string]ComponentDef
	Digest string
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func compileSchema() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("components.schema.json", schemaText)
}

// Load reads and validates a components.json file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("components schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("components.json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("components.json: %w", err)
	}

	var defs []ComponentDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("components.json: %w", err)
	}
	c := &Catalog{ByName: map[string]ComponentDef{}, Digest: sha256Hex(raw)}
	for _, d := range defs {
		if _, dup := c.ByName[d.Name]; dup {
			return nil, fmt.Errorf("components.json: duplicate component %q", d.Name)
		}
		c.ByName[d.Name] = d
	}
	return c, nil
}

// Available reports whether race can build d at levels.
func (d ComponentDef) Available(race game.Race, levels game.TechLevel) bool {
	if !levels.AtLeast(d.Requires.Levels()) {
		return false
	}
	if d.RequiresTrait != "" && !race.HasTrait(d.RequiresTrait) {
		return false
	}
	if d.ExcludedTrait != "" && race.HasTrait(d.ExcludedTrait) {
		return false
	}
	return true
}

// RaceComponents is the subset of the catalog one race can currently build.
// It is stored with the client state, so it only holds plain values.
type RaceComponents struct {
	Race       string
	Levels     game.TechLevel
	Components map[string]ComponentDef
}

func (rc *RaceComponents) Names() []string {
	names := make([]string, 0, len(rc.Components))
	for n := range rc.Components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (rc *RaceComponents) Has(name string) bool {
	_, ok := rc.Components[name]
	return ok
}

func (c *Catalog) Determine(race game.Race, levels game.TechLevel) *RaceComponents {
	rc := &RaceComponents{Race: race.Name, Levels: levels, Components: map[string]ComponentDef{}}
	for name, d := range c.ByName {
		if d.Available(race, levels) {
			rc.Components[name] = d
		}
	}
	return rc
}

// File is a catalog backed by a components.json path and loaded on Restore.
type File struct {
	Path string

	cat *Catalog
}

func NewFile(path string) *File { return &File{Path: path} }

func (f *File) Restore() error {
	c, err := Load(f.Path)
	if err != nil {
		return err
	}
	f.cat = c
	return nil
}

func (f *File) Catalog() *Catalog { return f.cat }

func (f *File) Determine(race game.Race, levels game.TechLevel) (*RaceComponents, error) {
	if f.cat == nil {
		return nil, ErrNotLoaded
	}
	return f.cat.Determine(race, levels), nil
}
