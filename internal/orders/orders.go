// Package orders builds and encodes the file a client hands back to the
// server at the end of its turn.
//
// Orders always carry everything the race owns; the server replaces its copy
// wholesale instead of applying a diff.
package orders

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"novaclient/internal/clientstate"
	"novaclient/internal/game"
	"novaclient/internal/intel"
	"novaclient/internal/xmlfmt"
)

var ErrMalformedOrders = errors.New("malformed orders")

// PlayerData is the race-scoped settings copied from the client state.
type PlayerData struct {
	TurnYear          int
	ResearchBudget    int
	ResearchTopics    game.TechLevel
	ResearchResources game.TechLevel
	ResearchLevels    game.TechLevel
	Relations         map[string]game.PlayerRelation
	BattlePlans       map[string]*game.BattlePlan
}

type Orders struct {
	Race       string
	PlayerData PlayerData
	// TechLevel is the sum of all research levels.
	TechLevel int

	Fleets  []*game.Fleet
	Stars   []*game.Star
	Designs []*game.Design

	DeletedFleets  []string
	DeletedDesigns []string
}

// PathFor is where the orders of race are written in gameFolder.
func PathFor(gameFolder, race string) string {
	return game.DefaultExtensions().OrdersPath(gameFolder, race)
}

// Build derives the orders of state.RaceName from snap. A nil snap means the
// turn the state last absorbed. Build does not modify either argument.
func Build(snap *intel.Snapshot, state *clientstate.ClientState) *Orders {
	if snap == nil {
		snap = state.InputTurn
	}
	o := &Orders{
		Race: state.RaceName,
		PlayerData: PlayerData{
			TurnYear:          state.TurnYear,
			ResearchBudget:    state.ResearchBudget,
			ResearchTopics:    state.ResearchTopics,
			ResearchResources: state.ResearchResources,
			ResearchLevels:    state.ResearchLevels,
			Relations:         make(map[string]game.PlayerRelation, len(state.PlayerRelations)),
			BattlePlans:       make(map[string]*game.BattlePlan, len(state.BattlePlans)),
		},
		TechLevel:      state.ResearchLevels.Sum(),
		DeletedFleets:  append([]string(nil), state.DeletedFleets...),
		DeletedDesigns: append([]string(nil), state.DeletedDesigns...),
	}
	for k, v := range state.PlayerRelations {
		o.PlayerData.Relations[k] = v
	}
	for k, v := range state.BattlePlans {
		o.PlayerData.BattlePlans[k] = v
	}
	if snap != nil {
		o.Fleets = snap.OwnedFleets(state.RaceName)
		o.Stars = snap.OwnedStars(state.RaceName)
		o.Designs = snap.OwnedDesigns(state.RaceName)
	}
	return o
}

func (o *Orders) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := o.Write(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (o *Orders) Write(out io.Writer) error {
	w := xmlfmt.NewWriter(out)
	w.Header()
	w.Start("ROOT")
	w.Start("Orders")
	w.String("Race", o.Race)

	pd := o.PlayerData
	w.Start("PlayerData")
	w.Int("TurnYear", pd.TurnYear)
	w.Int("ResearchBudget", pd.ResearchBudget)
	pd.ResearchTopics.WriteXML(w, "ResearchTopics")
	pd.ResearchResources.WriteXML(w, "ResearchResources")
	pd.ResearchLevels.WriteXML(w, "ResearchLevels")
	for _, race := range sortedKeys(pd.Relations) {
		w.Start("Relation")
		w.String("Race", race)
		w.String("Status", pd.Relations[race].String())
		w.End("Relation")
	}
	for _, name := range sortedKeys(pd.BattlePlans) {
		pd.BattlePlans[name].WriteXML(w)
	}
	w.End("PlayerData")

	w.Int("TechLevel", o.TechLevel)
	for _, f := range o.Fleets {
		f.WriteXML(w)
	}
	for _, s := range o.Stars {
		s.WriteXML(w)
	}
	for _, d := range o.Designs {
		d.WriteXML(w)
	}
	for _, k := range o.DeletedFleets {
		w.String("DeletedFleet", k)
	}
	for _, k := range o.DeletedDesigns {
		w.String("DeletedDesign", k)
	}

	w.End("Orders")
	w.End("ROOT")
	return w.Flush()
}

func ReadFile(path string) (*Orders, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	o, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Read parses an orders document, the way the server side consumes it.
func Read(r io.Reader) (*Orders, error) {
	o := &Orders{PlayerData: PlayerData{
		Relations:   map[string]game.PlayerRelation{},
		BattlePlans: map[string]*game.BattlePlan{},
	}}
	d := xml.NewDecoder(r)
	seen := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOrders, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			seen = true
			if err := o.element(d, se); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedOrders, err)
			}
		}
	}
	if !seen {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedOrders)
	}
	return o, nil
}

func (o *Orders) element(d *xml.Decoder, el xml.StartElement) error {
	var err error
	switch strings.ToLower(el.Name.Local) {
	case "root", "orders":
		return xmlfmt.Children(d, el, func(_ string, child xml.StartElement) error {
			return o.element(d, child)
		})
	case "race":
		o.Race, err = xmlfmt.Text(d, el)
	case "playerdata":
		err = o.PlayerData.readXML(d, el)
	case "techlevel":
		o.TechLevel, err = xmlfmt.Int(d, el)
	case "fleet":
		f := &game.Fleet{}
		if err = f.ReadXML(d, el); err == nil {
			o.Fleets = append(o.Fleets, f)
		}
	case "star":
		s := game.NewStar()
		if err = s.ReadXML(d, el); err == nil {
			o.Stars = append(o.Stars, s)
		}
	case "design", "shipdesign":
		ds := &game.Design{}
		if err = ds.ReadXML(d, el); err == nil {
			o.Designs = append(o.Designs, ds)
		}
	case "deletedfleet":
		var k string
		if k, err = xmlfmt.Text(d, el); err == nil {
			o.DeletedFleets = append(o.DeletedFleets, k)
		}
	case "deleteddesign":
		var k string
		if k, err = xmlfmt.Text(d, el); err == nil {
			o.DeletedDesigns = append(o.DeletedDesigns, k)
		}
	default:
		err = d.Skip()
	}
	return err
}

func (pd *PlayerData) readXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "turnyear":
			pd.TurnYear, err = xmlfmt.Int(d, el)
		case "researchbudget":
			pd.ResearchBudget, err = xmlfmt.Int(d, el)
		case "researchtopics":
			err = pd.ResearchTopics.ReadXML(d, el)
		case "researchresources":
			err = pd.ResearchResources.ReadXML(d, el)
		case "researchlevels":
			err = pd.ResearchLevels.ReadXML(d, el)
		case "relation":
			var race, status string
			err = xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
				var err error
				switch tag {
				case "race":
					race, err = xmlfmt.Text(d, el)
				case "status":
					status, err = xmlfmt.Text(d, el)
				default:
					err = d.Skip()
				}
				return err
			})
			if err == nil {
				var rel game.PlayerRelation
				if rel, err = game.ParsePlayerRelation(status); err == nil {
					pd.Relations[race] = rel
				}
			}
		case "battleplan":
			p := &game.BattlePlan{}
			if err = p.ReadXML(d, el); err == nil {
				pd.BattlePlans[p.Name] = p
			}
		default:
			err = d.Skip()
		}
		return err
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
