package intel

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"novaclient/internal/game"
	"novaclient/internal/xmlfmt"
)

var ErrMalformedSnapshot = errors.New("malformed intel")

// Snapshot is one turn's truth as the server hands it to a race. Each load
// replaces the whole snapshot; nothing is merged at this level.
type Snapshot struct {
	TurnYear int
	MyRace   game.Race

	Messages  []game.Message
	Battles   []game.BattleReport
	RaceNames []string
	Scores    []game.ScoreRecord
	RaceIcons map[string]game.RaceIcon

	Fleets     map[uint64]*game.Fleet
	Designs    map[string]*game.Design
	Stars      map[string]*game.Star
	Minefields map[uint64]*game.Minefield

	NewResearchLevels game.TechLevel
	ResearchResources game.TechLevel
}

func New() *Snapshot {
	s := &Snapshot{}
	s.Clear()
	return s
}

func (s *Snapshot) Clear() {
	*s = Snapshot{
		TurnYear:   game.StartingYear,
		MyRace:     game.NewRace(),
		RaceIcons:  map[string]game.RaceIcon{},
		Fleets:     map[uint64]*game.Fleet{},
		Designs:    map[string]*game.Design{},
		Stars:      map[string]*game.Star{},
		Minefields: map[uint64]*game.Minefield{},
	}
}

func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := New()
	if err := s.Load(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load replaces s with the document read from r. On error s is left as it was.
func (s *Snapshot) Load(r io.Reader) error {
	next := New()
	if err := next.decode(xml.NewDecoder(r)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	*s = *next
	return nil
}

func (s *Snapshot) decode(d *xml.Decoder) error {
	seenRoot := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			if !seenRoot {
				return errors.New("empty document")
			}
			return nil
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok {
			seenRoot = true
			if err := s.element(d, se); err != nil {
				return err
			}
		}
	}
}

func (s *Snapshot) element(d *xml.Decoder, el xml.StartElement) error {
	switch tag := strings.ToLower(el.Name.Local); tag {
	case "root", "intel":
		return xmlfmt.Children(d, el, func(_ string, child xml.StartElement) error {
			return s.element(d, child)
		})
	case "turnyear":
		y, err := xmlfmt.Int(d, el)
		if err != nil {
			return err
		}
		s.TurnYear = y
	case "race":
		r := game.NewRace()
		if err := r.ReadXML(d, el); err != nil {
			return err
		}
		s.MyRace = r
	case "message":
		var m game.Message
		if err := m.ReadXML(d, el); err != nil {
			return err
		}
		s.Messages = append(s.Messages, m)
	case "battlereport":
		var b game.BattleReport
		if err := b.ReadXML(d, el); err != nil {
			return err
		}
		s.Battles = append(s.Battles, b)
	case "racename":
		name, err := xmlfmt.Text(d, el)
		if err != nil {
			return err
		}
		s.RaceNames = append(s.RaceNames, name)
	case "scorerecord":
		var sc game.ScoreRecord
		if err := sc.ReadXML(d, el); err != nil {
			return err
		}
		s.Scores = append(s.Scores, sc)
	case "raceiconrecord":
		return s.raceIconRecord(d, el)
	case "fleet":
		f := &game.Fleet{}
		if err := f.ReadXML(d, el); err != nil {
			return err
		}
		s.Fleets[f.Key] = f
	case "design", "shipdesign":
		ds := &game.Design{}
		if err := ds.ReadXML(d, el); err != nil {
			return err
		}
		s.Designs[ds.Key] = ds
	case "star":
		st := game.NewStar()
		if err := st.ReadXML(d, el); err != nil {
			return err
		}
		s.Stars[st.Key()] = st
	case "minefield":
		m := &game.Minefield{}
		if err := m.ReadXML(d, el); err != nil {
			return err
		}
		s.Minefields[m.Key] = m
	case "newtechlevels":
		var tl game.TechLevel
		if err := tl.ReadXML(d, el); err != nil {
			return err
		}
		s.NewResearchLevels = tl
	case "researchresources":
		var tl game.TechLevel
		if err := tl.ReadXML(d, el); err != nil {
			return err
		}
		s.ResearchResources = tl
	default:
		return d.Skip()
	}
	return nil
}

// raceIconRecord reads a RaceName followed by a RaceIcon.
func (s *Snapshot) raceIconRecord(d *xml.Decoder, el xml.StartElement) error {
	var (
		name    string
		icon    game.RaceIcon
		pos     int
		hasIcon bool
	)
	err := xmlfmt.Children(d, el, func(tag string, child xml.StartElement) error {
		defer func() { pos++ }()
		switch {
		case pos == 0 && tag == "racename":
			var err error
			name, err = xmlfmt.Text(d, child)
			return err
		case pos == 1 && tag == "raceicon":
			hasIcon = true
			return icon.ReadXML(d, child)
		case pos < 2:
			return fmt.Errorf("raceiconrecord: unexpected <%s> at position %d", child.Name.Local, pos)
		}
		return d.Skip()
	})
	if err != nil {
		return err
	}
	if name == "" || !hasIcon {
		return errors.New("raceiconrecord: want racename then raceicon")
	}
	s.RaceIcons[name] = icon
	return nil
}

func (s *Snapshot) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := s.Save(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Save writes s as a ROOT/Intel document. Keyed collections are written in
// key order so the same snapshot always produces the same bytes.
func (s *Snapshot) Save(out io.Writer) error {
	w := xmlfmt.NewWriter(out)
	w.Header()
	w.Start("ROOT")
	w.Start("Intel")

	w.Int("TurnYear", s.TurnYear)
	s.MyRace.WriteXML(w)
	for _, m := range s.Messages {
		m.WriteXML(w)
	}
	for _, b := range s.Battles {
		b.WriteXML(w)
	}
	for _, n := range s.RaceNames {
		w.String("RaceName", n)
	}
	for _, sc := range s.Scores {
		sc.WriteXML(w)
	}
	for _, name := range sortedKeys(s.RaceIcons) {
		w.Start("RaceIconRecord")
		w.String("RaceName", name)
		s.RaceIcons[name].WriteXML(w)
		w.End("RaceIconRecord")
	}
	for _, k := range sortedUintKeys(s.Fleets) {
		s.Fleets[k].WriteXML(w)
	}
	for _, k := range sortedKeys(s.Designs) {
		s.Designs[k].WriteXML(w)
	}
	for _, k := range sortedKeys(s.Stars) {
		s.Stars[k].WriteXML(w)
	}
	for _, k := range sortedUintKeys(s.Minefields) {
		s.Minefields[k].WriteXML(w)
	}
	s.NewResearchLevels.WriteXML(w, "NewTechLevels")
	s.ResearchResources.WriteXML(w, "ResearchResources")

	w.End("Intel")
	w.End("ROOT")
	return w.Flush()
}

// Starbase resolves the starbase reference of star through the fleet table.
func (s *Snapshot) Starbase(star *game.Star) *game.Fleet {
	if star == nil || star.Starbase == nil {
		return nil
	}
	return s.Fleets[star.Starbase.Key]
}

func (s *Snapshot) OwnedFleets(race string) []*game.Fleet {
	var out []*game.Fleet
	for _, k := range sortedUintKeys(s.Fleets) {
		if f := s.Fleets[k]; f.Owner == race {
			out = append(out, f)
		}
	}
	return out
}

func (s *Snapshot) OwnedStars(race string) []*game.Star {
	var out []*game.Star
	for _, k := range sortedKeys(s.Stars) {
		if st := s.Stars[k]; st.Owner == race {
			out = append(out, st)
		}
	}
	return out
}

func (s *Snapshot) OwnedDesigns(race string) []*game.Design {
	var out []*game.Design
	for _, k := range sortedKeys(s.Designs) {
		if ds := s.Designs[k]; ds.Owner == race {
			out = append(out, ds)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUintKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
