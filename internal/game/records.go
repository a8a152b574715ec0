package game

import (
	"encoding/xml"
	"sort"

	"novaclient/internal/xmlfmt"
)

// The records below are carried through turn files unchanged; the client
// stores and displays them but never interprets their contents.

type Minefield struct {
	Key      uint64
	Owner    string
	Position Point
	Mines    int
	Type     string
}

func (m *Minefield) WriteXML(w *xmlfmt.Writer) {
	w.Start("Minefield")
	w.Hex("Key", m.Key)
	w.String("Owner", m.Owner)
	m.Position.WriteXML(w, "Position")
	w.Int("NumberOfMines", m.Mines)
	w.String("Type", m.Type)
	w.End("Minefield")
}

func (m *Minefield) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "key":
			m.Key, err = xmlfmt.Hex(d, el)
		case "owner":
			m.Owner, err = xmlfmt.Text(d, el)
		case "position":
			err = m.Position.ReadXML(d, el)
		case "numberofmines":
			m.Mines, err = xmlfmt.Int(d, el)
		case "type":
			m.Type, err = xmlfmt.Text(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

type Message struct {
	Year     int
	Audience string
	Type     string
	Text     string
}

func (m Message) WriteXML(w *xmlfmt.Writer) {
	w.Start("Message")
	w.Int("Year", m.Year)
	w.String("Audience", m.Audience)
	w.String("Type", m.Type)
	w.String("Text", m.Text)
	w.End("Message")
}

func (m *Message) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "year":
			m.Year, err = xmlfmt.Int(d, el)
		case "audience":
			m.Audience, err = xmlfmt.Text(d, el)
		case "type":
			m.Type, err = xmlfmt.Text(d, el)
		case "text":
			m.Text, err = xmlfmt.Text(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

type BattleReport struct {
	Year     int
	Location string
	Position Point
	// Losses maps race name to ships lost.
	Losses map[string]int
}

func (b BattleReport) WriteXML(w *xmlfmt.Writer) {
	w.Start("BattleReport")
	w.Int("Year", b.Year)
	w.String("Location", b.Location)
	b.Position.WriteXML(w, "Position")
	races := make([]string, 0, len(b.Losses))
	for r := range b.Losses {
		races = append(races, r)
	}
	sort.Strings(races)
	for _, r := range races {
		w.Start("Loss")
		w.String("Race", r)
		w.Int("Ships", b.Losses[r])
		w.End("Loss")
	}
	w.End("BattleReport")
}

func (b *BattleReport) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "year":
			b.Year, err = xmlfmt.Int(d, el)
		case "location":
			b.Location, err = xmlfmt.Text(d, el)
		case "position":
			err = b.Position.ReadXML(d, el)
		case "loss":
			var race string
			var ships int
			err = xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
				var err error
				switch tag {
				case "race":
					race, err = xmlfmt.Text(d, el)
				case "ships":
					ships, err = xmlfmt.Int(d, el)
				default:
					err = d.Skip()
				}
				return err
			})
			if err == nil {
				if b.Losses == nil {
					b.Losses = map[string]int{}
				}
				b.Losses[race] = ships
			}
		default:
			err = d.Skip()
		}
		return err
	})
}

type ScoreRecord struct {
	Race      string
	Rank      int
	Score     int
	Planets   int
	Starbases int
	Ships     int
	TechLevel int
}

func (s ScoreRecord) WriteXML(w *xmlfmt.Writer) {
	w.Start("ScoreRecord")
	w.String("Race", s.Race)
	w.Int("Rank", s.Rank)
	w.Int("Score", s.Score)
	w.Int("Planets", s.Planets)
	w.Int("Starbases", s.Starbases)
	w.Int("Ships", s.Ships)
	w.Int("TechLevel", s.TechLevel)
	w.End("ScoreRecord")
}

func (s *ScoreRecord) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "race":
			s.Race, err = xmlfmt.Text(d, el)
		case "rank":
			s.Rank, err = xmlfmt.Int(d, el)
		case "score":
			s.Score, err = xmlfmt.Int(d, el)
		case "planets":
			s.Planets, err = xmlfmt.Int(d, el)
		case "starbases":
			s.Starbases, err = xmlfmt.Int(d, el)
		case "ships":
			s.Ships, err = xmlfmt.Int(d, el)
		case "techlevel":
			s.TechLevel, err = xmlfmt.Int(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

type RaceIcon struct {
	Source string
	Index  int
}

func (ri RaceIcon) WriteXML(w *xmlfmt.Writer) {
	w.Start("RaceIcon")
	w.String("Source", ri.Source)
	w.Int("Index", ri.Index)
	w.End("RaceIcon")
}

func (ri *RaceIcon) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "source":
			ri.Source, err = xmlfmt.Text(d, el)
		case "index":
			ri.Index, err = xmlfmt.Int(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}
