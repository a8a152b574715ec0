package game

import (
	"encoding/xml"

	"novaclient/internal/xmlfmt"
)

type ProductionItem struct {
	Name     string
	Quantity int
}

// Star is a star system as the server reports it. Fields the server did not
// disclose hold Unset (or Nobody for the owner).
type Star struct {
	Name     string
	Position Point
	Owner    string
	// Year is the turn the reported values were observed.
	Year int

	MineralConcentration Resources
	Gravity              int
	Radiation            int
	Temperature          int
	Colonists            int
	HasFleetsInOrbit     bool
	Starbase             *FleetRef

	ResourcesOnHand Resources
	Factories       int
	Mines           int
	Defenses        int
	ProductionQueue []ProductionItem
}

func NewStar() *Star {
	return &Star{
		Owner:       Nobody,
		Year:        Unset,
		Gravity:     Unset,
		Radiation:   Unset,
		Temperature: Unset,
		Colonists:   Unset,
	}
}

func (s *Star) Key() string { return s.Name }

func (s *Star) WriteXML(w *xmlfmt.Writer) {
	w.Start("Star")
	w.String("Name", s.Name)
	s.Position.WriteXML(w, "Position")
	w.String("Owner", s.Owner)
	w.Int("Year", s.Year)
	s.MineralConcentration.WriteXML(w, "MineralConcentration")
	w.Int("Gravity", s.Gravity)
	w.Int("Radiation", s.Radiation)
	w.Int("Temperature", s.Temperature)
	w.Int("Colonists", s.Colonists)
	w.Bool("HasFleetsInOrbit", s.HasFleetsInOrbit)
	if s.Starbase != nil {
		w.Hex("Starbase", s.Starbase.Key)
	}
	s.ResourcesOnHand.WriteXML(w, "ResourcesOnHand")
	w.Int("Factories", s.Factories)
	w.Int("Mines", s.Mines)
	w.Int("Defenses", s.Defenses)
	if len(s.ProductionQueue) > 0 {
		w.Start("ProductionQueue")
		for _, it := range s.ProductionQueue {
			w.Start("Item")
			w.String("Name", it.Name)
			w.Int("Quantity", it.Quantity)
			w.End("Item")
		}
		w.End("ProductionQueue")
	}
	w.End("Star")
}

func (s *Star) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "name":
			s.Name, err = xmlfmt.Text(d, el)
		case "position":
			err = s.Position.ReadXML(d, el)
		case "owner":
			s.Owner, err = xmlfmt.Text(d, el)
		case "year":
			s.Year, err = xmlfmt.Int(d, el)
		case "mineralconcentration":
			err = s.MineralConcentration.ReadXML(d, el)
		case "gravity":
			s.Gravity, err = xmlfmt.Int(d, el)
		case "radiation":
			s.Radiation, err = xmlfmt.Int(d, el)
		case "temperature":
			s.Temperature, err = xmlfmt.Int(d, el)
		case "colonists":
			s.Colonists, err = xmlfmt.Int(d, el)
		case "hasfleetsinorbit":
			s.HasFleetsInOrbit, err = xmlfmt.Bool(d, el)
		case "starbase":
			var k uint64
			if k, err = xmlfmt.Hex(d, el); err == nil {
				s.Starbase = &FleetRef{Key: k}
			}
		case "resourcesonhand":
			err = s.ResourcesOnHand.ReadXML(d, el)
		case "factories":
			s.Factories, err = xmlfmt.Int(d, el)
		case "mines":
			s.Mines, err = xmlfmt.Int(d, el)
		case "defenses":
			s.Defenses, err = xmlfmt.Int(d, el)
		case "productionqueue":
			err = xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
				if tag != "item" {
					return d.Skip()
				}
				var it ProductionItem
				err := xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
					var err error
					switch tag {
					case "name":
						it.Name, err = xmlfmt.Text(d, el)
					case "quantity":
						it.Quantity, err = xmlfmt.Int(d, el)
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				s.ProductionQueue = append(s.ProductionQueue, it)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
}
