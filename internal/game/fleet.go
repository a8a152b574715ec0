package game

import (
	"encoding/xml"
	"sort"

	"novaclient/internal/xmlfmt"
)

// FleetRef names a fleet by key. It is resolved against a fleet table when
// needed and never holds the fleet itself, so object graphs holding refs stay
// acyclic.
type FleetRef struct {
	Key uint64
}

type Waypoint struct {
	Destination string
	Position    Point
	Task        string
	WarpFactor  int
}

func (wp Waypoint) writeXML(w *xmlfmt.Writer) {
	w.Start("Waypoint")
	w.String("Destination", wp.Destination)
	wp.Position.WriteXML(w, "Position")
	w.String("Task", wp.Task)
	w.Int("WarpFactor", wp.WarpFactor)
	w.End("Waypoint")
}

func (wp *Waypoint) readXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "destination":
			wp.Destination, err = xmlfmt.Text(d, el)
		case "position":
			err = wp.Position.ReadXML(d, el)
		case "task":
			wp.Task, err = xmlfmt.Text(d, el)
		case "warpfactor":
			wp.WarpFactor, err = xmlfmt.Int(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

type Fleet struct {
	Key      uint64
	Name     string
	Owner    string
	Position Point
	// InOrbit is the name of the star the fleet orbits, empty in deep space.
	InOrbit    string
	BattlePlan string
	Fuel       int
	// Composition maps design key to ship count.
	Composition map[string]int
	Waypoints   []Waypoint
}

func (f *Fleet) Ref() FleetRef { return FleetRef{Key: f.Key} }

func (f *Fleet) WriteXML(w *xmlfmt.Writer) {
	w.Start("Fleet")
	w.Hex("Key", f.Key)
	w.String("Name", f.Name)
	w.String("Owner", f.Owner)
	f.Position.WriteXML(w, "Position")
	if f.InOrbit != "" {
		w.String("InOrbit", f.InOrbit)
	}
	w.String("BattlePlan", f.BattlePlan)
	w.Int("Fuel", f.Fuel)
	keys := make([]string, 0, len(f.Composition))
	for k := range f.Composition {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.Start("Ship")
		w.String("Design", k)
		w.Int("Count", f.Composition[k])
		w.End("Ship")
	}
	for _, wp := range f.Waypoints {
		wp.writeXML(w)
	}
	w.End("Fleet")
}

func (f *Fleet) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "key":
			f.Key, err = xmlfmt.Hex(d, el)
		case "name":
			f.Name, err = xmlfmt.Text(d, el)
		case "owner":
			f.Owner, err = xmlfmt.Text(d, el)
		case "position":
			err = f.Position.ReadXML(d, el)
		case "inorbit":
			f.InOrbit, err = xmlfmt.Text(d, el)
		case "battleplan":
			f.BattlePlan, err = xmlfmt.Text(d, el)
		case "fuel":
			f.Fuel, err = xmlfmt.Int(d, el)
		case "ship":
			var design string
			var count int
			err = xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
				var err error
				switch tag {
				case "design":
					design, err = xmlfmt.Text(d, el)
				case "count":
					count, err = xmlfmt.Int(d, el)
				default:
					err = d.Skip()
				}
				return err
			})
			if err == nil {
				if f.Composition == nil {
					f.Composition = map[string]int{}
				}
				f.Composition[design] = count
			}
		case "waypoint":
			var wp Waypoint
			if err = wp.readXML(d, el); err == nil {
				f.Waypoints = append(f.Waypoints, wp)
			}
		default:
			err = d.Skip()
		}
		return err
	})
}

// ShipCount is the total number of ships in the fleet.
func (f *Fleet) ShipCount() int {
	n := 0
	for _, c := range f.Composition {
		n += c
	}
	return n
}
