package game

import (
	"encoding/xml"

	"novaclient/internal/xmlfmt"
)

const (
	DesignShip     = "Ship"
	DesignStarbase = "Starbase"
)

type Module struct {
	Component string
	Count     int
}

// Design is a buildable design. Ship and starbase designs additionally carry
// a hull and module list and are written as ShipDesign elements.
type Design struct {
	Key   string
	Name  string
	Owner string
	Type  string
	Mass  int
	Cost  Resources

	Hull    string
	Modules []Module
}

// DesignKey builds the key a design is stored under.
func DesignKey(owner, name string) string {
	return owner + "/" + name
}

func (ds *Design) IsShip() bool {
	return ds.Type == DesignShip || ds.Type == DesignStarbase
}

func (ds *Design) ElementName() string {
	if ds.IsShip() {
		return "ShipDesign"
	}
	return "Design"
}

func (ds *Design) WriteXML(w *xmlfmt.Writer) {
	name := ds.ElementName()
	w.Start(name)
	w.String("Key", ds.Key)
	w.String("Name", ds.Name)
	w.String("Owner", ds.Owner)
	w.String("Type", ds.Type)
	w.Int("Mass", ds.Mass)
	ds.Cost.WriteXML(w, "Cost")
	if ds.IsShip() {
		w.String("Hull", ds.Hull)
		for _, m := range ds.Modules {
			w.Start("Module")
			w.String("Component", m.Component)
			w.Int("Count", m.Count)
			w.End("Module")
		}
	}
	w.End(name)
}

func (ds *Design) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	err := xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "key":
			ds.Key, err = xmlfmt.Text(d, el)
		case "name":
			ds.Name, err = xmlfmt.Text(d, el)
		case "owner":
			ds.Owner, err = xmlfmt.Text(d, el)
		case "type":
			ds.Type, err = xmlfmt.Text(d, el)
		case "mass":
			ds.Mass, err = xmlfmt.Int(d, el)
		case "cost":
			err = ds.Cost.ReadXML(d, el)
		case "hull":
			ds.Hull, err = xmlfmt.Text(d, el)
		case "module":
			var m Module
			err = xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
				var err error
				switch tag {
				case "component":
					m.Component, err = xmlfmt.Text(d, el)
				case "count":
					m.Count, err = xmlfmt.Int(d, el)
				default:
					err = d.Skip()
				}
				return err
			})
			if err == nil {
				ds.Modules = append(ds.Modules, m)
			}
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return err
	}
	if ds.Key == "" {
		ds.Key = DesignKey(ds.Owner, ds.Name)
	}
	return nil
}
