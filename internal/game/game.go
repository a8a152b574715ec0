// Package game holds the entities that cross the client/server boundary in
// turn files, together with their tagged-document codecs.
package game

import (
	"encoding/xml"

	"novaclient/internal/xmlfmt"
)

const (
	// Unset marks a numeric field with no known value.
	Unset = -1
	// Nobody is the owner of unowned or unknown objects.
	Nobody = "Nobody"
	// StartingYear is the turn year of the first turn of every game.
	StartingYear = 2100
)

type Point struct {
	X int
	Y int
}

func (p Point) WriteXML(w *xmlfmt.Writer, name string) {
	w.Start(name)
	w.Int("X", p.X)
	w.Int("Y", p.Y)
	w.End(name)
}

func (p *Point) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "x":
			p.X, err = xmlfmt.Int(d, el)
		case "y":
			p.Y, err = xmlfmt.Int(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

// Resources is an amount of each mineral plus energy.
type Resources struct {
	Ironium   int
	Boranium  int
	Germanium int
	Energy    int
}

func (r Resources) WriteXML(w *xmlfmt.Writer, name string) {
	w.Start(name)
	w.Int("Ironium", r.Ironium)
	w.Int("Boranium", r.Boranium)
	w.Int("Germanium", r.Germanium)
	w.Int("Energy", r.Energy)
	w.End(name)
}

func (r *Resources) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "ironium":
			r.Ironium, err = xmlfmt.Int(d, el)
		case "boranium":
			r.Boranium, err = xmlfmt.Int(d, el)
		case "germanium":
			r.Germanium, err = xmlfmt.Int(d, el)
		case "energy":
			r.Energy, err = xmlfmt.Int(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}
