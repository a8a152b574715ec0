package game

import (
	"encoding/xml"

	"novaclient/internal/xmlfmt"
)

// Range is an inclusive habitability band.
type Range struct {
	Min int
	Max int
}

func (r Range) WriteXML(w *xmlfmt.Writer, name string) {
	w.Start(name)
	w.Int("Min", r.Min)
	w.Int("Max", r.Max)
	w.End(name)
}

func (r *Range) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "min":
			r.Min, err = xmlfmt.Int(d, el)
		case "max":
			r.Max, err = xmlfmt.Int(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

type Race struct {
	Name            string
	PluralName      string
	PrimaryTrait    string
	SecondaryTraits []string
	GrowthRate      int

	Gravity     Range
	Radiation   Range
	Temperature Range

	// ResearchCosts is the cost factor percentage per field.
	ResearchCosts TechLevel
}

// NewRace returns a race with every research field at the standard cost.
func NewRace() Race {
	return Race{
		ResearchCosts: TechLevel{100, 100, 100, 100, 100, 100},
	}
}

func (r Race) WriteXML(w *xmlfmt.Writer) {
	w.Start("Race")
	w.String("Name", r.Name)
	w.String("PluralName", r.PluralName)
	w.String("PrimaryTrait", r.PrimaryTrait)
	if len(r.SecondaryTraits) > 0 {
		w.Start("SecondaryTraits")
		for _, t := range r.SecondaryTraits {
			w.String("Trait", t)
		}
		w.End("SecondaryTraits")
	}
	w.Int("GrowthRate", r.GrowthRate)
	r.Gravity.WriteXML(w, "Gravity")
	r.Radiation.WriteXML(w, "Radiation")
	r.Temperature.WriteXML(w, "Temperature")
	r.ResearchCosts.WriteXML(w, "ResearchCosts")
	w.End("Race")
}

func (r *Race) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "name":
			r.Name, err = xmlfmt.Text(d, el)
		case "pluralname":
			r.PluralName, err = xmlfmt.Text(d, el)
		case "primarytrait":
			r.PrimaryTrait, err = xmlfmt.Text(d, el)
		case "secondarytraits":
			r.SecondaryTraits = r.SecondaryTraits[:0]
			err = xmlfmt.Children(d, el, func(tag string, el xml.StartElement) error {
				if tag != "trait" {
					return d.Skip()
				}
				t, err := xmlfmt.Text(d, el)
				if err != nil {
					return err
				}
				r.SecondaryTraits = append(r.SecondaryTraits, t)
				return nil
			})
		case "growthrate":
			r.GrowthRate, err = xmlfmt.Int(d, el)
		case "gravity":
			err = r.Gravity.ReadXML(d, el)
		case "radiation":
			err = r.Radiation.ReadXML(d, el)
		case "temperature":
			err = r.Temperature.ReadXML(d, el)
		case "researchcosts":
			err = r.ResearchCosts.ReadXML(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

// HasTrait reports whether the race carries t as its primary or a secondary trait.
func (r Race) HasTrait(t string) bool {
	if r.PrimaryTrait == t {
		return true
	}
	for _, s := range r.SecondaryTraits {
		if s == t {
			return true
		}
	}
	return false
}
