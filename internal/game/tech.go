package game

import (
	"encoding/xml"
	"fmt"
	"strings"

	"novaclient/internal/xmlfmt"
)

type ResearchField int

const (
	Biotechnology ResearchField = iota
	Electronics
	Energy
	Propulsion
	Weapons
	Construction

	NumResearchFields = 6
)

var fieldNames = [NumResearchFields]string{
	"Biotechnology",
	"Electronics",
	"Energy",
	"Propulsion",
	"Weapons",
	"Construction",
}

func (f ResearchField) String() string {
	if f < 0 || int(f) >= NumResearchFields {
		return fmt.Sprintf("ResearchField(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseResearchField accepts a field name in any case.
func ParseResearchField(s string) (ResearchField, error) {
	for i, n := range fieldNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return ResearchField(i), nil
		}
	}
	return 0, fmt.Errorf("unknown research field %q", s)
}

func ResearchFields() []ResearchField {
	out := make([]ResearchField, NumResearchFields)
	for i := range out {
		out[i] = ResearchField(i)
	}
	return out
}

// TechLevel holds one value per research field. Depending on use that value
// is a level reached, resources spent, a cost factor percentage or a topic
// selection flag.
type TechLevel [NumResearchFields]int

func NewTechLevel(bio, elec, energy, prop, weap, cons int) TechLevel {
	return TechLevel{bio, elec, energy, prop, weap, cons}
}

func (t TechLevel) Get(f ResearchField) int { return t[f] }

func (t *TechLevel) Set(f ResearchField, v int) { t[f] = v }

func (t *TechLevel) Zero() { *t = TechLevel{} }

func (t TechLevel) Sum() int {
	total := 0
	for _, v := range t {
		total += v
	}
	return total
}

// AtLeast reports whether every field of t is >= the matching field of req.
func (t TechLevel) AtLeast(req TechLevel) bool {
	for i := range t {
		if t[i] < req[i] {
			return false
		}
	}
	return true
}

func (t TechLevel) WriteXML(w *xmlfmt.Writer, name string) {
	w.Start(name)
	for i, v := range t {
		w.Int(fieldNames[i], v)
	}
	w.End(name)
}

func (t *TechLevel) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		f, err := ParseResearchField(tag)
		if err != nil {
			return d.Skip()
		}
		v, err := xmlfmt.Int(d, el)
		if err != nil {
			return err
		}
		t[f] = v
		return nil
	})
}
