package intel

import (
	"encoding/xml"

	"novaclient/internal/game"
	"novaclient/internal/xmlfmt"
)

// StarIntel is what one race knows about one star.
type StarIntel struct {
	Year     int
	Name     string
	Position game.Point

	Owner                string
	MineralConcentration game.Resources
	Gravity              int
	Radiation            int
	Temperature          int
	Starbase             *game.FleetRef
	HasFleetsInOrbit     bool

	Colonists int
}

func NewStarIntel() *StarIntel {
	si := &StarIntel{}
	si.Clear()
	return si
}

// NewStarIntelFrom builds a report of star observed at scan in year.
func NewStarIntelFrom(star *game.Star, scan ScanLevel, year int) *StarIntel {
	si := NewStarIntel()
	si.Update(star, scan, year)
	return si
}

func (si *StarIntel) Key() string { return si.Name }

// Clear resets every field to its unknown value.
func (si *StarIntel) Clear() {
	*si = StarIntel{
		Year:        game.Unset,
		Owner:       game.Nobody,
		Gravity:     game.Unset,
		Radiation:   game.Unset,
		Temperature: game.Unset,
		Colonists:   game.Unset,
	}
}

// Update replaces the record with what an observation of star at scan in year
// discloses. It returns false, leaving the record untouched, when there was
// no observation or when year is older than the year already recorded.
//
// An accepted update is computed from this observation alone: a field the
// scan level does not disclose goes back to unknown even if an earlier, better
// scan had filled it.
func (si *StarIntel) Update(star *game.Star, scan ScanLevel, year int) bool {
	if star == nil {
		return false
	}
	if year < si.Year {
		return false
	}

	si.Clear()
	si.Year = year

	if Visible(scan, Identity) {
		si.Name = star.Name
		si.Position = star.Position
	}
	if Visible(scan, Surface) {
		si.Owner = star.Owner
		si.MineralConcentration = star.MineralConcentration
		si.Gravity = star.Gravity
		si.Radiation = star.Radiation
		si.Temperature = star.Temperature
		si.HasFleetsInOrbit = star.HasFleetsInOrbit
		if star.Starbase != nil {
			ref := *star.Starbase
			si.Starbase = &ref
		}
	}
	if Visible(scan, Population) {
		si.Colonists = star.Colonists
	}
	return true
}

func (si *StarIntel) WriteXML(w *xmlfmt.Writer) {
	w.Start("StarIntel")
	w.String("Name", si.Name)
	si.Position.WriteXML(w, "Position")
	w.String("Owner", si.Owner)
	w.Int("Year", si.Year)
	si.MineralConcentration.WriteXML(w, "MineralConcentration")
	w.Int("Gravity", si.Gravity)
	w.Int("Radiation", si.Radiation)
	w.Int("Temperature", si.Temperature)
	w.Int("Colonists", si.Colonists)
	w.Bool("HasFleetsInOrbit", si.HasFleetsInOrbit)
	if si.Starbase != nil {
		w.Hex("Starbase", si.Starbase.Key)
	}
	w.End("StarIntel")
}

// ReadXML fills the record from a StarIntel element. Fields missing from the
// element keep their current values, so callers normally start from
// NewStarIntel.
func (si *StarIntel) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "name":
			si.Name, err = xmlfmt.Text(d, el)
		case "position":
			err = si.Position.ReadXML(d, el)
		case "owner":
			si.Owner, err = xmlfmt.Text(d, el)
		case "year":
			si.Year, err = xmlfmt.Int(d, el)
		case "mineralconcentration":
			err = si.MineralConcentration.ReadXML(d, el)
		case "gravity":
			si.Gravity, err = xmlfmt.Int(d, el)
		case "radiation":
			si.Radiation, err = xmlfmt.Int(d, el)
		case "temperature":
			si.Temperature, err = xmlfmt.Int(d, el)
		case "colonists":
			si.Colonists, err = xmlfmt.Int(d, el)
		case "hasfleetsinorbit":
			si.HasFleetsInOrbit, err = xmlfmt.Bool(d, el)
		case "starbase":
			var k uint64
			if k, err = xmlfmt.Hex(d, el); err == nil {
				si.Starbase = &game.FleetRef{Key: k}
			}
		default:
			err = d.Skip()
		}
		return err
	})
}
