package intel

import (
	"bytes"
	"encoding/xml"
	"reflect"
	"testing"

	"novaclient/internal/game"
	"novaclient/internal/xmlfmt"
)

func observedStar() *game.Star {
	s := game.NewStar()
	s.Name = "Rigel"
	s.Position = game.Point{X: 310, Y: 95}
	s.Owner = "Bob"
	s.Year = 2103
	s.MineralConcentration = game.Resources{Ironium: 40, Boranium: 20, Germanium: 60}
	s.Gravity = 48
	s.Radiation = 12
	s.Temperature = 66
	s.Colonists = 120000
	s.HasFleetsInOrbit = true
	s.Starbase = &game.FleetRef{Key: 0x7f}
	return s
}

func TestVisible_Monotonic(t *testing.T) {
	levels := []ScanLevel{None, InScan, InPlace, InDeepScan, Owned}
	for _, g := range []FieldGroup{Identity, Surface, Population} {
		for i := 1; i < len(levels); i++ {
			if Visible(levels[i-1], g) && !Visible(levels[i], g) {
				t.Fatalf("group %d visible at %s but not at %s", g, levels[i-1], levels[i])
			}
		}
	}
	if !Visible(None, Identity) {
		t.Fatalf("identity must always be visible")
	}
	if Visible(InScan, Surface) || !Visible(InPlace, Surface) {
		t.Fatalf("surface threshold is InPlace")
	}
	if Visible(InPlace, Population) || !Visible(InDeepScan, Population) {
		t.Fatalf("population threshold is InDeepScan")
	}
}

func TestNewStarIntel_IsReset(t *testing.T) {
	si := NewStarIntel()
	if si.Year != game.Unset || si.Owner != game.Nobody || si.Colonists != game.Unset ||
		si.Gravity != game.Unset || si.Starbase != nil || si.HasFleetsInOrbit {
		t.Fatalf("not reset: %+v", si)
	}
}

func TestUpdate_NilStarIsNoop(t *testing.T) {
	si := NewStarIntel()
	si.Update(observedStar(), InDeepScan, 2103)
	before := *si
	if si.Update(nil, Owned, 2110) {
		t.Fatalf("nil star accepted")
	}
	if !reflect.DeepEqual(before, *si) {
		t.Fatalf("nil star changed record: got=%+v want %+v", *si, before)
	}
}

// Update compares the incoming year with the year held before the record is
// reset, so an older observation never overwrites a newer one.
func TestUpdate_RejectsOlderYear(t *testing.T) {
	si := NewStarIntel()
	star := observedStar()

	if !si.Update(star, InDeepScan, 5) {
		t.Fatalf("year 5 rejected")
	}
	if si.Update(star, InScan, 3) {
		t.Fatalf("year 3 accepted after year 5")
	}
	if si.Year != 5 {
		t.Fatalf("year=%d want 5", si.Year)
	}
	if si.Colonists != star.Colonists || si.Owner != star.Owner {
		t.Fatalf("stale update erased knowledge: %+v", si)
	}
}

func TestUpdate_SameYearAccepted(t *testing.T) {
	si := NewStarIntel()
	star := observedStar()
	si.Update(star, InScan, 2103)
	if !si.Update(star, InDeepScan, 2103) {
		t.Fatalf("same year rejected")
	}
	if si.Colonists != star.Colonists {
		t.Fatalf("colonists=%d want %d", si.Colonists, star.Colonists)
	}
}

func TestUpdate_FieldsFollowScanLevel(t *testing.T) {
	star := observedStar()
	cases := []struct {
		scan       ScanLevel
		surface    bool
		population bool
	}{
		{None, false, false},
		{InScan, false, false},
		{InPlace, true, false},
		{InDeepScan, true, true},
		{Owned, true, true},
	}
	for _, c := range cases {
		si := NewStarIntelFrom(star, c.scan, 2104)
		if si.Name != star.Name || si.Position != star.Position {
			t.Fatalf("%s: identity not copied: %+v", c.scan, si)
		}
		if si.Year != 2104 {
			t.Fatalf("%s: year=%d want 2104", c.scan, si.Year)
		}
		gotSurface := si.Owner == star.Owner && si.Gravity == star.Gravity && si.Starbase != nil
		if gotSurface != c.surface {
			t.Fatalf("%s: surface copied=%v want %v", c.scan, gotSurface, c.surface)
		}
		if (si.Colonists == star.Colonists) != c.population {
			t.Fatalf("%s: colonists=%d", c.scan, si.Colonists)
		}
	}
}

func TestUpdate_LowerScanDegradesKnowledge(t *testing.T) {
	si := NewStarIntel()
	star := observedStar()
	si.Update(star, InDeepScan, 2103)
	si.Update(star, InScan, 2104)
	if si.Owner != game.Nobody || si.Colonists != game.Unset || si.Starbase != nil {
		t.Fatalf("later shallow scan kept old fields: %+v", si)
	}
}

func TestUpdate_StarbaseCopiedByValue(t *testing.T) {
	star := observedStar()
	si := NewStarIntelFrom(star, InPlace, 2103)
	star.Starbase.Key = 0x99
	if si.Starbase.Key != 0x7f {
		t.Fatalf("starbase shared with source: got=%X want 7F", si.Starbase.Key)
	}
}

func TestStarIntel_RoundTrip(t *testing.T) {
	for _, scan := range []ScanLevel{InPlace, InDeepScan} {
		in := NewStarIntelFrom(observedStar(), scan, 2103)

		var buf bytes.Buffer
		w := xmlfmt.NewWriter(&buf)
		in.WriteXML(w)
		if err := w.Flush(); err != nil {
			t.Fatalf("flush: %v", err)
		}

		d := xml.NewDecoder(&buf)
		var start xml.StartElement
		for {
			tok, err := d.Token()
			if err != nil {
				t.Fatalf("token: %v", err)
			}
			if se, ok := tok.(xml.StartElement); ok {
				start = se
				break
			}
		}
		out := NewStarIntel()
		if err := out.ReadXML(d, start); err != nil {
			t.Fatalf("%s: read: %v", scan, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("%s: round trip mismatch:\n got=%+v\nwant=%+v", scan, out, in)
		}
	}
}
