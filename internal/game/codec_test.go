package game

import (
	"bytes"
	"encoding/xml"
	"reflect"
	"strings"
	"testing"

	"novaclient/internal/xmlfmt"
)

func firstElement(t *testing.T, d *xml.Decoder) xml.StartElement {
	t.Helper()
	for {
		tok, err := d.Token()
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se
		}
	}
}

func TestStar_OmitsStarbaseWhenAbsent(t *testing.T) {
	s := NewStar()
	s.Name = "Sol"

	var buf bytes.Buffer
	w := xmlfmt.NewWriter(&buf)
	s.WriteXML(w)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if strings.Contains(buf.String(), "<Starbase>") {
		t.Fatalf("starbase element written for star without starbase:\n%s", buf.String())
	}

	s.Starbase = &FleetRef{Key: 0x2a}
	buf.Reset()
	w = xmlfmt.NewWriter(&buf)
	s.WriteXML(w)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !strings.Contains(buf.String(), "<Starbase>2A</Starbase>") {
		t.Fatalf("starbase not written as hex key:\n%s", buf.String())
	}
}

func TestStar_RoundTrip(t *testing.T) {
	in := NewStar()
	in.Name = "Alpha Centauri"
	in.Position = Point{X: 120, Y: -40}
	in.Owner = "Alice"
	in.Year = 2104
	in.MineralConcentration = Resources{Ironium: 55, Boranium: 12, Germanium: 80}
	in.Gravity = 50
	in.Radiation = 33
	in.Temperature = 71
	in.Colonists = 25000
	in.HasFleetsInOrbit = true
	in.Starbase = &FleetRef{Key: 0x10000001}
	in.Factories = 10
	in.ProductionQueue = []ProductionItem{{Name: "Factory", Quantity: 5}}

	var buf bytes.Buffer
	w := xmlfmt.NewWriter(&buf)
	in.WriteXML(w)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	d := xml.NewDecoder(&buf)
	out := NewStar()
	if err := out.ReadXML(d, firstElement(t, d)); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", out, in)
	}
}

func TestTechLevel_ReadIsCaseInsensitive(t *testing.T) {
	doc := `<researchcosts><ENERGY>150</ENERGY><weapons>50</weapons><Unknown>1</Unknown></researchcosts>`
	d := xml.NewDecoder(strings.NewReader(doc))
	var tl TechLevel
	if err := tl.ReadXML(d, firstElement(t, d)); err != nil {
		t.Fatalf("read: %v", err)
	}
	want := NewTechLevel(0, 0, 150, 0, 50, 0)
	if tl != want {
		t.Fatalf("tech level=%v want %v", tl, want)
	}
	if tl.Sum() != 200 {
		t.Fatalf("sum=%d want 200", tl.Sum())
	}
}

func TestDesign_ElementNameFollowsType(t *testing.T) {
	cases := []struct {
		typ  string
		want string
	}{
		{DesignShip, "ShipDesign"},
		{DesignStarbase, "ShipDesign"},
		{"Mine", "Design"},
	}
	for _, c := range cases {
		ds := &Design{Type: c.typ}
		if got := ds.ElementName(); got != c.want {
			t.Fatalf("type %s: element=%s want %s", c.typ, got, c.want)
		}
	}
}

func TestDesign_ReadDerivesMissingKey(t *testing.T) {
	doc := `<ShipDesign><Name>Scout</Name><Owner>Bob</Owner><Type>Ship</Type><Hull>Scout</Hull><Module><Component>Quick Jump 5</Component><Count>1</Count></Module></ShipDesign>`
	d := xml.NewDecoder(strings.NewReader(doc))
	var ds Design
	if err := ds.ReadXML(d, firstElement(t, d)); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ds.Key != "Bob/Scout" {
		t.Fatalf("key=%q want %q", ds.Key, "Bob/Scout")
	}
	if len(ds.Modules) != 1 || ds.Modules[0].Component != "Quick Jump 5" {
		t.Fatalf("modules=%+v", ds.Modules)
	}
}

func TestParsePlayerRelation(t *testing.T) {
	for _, r := range []PlayerRelation{Neutral, Friend, Enemy} {
		got, err := ParsePlayerRelation(r.String())
		if err != nil || got != r {
			t.Fatalf("parse %s: got=%v err=%v", r, got, err)
		}
	}
	if _, err := ParsePlayerRelation("ally"); err == nil {
		t.Fatalf("expected error for unknown relation")
	}
}
