package game

import (
	"encoding/xml"
	"fmt"
	"strings"

	"novaclient/internal/xmlfmt"
)

const DefaultPlanName = "Default"

type BattlePlan struct {
	Name            string
	PrimaryTarget   string
	SecondaryTarget string
	Tactic          string
	Attack          string
}

func DefaultBattlePlan() *BattlePlan {
	return &BattlePlan{
		Name:            DefaultPlanName,
		PrimaryTarget:   "Armed Ships",
		SecondaryTarget: "Any",
		Tactic:          "Maximise Damage",
		Attack:          "Enemies",
	}
}

func (p *BattlePlan) WriteXML(w *xmlfmt.Writer) {
	w.Start("BattlePlan")
	w.String("Name", p.Name)
	w.String("PrimaryTarget", p.PrimaryTarget)
	w.String("SecondaryTarget", p.SecondaryTarget)
	w.String("Tactic", p.Tactic)
	w.String("Attack", p.Attack)
	w.End("BattlePlan")
}

func (p *BattlePlan) ReadXML(d *xml.Decoder, start xml.StartElement) error {
	return xmlfmt.Children(d, start, func(tag string, el xml.StartElement) error {
		var err error
		switch tag {
		case "name":
			p.Name, err = xmlfmt.Text(d, el)
		case "primarytarget":
			p.PrimaryTarget, err = xmlfmt.Text(d, el)
		case "secondarytarget":
			p.SecondaryTarget, err = xmlfmt.Text(d, el)
		case "tactic":
			p.Tactic, err = xmlfmt.Text(d, el)
		case "attack":
			p.Attack, err = xmlfmt.Text(d, el)
		default:
			err = d.Skip()
		}
		return err
	})
}

// PlayerRelation is the diplomatic stance towards another race.
type PlayerRelation int

const (
	Neutral PlayerRelation = iota
	Friend
	Enemy
)

func (r PlayerRelation) String() string {
	switch r {
	case Neutral:
		return "Neutral"
	case Friend:
		return "Friend"
	case Enemy:
		return "Enemy"
	}
	return fmt.Sprintf("PlayerRelation(%d)", int(r))
}

func ParsePlayerRelation(s string) (PlayerRelation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "neutral":
		return Neutral, nil
	case "friend":
		return Friend, nil
	case "enemy":
		return Enemy, nil
	}
	return Neutral, fmt.Errorf("unknown player relation %q", s)
}
