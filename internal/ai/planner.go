// Package ai makes the turn decisions for a race that has no human player.
package ai

import (
	"errors"
	"fmt"
	"io"
	"log"

	"novaclient/internal/clientstate"
	"novaclient/internal/game"
	"novaclient/internal/research"
)

var ErrWrongTurn = errors.New("turn year mismatch")

type Planner struct {
	// TurnYear, when set, is the only turn the planner will act on. The
	// console passes it so a stale intel file is never answered.
	TurnYear int
	Logger   *log.Logger
}

type Decision struct {
	Topic          game.ResearchField
	TopicCost      int
	FleetsAssigned int
}

// Plan picks the next research topic and gives every fleet without a known
// battle plan the default one. It changes state and the fleets of the turn
// state absorbed, so orders built afterwards carry the decisions.
func (p *Planner) Plan(state *clientstate.ClientState) (Decision, error) {
	var d Decision
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if state.Phase() != clientstate.Ready {
		return d, fmt.Errorf("client state is %s, not ready", state.Phase())
	}
	if p.TurnYear != 0 && p.TurnYear != state.TurnYear {
		return d, fmt.Errorf("%w: asked for %d, intel is %d", ErrWrongTurn, p.TurnYear, state.TurnYear)
	}

	d.Topic, d.TopicCost = research.CheapestTopic(state.ResearchContext(state.CurrentTopic()))
	state.SetResearchTopic(d.Topic)

	if _, ok := state.BattlePlans[game.DefaultPlanName]; !ok {
		state.BattlePlans[game.DefaultPlanName] = game.DefaultBattlePlan()
	}
	for _, f := range state.PlayerFleets {
		if _, ok := state.BattlePlans[f.BattlePlan]; ok {
			continue
		}
		f.BattlePlan = game.DefaultPlanName
		d.FleetsAssigned++
	}

	logger.Printf("race=%s year=%d research=%s next_level_cost=%d fleets_assigned=%d",
		state.RaceName, state.TurnYear, d.Topic, d.TopicCost, d.FleetsAssigned)
	return d, nil
}
