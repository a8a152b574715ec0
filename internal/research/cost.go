// Package research prices tech levels for a race.
package research

import "novaclient/internal/game"

// Context is everything a cost lookup depends on. Callers build it from the
// client state; nothing here reads global state.
type Context struct {
	Levels      game.TechLevel
	CostFactors game.TechLevel
	Topic       game.ResearchField
}

// Cost is the price of reaching level in ctx.Topic. Every level already held,
// in any field, makes research dearer.
func Cost(ctx Context, level int) int {
	techAdjustment := 10 * ctx.Levels.Sum()
	base := 10*Fibonacci(level+5) + techAdjustment
	return base * ctx.CostFactors.Get(ctx.Topic) / 100
}

// Fibonacci returns fib(n) with fib(0)=0 and fib(1)=1. n<=0 yields 0.
func Fibonacci(n int) int {
	if n <= 0 {
		return 0
	}
	a, b := 0, 1
	for i := 1; i < n; i++ {
		a, b = b, a+b
	}
	return b
}

// NextCost is the price of the next level in ctx.Topic.
func NextCost(ctx Context) int {
	return Cost(ctx, ctx.Levels.Get(ctx.Topic)+1)
}

// CheapestTopic picks the field whose next level costs least. Ties go to the
// field listed first.
func CheapestTopic(ctx Context) (game.ResearchField, int) {
	best, bestCost := game.Biotechnology, -1
	for _, f := range game.ResearchFields() {
		c := ctx
		c.Topic = f
		cost := NextCost(c)
		if bestCost < 0 || cost < bestCost {
			best, bestCost = f, cost
		}
	}
	return best, bestCost
}
