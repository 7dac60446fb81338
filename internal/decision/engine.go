package decision

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"stock-research-agent/internal/types"
)

// ErrMissingIndicator is returned when a required indicator key is absent
// from the input mapping. This is a caller contract violation, not a data
// quality problem: a present key with a nil value (MACD on short histories)
// is legitimate.
var ErrMissingIndicator = errors.New("missing required indicators: need rsi, ma20, macd")

// Inputs maps indicator names to values. MACD may map to nil when the price
// history was too short to compute it.
type Inputs map[string]*float64

// FromSnapshot converts an IndicatorSnapshot into the engine's input mapping.
func FromSnapshot(s types.IndicatorSnapshot) Inputs {
	rsi, ma20 := s.RSI, s.MA20
	return Inputs{"rsi": &rsi, "ma20": &ma20, "macd": s.MACD}
}

var requiredKeys = []string{"rsi", "ma20", "macd"}

// state is the working value a rule cascade mutates as rules fire.
type state struct {
	rsi     float64
	macd    *float64
	score   *float64 // sentiment overall score, nil when no aggregate supplied
	action  string
	conf    float64
	reasons []string
}

func (st *state) say(clause string) {
	st.reasons = append(st.reasons, clause)
}

// rule is one guard/effect pair. Rules within a stage are mutually exclusive:
// the first guard that matches fires and ends the stage.
type rule struct {
	name   string
	guard  func(*state) bool
	effect func(*state)
}

func runStage(rules []rule, st *state) {
	for _, r := range rules {
		if r.guard(st) {
			r.effect(st)
			return
		}
	}
}

// baseRules pick the action from RSI thresholds.
var baseRules = []rule{
	{
		name:  "rsi-oversold",
		guard: func(st *state) bool { return st.rsi < 30 },
		effect: func(st *state) {
			st.action = types.ActionBuy
			st.conf = 0.8
			st.say(fmt.Sprintf("RSI %.1f indicates oversold condition", st.rsi))
		},
	},
	{
		name:  "rsi-overbought",
		guard: func(st *state) bool { return st.rsi > 70 },
		effect: func(st *state) {
			st.action = types.ActionSell
			st.conf = 0.8
			st.say(fmt.Sprintf("RSI %.1f indicates overbought condition", st.rsi))
		},
	},
	{
		name:  "rsi-neutral",
		guard: func(st *state) bool { return true },
		effect: func(st *state) {
			st.action = types.ActionHold
			st.conf = 0.5
			st.say(fmt.Sprintf("RSI %.1f is in neutral zone", st.rsi))
		},
	},
}

// macdRules adjust confidence within the branch the base rule selected.
var macdRules = []rule{
	{
		name:  "buy-momentum-confirms",
		guard: func(st *state) bool { return st.action == types.ActionBuy && st.macd != nil && *st.macd > 0 },
		effect: func(st *state) {
			st.conf = 0.9
			st.say(" and MACD shows positive momentum")
		},
	},
	{
		name:  "sell-momentum-confirms",
		guard: func(st *state) bool { return st.action == types.ActionSell && st.macd != nil && *st.macd < 0 },
		effect: func(st *state) {
			st.conf = 0.9
			st.say(" and MACD shows negative momentum")
		},
	},
	{
		name:  "hold-bullish-bias",
		guard: func(st *state) bool { return st.action == types.ActionHold && st.macd != nil && *st.macd > 0.01 },
		effect: func(st *state) {
			st.conf = 0.6
			st.say(" with slight bullish bias (positive MACD)")
		},
	},
	{
		name:  "hold-bearish-bias",
		guard: func(st *state) bool { return st.action == types.ActionHold && st.macd != nil && *st.macd < -0.01 },
		effect: func(st *state) {
			st.conf = 0.6
			st.say(" with slight bearish bias (negative MACD)")
		},
	},
	{
		name:  "hold-macd-absent",
		guard: func(st *state) bool { return st.action == types.ActionHold && st.macd == nil },
		effect: func(st *state) {
			st.say(" (MACD unavailable - need 26+ data points)")
		},
	},
	{
		name:  "macd-absent",
		guard: func(st *state) bool { return st.macd == nil },
		effect: func(st *state) {
			st.say(" (MACD unavailable - insufficient data)")
		},
	},
}

// fusionRules fold a supplied news-sentiment aggregate into the decision.
// Evaluated in priority order, first match wins.
var fusionRules = []rule{
	{
		name: "sentiment-confirms",
		guard: func(st *state) bool {
			return st.score != nil &&
				((st.action == types.ActionBuy && *st.score > 0.2) ||
					(st.action == types.ActionSell && *st.score < -0.2))
		},
		effect: func(st *state) {
			st.conf = math.Min(0.95, st.conf+0.1)
			st.say(fmt.Sprintf("; news sentiment (score %.2f) reinforces the signal", *st.score))
		},
	},
	{
		name:  "sentiment-contradicts-buy",
		guard: func(st *state) bool { return st.score != nil && st.action == types.ActionBuy && *st.score < -0.4 },
		effect: func(st *state) {
			st.action = types.ActionHold
			st.conf = math.Max(0.4, st.conf-0.3)
			st.say(fmt.Sprintf("; strongly negative news sentiment (score %.2f) contradicts the buy signal, downgraded to HOLD", *st.score))
		},
	},
	{
		name:  "sentiment-contradicts-sell",
		guard: func(st *state) bool { return st.score != nil && st.action == types.ActionSell && *st.score > 0.4 },
		effect: func(st *state) {
			st.action = types.ActionHold
			st.conf = math.Max(0.4, st.conf-0.3)
			st.say(fmt.Sprintf("; strongly positive news sentiment (score %.2f) contradicts the sell signal, downgraded to HOLD", *st.score))
		},
	},
	{
		name:  "sentiment-promotes-buy",
		guard: func(st *state) bool { return st.score != nil && st.action == types.ActionHold && *st.score > 0.5 },
		effect: func(st *state) {
			st.action = types.ActionBuy
			st.conf = 0.6
			st.say(fmt.Sprintf("; strongly positive news sentiment (score %.2f) breaks the tie toward BUY", *st.score))
		},
	},
	{
		name:  "sentiment-promotes-sell",
		guard: func(st *state) bool { return st.score != nil && st.action == types.ActionHold && *st.score < -0.5 },
		effect: func(st *state) {
			st.action = types.ActionSell
			st.conf = 0.6
			st.say(fmt.Sprintf("; strongly negative news sentiment (score %.2f) breaks the tie toward SELL", *st.score))
		},
	},
}

// Decide applies the rule cascade to the given indicators and, optionally, a
// news-sentiment aggregate. Pure function: same inputs, same decision.
func Decide(in Inputs, sentiment *types.SentimentAggregate) (types.Decision, error) {
	for _, k := range requiredKeys {
		if _, ok := in[k]; !ok {
			return types.Decision{}, ErrMissingIndicator
		}
	}

	st := &state{
		rsi:  *in["rsi"],
		macd: in["macd"],
	}
	if sentiment != nil {
		score := sentiment.OverallScore
		st.score = &score
	}

	runStage(baseRules, st)
	runStage(macdRules, st)
	runStage(fusionRules, st)

	return types.Decision{
		Action:     st.action,
		Confidence: math.Round(st.conf*100) / 100,
		Reason:     strings.Join(st.reasons, ""),
	}, nil
}
