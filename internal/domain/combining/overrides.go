package combining

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// overrides implements deny-overrides and permit-overrides, which are exact
// mirrors: the overriding decision wins immediately, the opposite decision
// is collected, and Indeterminate kinds accumulate so the final error kind
// records which definite outcomes were still possible.
type overrides struct {
	id string
	// winner is the decision that short-circuits the combination.
	winner pdp.Decision
	// loser is the decision returned when at least one child produced it,
	// no child produced the winner, and no Indeterminate that could have
	// produced the winner appeared.
	loser pdp.Decision
}

func newDenyOverrides(id string) Algorithm {
	return &overrides{id: id, winner: pdp.Deny, loser: pdp.Permit}
}

func newPermitOverrides(id string) Algorithm {
	return &overrides{id: id, winner: pdp.Permit, loser: pdp.Deny}
}

func (a *overrides) ID() string { return a.id }

// Combine follows the standard deny-overrides pseudo-code, generalized over
// the winner/loser orientation.
func (a *overrides) Combine(ctx expr.EvaluationContext, children []Child) pdp.DecisionResult {
	var (
		errWinner bool // Indeterminate biased toward the winner seen
		errLoser  bool // Indeterminate biased toward the loser seen
		errBoth   bool // Indeterminate{DP} seen
		sawLoser  bool
		firstErr  pdp.Status
		collected pdp.DecisionResult
	)
	indWinner := pdp.IndeterminateFor(effectOf(a.winner))
	indLoser := pdp.IndeterminateFor(effectOf(a.loser))

	for _, child := range children {
		r := child.Evaluate(ctx)
		switch r.Decision {
		case a.winner:
			return r
		case a.loser:
			sawLoser = true
			collected.Obligations = append(collected.Obligations, r.Obligations...)
			collected.Advice = append(collected.Advice, r.Advice...)
		case pdp.NotApplicable:
			// Contributes nothing.
		case pdp.IndeterminateDP:
			errBoth = true
			rememberFirst(&firstErr, r.Status)
		case indWinner:
			errWinner = true
			rememberFirst(&firstErr, r.Status)
		case indLoser:
			errLoser = true
			rememberFirst(&firstErr, r.Status)
		}
	}

	switch {
	case errBoth, errWinner && (errLoser || sawLoser):
		return pdp.IndeterminateResult(pdp.IndeterminateDP, firstErr)
	case errWinner:
		return pdp.IndeterminateResult(indWinner, firstErr)
	case sawLoser:
		collected.Decision = a.loser
		return collected
	case errLoser:
		return pdp.IndeterminateResult(indLoser, firstErr)
	default:
		return pdp.NotApplicableResult()
	}
}

// effectOf maps a definite decision to the effect sharing its bias.
func effectOf(d pdp.Decision) pdp.Effect {
	if d == pdp.Deny {
		return pdp.EffectDeny
	}
	return pdp.EffectPermit
}

// rememberFirst keeps the status of the first Indeterminate child, which is
// the one reported when the combination itself is Indeterminate.
func rememberFirst(dst *pdp.Status, s pdp.Status) {
	if len(dst.Codes) == 0 {
		*dst = s
	}
}
