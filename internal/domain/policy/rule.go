package policy

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// Rule is the leaf evaluator: a target, an optional boolean condition, and
// the effect produced when both hold.
type Rule struct {
	id          string
	effect      pdp.Effect
	target      *Target
	condition   expr.Expression
	obligations []ObligationExpression
	advice      []AdviceExpression
}

// ID returns the rule identifier.
func (r *Rule) ID() string { return r.id }

// Effect returns the rule's effect.
func (r *Rule) Effect() pdp.Effect { return r.effect }

// Applicable reports the rule's target applicability.
func (r *Rule) Applicable(ctx expr.EvaluationContext) (combining.Applicability, pdp.Status) {
	return r.target.Applicable(ctx)
}

// Evaluate produces the rule's decision: the effect when target and
// condition hold, NotApplicable when either misses, and Indeterminate
// biased toward the effect when either fails.
func (r *Rule) Evaluate(ctx expr.EvaluationContext) pdp.DecisionResult {
	app, status := r.target.Applicable(ctx)
	switch app {
	case combining.NotApplicableTarget:
		return pdp.NotApplicableResult()
	case combining.IndeterminateTarget:
		return pdp.IndeterminateResult(pdp.IndeterminateFor(r.effect), status)
	}

	if r.condition != nil {
		ok, condStatus := expr.EvaluateBoolean(r.condition, ctx)
		if !condStatus.OK() {
			return pdp.IndeterminateResult(pdp.IndeterminateFor(r.effect), condStatus)
		}
		if !ok {
			return pdp.NotApplicableResult()
		}
	}

	decision := pdp.Permit
	if r.effect == pdp.EffectDeny {
		decision = pdp.Deny
	}
	obs, advs, obStatus := collectObligations(ctx, decision, r.obligations, r.advice)
	if !obStatus.OK() {
		return pdp.IndeterminateResult(pdp.IndeterminateFor(r.effect), obStatus)
	}
	return pdp.DecisionResult{Decision: decision, Obligations: obs, Advice: advs}
}
