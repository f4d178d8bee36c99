package policy

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// Policy evaluates a target-gated sequence of rules reduced by a
// rule-combining algorithm, attaching its own obligations and advice to the
// combined decision.
type Policy struct {
	id          string
	version     Version
	description string
	target      *Target
	alg         combining.Algorithm
	rules       []*Rule
	variables   []*expr.Variable
	obligations []ObligationExpression
	advice      []AdviceExpression
}

// ID returns the policy identifier.
func (p *Policy) ID() string { return p.id }

// Version returns the policy version.
func (p *Policy) Version() Version { return p.version }

// Applicable reports the policy's target applicability.
func (p *Policy) Applicable(ctx expr.EvaluationContext) (combining.Applicability, pdp.Status) {
	return p.target.Applicable(ctx)
}

// Evaluate matches the target, combines the rule decisions, and attaches
// the policy's own obligations matching the outcome. A target failure is
// Indeterminate{DP}: either definite outcome was still possible.
func (p *Policy) Evaluate(ctx expr.EvaluationContext) pdp.DecisionResult {
	app, status := p.target.Applicable(ctx)
	switch app {
	case combining.NotApplicableTarget:
		return pdp.NotApplicableResult()
	case combining.IndeterminateTarget:
		return pdp.IndeterminateResult(pdp.IndeterminateDP, status)
	}

	children := make([]combining.Child, len(p.rules))
	for i, r := range p.rules {
		children[i] = r
	}
	result := p.alg.Combine(ctx, children)

	obs, advs, obStatus := collectObligations(ctx, result.Decision, p.obligations, p.advice)
	if !obStatus.OK() {
		kind := pdp.IndeterminateDP
		if effect, ok := decisionEffect(result.Decision); ok {
			kind = pdp.IndeterminateFor(effect)
		}
		return pdp.IndeterminateResult(kind, obStatus)
	}
	result.Obligations = append(result.Obligations, obs...)
	result.Advice = append(result.Advice, advs...)
	return result
}
