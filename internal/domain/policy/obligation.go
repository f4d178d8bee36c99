package policy

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// AssignmentExpression produces one attribute assignment of an obligation
// or advice when the enclosing element's decision is reached.
type AssignmentExpression struct {
	AttributeID string
	Category    string
	Issuer      string
	Expr        expr.Expression
}

// ObligationExpression is an unevaluated obligation attached to a rule,
// policy, or policy set, emitted only when the decision equals FulfillOn.
type ObligationExpression struct {
	ID          string
	FulfillOn   pdp.Effect
	Assignments []AssignmentExpression
}

// AdviceExpression mirrors ObligationExpression for non-binding advice;
// AppliesTo plays the role of FulfillOn.
type AdviceExpression struct {
	ID          string
	AppliesTo   pdp.Effect
	Assignments []AssignmentExpression
}

// decisionEffect maps a definite decision to its effect. ok is false for
// NotApplicable and Indeterminate, which never carry obligations.
func decisionEffect(d pdp.Decision) (pdp.Effect, bool) {
	switch d {
	case pdp.Permit:
		return pdp.EffectPermit, true
	case pdp.Deny:
		return pdp.EffectDeny, true
	default:
		return 0, false
	}
}

// evaluateAssignments expands assignment expressions into concrete
// assignments. A bag-valued expression contributes one assignment per
// element; an evaluation failure aborts with its status.
func evaluateAssignments(ctx expr.EvaluationContext, exprs []AssignmentExpression) ([]pdp.AttributeAssignment, pdp.Status) {
	var out []pdp.AttributeAssignment
	for _, ae := range exprs {
		r := ae.Expr.Evaluate(ctx)
		if r.IsIndeterminate() {
			return nil, r.Status()
		}
		bag, ok := r.Bag()
		if !ok {
			return nil, pdp.NewStatus(pdp.StatusProcessingError, "assignment expression produced no value")
		}
		for _, v := range bag.Values() {
			out = append(out, pdp.AttributeAssignment{
				AttributeID: ae.AttributeID,
				Category:    ae.Category,
				Issuer:      ae.Issuer,
				Value:       v,
			})
		}
	}
	return out, pdp.Status{}
}

// collectObligations evaluates the obligation and advice expressions whose
// FulfillOn matches the decision. The returned status is non-OK when any
// matched expression fails to evaluate, which makes the enclosing element
// Indeterminate.
func collectObligations(ctx expr.EvaluationContext, decision pdp.Decision,
	obligations []ObligationExpression, advice []AdviceExpression) ([]pdp.Obligation, []pdp.Advice, pdp.Status) {

	effect, ok := decisionEffect(decision)
	if !ok {
		return nil, nil, pdp.Status{}
	}
	var obs []pdp.Obligation
	for _, oe := range obligations {
		if oe.FulfillOn != effect {
			continue
		}
		assigns, status := evaluateAssignments(ctx, oe.Assignments)
		if !status.OK() {
			return nil, nil, status
		}
		obs = append(obs, pdp.Obligation{ID: oe.ID, Assignments: assigns})
	}
	var advs []pdp.Advice
	for _, ae := range advice {
		if ae.AppliesTo != effect {
			continue
		}
		assigns, status := evaluateAssignments(ctx, ae.Assignments)
		if !status.OK() {
			return nil, nil, status
		}
		advs = append(advs, pdp.Advice{ID: ae.ID, Assignments: assigns})
	}
	return obs, advs, pdp.Status{}
}
