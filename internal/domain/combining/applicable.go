package combining

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// firstApplicable returns the first definite child decision in document
// order. Indeterminate children are skipped but remembered: the first one
// is the result when no definite decision appears at all.
type firstApplicable struct {
	id string
}

func newFirstApplicable(id string) Algorithm { return &firstApplicable{id: id} }

func (a *firstApplicable) ID() string { return a.id }

func (a *firstApplicable) Combine(ctx expr.EvaluationContext, children []Child) pdp.DecisionResult {
	var firstErr *pdp.DecisionResult
	for _, child := range children {
		r := child.Evaluate(ctx)
		switch {
		case r.Decision == pdp.Permit || r.Decision == pdp.Deny:
			return r
		case r.Decision.IsIndeterminate() && firstErr == nil:
			firstErr = &r
		}
	}
	if firstErr != nil {
		return *firstErr
	}
	return pdp.NotApplicableResult()
}

// onlyOneApplicable checks the applicability of every child first: exactly
// one applicable child yields that child's evaluation, none yields
// NotApplicable, and more than one or any applicability error yields
// Indeterminate{DP}.
type onlyOneApplicable struct {
	id string
}

func newOnlyOneApplicable(id string) Algorithm { return &onlyOneApplicable{id: id} }

func (a *onlyOneApplicable) ID() string { return a.id }

func (a *onlyOneApplicable) Combine(ctx expr.EvaluationContext, children []Child) pdp.DecisionResult {
	selected := -1
	for i, child := range children {
		app, status := child.Applicable(ctx)
		switch app {
		case IndeterminateTarget:
			return pdp.IndeterminateResult(pdp.IndeterminateDP, status)
		case ApplicableTarget:
			if selected >= 0 {
				return pdp.IndeterminateResult(pdp.IndeterminateDP,
					pdp.NewStatus(pdp.StatusProcessingError, "more than one applicable policy"))
			}
			selected = i
		}
	}
	if selected < 0 {
		return pdp.NotApplicableResult()
	}
	return children[selected].Evaluate(ctx)
}

// unless collapses NotApplicable and every Indeterminate into the default
// decision, so the combination always produces a definite answer.
type unless struct {
	id string
	// sought short-circuits the combination when a child produces it.
	sought pdp.Decision
	// fallback is the decision when no child produces sought.
	fallback pdp.Decision
}

func newDenyUnlessPermit(id string) Algorithm {
	return &unless{id: id, sought: pdp.Permit, fallback: pdp.Deny}
}

func newPermitUnlessDeny(id string) Algorithm {
	return &unless{id: id, sought: pdp.Deny, fallback: pdp.Permit}
}

func (a *unless) ID() string { return a.id }

func (a *unless) Combine(ctx expr.EvaluationContext, children []Child) pdp.DecisionResult {
	fallback := pdp.DecisionResult{Decision: a.fallback}
	for _, child := range children {
		r := child.Evaluate(ctx)
		if r.Decision == a.sought {
			return r
		}
		if r.Decision == a.fallback {
			fallback.Obligations = append(fallback.Obligations, r.Obligations...)
			fallback.Advice = append(fallback.Advice, r.Advice...)
		}
	}
	return fallback
}
