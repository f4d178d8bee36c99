package policy

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// PolicySet evaluates a target-gated sequence of child policies, policy
// sets, and references, reduced by a policy-combining algorithm.
//
// References are resolved at load time into handles on already-built
// evaluators; the reference chain was cycle- and depth-checked then, so
// evaluation never rewalks the graph.
type PolicySet struct {
	id          string
	version     Version
	description string
	target      *Target
	alg         combining.Algorithm
	children    []combining.Child
	obligations []ObligationExpression
	advice      []AdviceExpression

	// downstream is the longest chain of policy-set references below
	// this set (the referenced ids, outermost first), so a joining
	// referrer can check depth without rewalking the graph.
	downstream []string
}

// ID returns the policy-set identifier.
func (s *PolicySet) ID() string { return s.id }

// Version returns the policy-set version.
func (s *PolicySet) Version() Version { return s.version }

// LongestReferenceChain is the length of the longest chain of policy-set
// references reachable below this set.
func (s *PolicySet) LongestReferenceChain() int { return len(s.downstream) }

// DownstreamChain is the longest chain of referenced policy-set ids below
// this set, outermost first.
func (s *PolicySet) DownstreamChain() []string { return s.downstream }

// Applicable reports the policy set's target applicability.
func (s *PolicySet) Applicable(ctx expr.EvaluationContext) (combining.Applicability, pdp.Status) {
	return s.target.Applicable(ctx)
}

// Evaluate mirrors Policy.Evaluate with policy-combining children.
func (s *PolicySet) Evaluate(ctx expr.EvaluationContext) pdp.DecisionResult {
	app, status := s.target.Applicable(ctx)
	switch app {
	case combining.NotApplicableTarget:
		return pdp.NotApplicableResult()
	case combining.IndeterminateTarget:
		return pdp.IndeterminateResult(pdp.IndeterminateDP, status)
	}

	result := s.alg.Combine(ctx, s.children)

	obs, advs, obStatus := collectObligations(ctx, result.Decision, s.obligations, s.advice)
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
