// Package combining implements the XACML 3.0 rule- and policy-combining
// algorithms and their registry.
package combining

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// Algorithm identifier namespaces. The same semantics are registered under
// both the rule- and policy-combining URN where the standard defines both.
const (
	rule10   = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:"
	policy10 = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:"
	rule11   = "urn:oasis:names:tc:xacml:1.1:rule-combining-algorithm:"
	policy11 = "urn:oasis:names:tc:xacml:1.1:policy-combining-algorithm:"
	rule30   = "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:"
	policy30 = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:"
)

// Applicability is the outcome of a child's target match, used by
// only-one-applicable without fully evaluating the child.
type Applicability int

const (
	// NotApplicableTarget means the child's target did not match.
	NotApplicableTarget Applicability = iota
	// ApplicableTarget means the child's target matched.
	ApplicableTarget
	// IndeterminateTarget means the target match itself failed.
	IndeterminateTarget
)

// Child is one combinable element: a rule inside a policy, or a policy,
// policy set, or reference inside a policy set. Children are evaluated
// lazily, in document order, so algorithms can short-circuit.
type Child interface {
	// Applicable reports the child's target applicability without
	// evaluating its body.
	Applicable(ctx expr.EvaluationContext) (Applicability, pdp.Status)
	// Evaluate produces the child's full decision.
	Evaluate(ctx expr.EvaluationContext) pdp.DecisionResult
}

// Algorithm reduces the decisions of a sequence of children to one
// decision, accumulating obligations and advice from the children whose
// effect matches the outcome.
type Algorithm interface {
	ID() string
	Combine(ctx expr.EvaluationContext, children []Child) pdp.DecisionResult
}

// Registry maps combining-algorithm identifiers to implementations,
// separately for the rule and policy scopes. Standard algorithms are added
// by RegisterStandard; custom ones may be added until Freeze.
type Registry struct {
	rules    map[string]Algorithm
	policies map[string]Algorithm
	frozen   bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]Algorithm),
		policies: make(map[string]Algorithm),
	}
}

// RegisterRule adds a rule-combining algorithm.
func (r *Registry) RegisterRule(a Algorithm) error {
	return r.register(r.rules, a)
}

// RegisterPolicy adds a policy-combining algorithm.
func (r *Registry) RegisterPolicy(a Algorithm) error {
	return r.register(r.policies, a)
}

func (r *Registry) register(m map[string]Algorithm, a Algorithm) error {
	if r.frozen {
		return fmt.Errorf("combining-algorithm registry is frozen")
	}
	if _, ok := m[a.ID()]; ok {
		return fmt.Errorf("combining algorithm %s already registered", a.ID())
	}
	m[a.ID()] = a
	return nil
}

// RegisterStandard adds the standard algorithm set under the 3.0 URNs, the
// ordered aliases, and the legacy 1.0 URNs. The engine always iterates
// children in document order, so the ordered variants are the same
// implementations under their own identifiers.
func (r *Registry) RegisterStandard() error {
	type entry struct {
		name     string
		alg      func(id string) Algorithm
		prefixes []string
	}
	both30 := []string{rule30, policy30}
	withLegacy := []string{rule30, policy30, rule10, policy10}
	orderedLegacy := []string{rule30, policy30, rule11, policy11}
	entries := []entry{
		{"deny-overrides", newDenyOverrides, withLegacy},
		{"ordered-deny-overrides", newDenyOverrides, orderedLegacy},
		{"permit-overrides", newPermitOverrides, withLegacy},
		{"ordered-permit-overrides", newPermitOverrides, orderedLegacy},
		{"first-applicable", newFirstApplicable, []string{rule10, policy10}},
		{"only-one-applicable", newOnlyOneApplicable, []string{policy10}},
		{"deny-unless-permit", newDenyUnlessPermit, both30},
		{"permit-unless-deny", newPermitUnlessDeny, both30},
	}
	for _, e := range entries {
		for _, prefix := range e.prefixes {
			scope := r.policies
			if prefix == rule10 || prefix == rule11 || prefix == rule30 {
				scope = r.rules
			}
			if err := r.register(scope, e.alg(prefix+e.name)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Freeze closes the registry against further registration.
func (r *Registry) Freeze() { r.frozen = true }

// RuleAlgorithm resolves a rule-combining algorithm identifier.
func (r *Registry) RuleAlgorithm(id string) (Algorithm, bool) {
	a, ok := r.rules[id]
	return a, ok
}

// PolicyAlgorithm resolves a policy-combining algorithm identifier.
func (r *Registry) PolicyAlgorithm(id string) (Algorithm, bool) {
	a, ok := r.policies[id]
	return a, ok
}
