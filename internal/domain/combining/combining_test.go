package combining

import (
	"testing"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// fakeChild is a canned combinable element.
type fakeChild struct {
	result     pdp.DecisionResult
	applicable Applicability
	evaluated  *int
}

func (c *fakeChild) Applicable(expr.EvaluationContext) (Applicability, pdp.Status) {
	return c.applicable, pdp.Status{}
}

func (c *fakeChild) Evaluate(expr.EvaluationContext) pdp.DecisionResult {
	if c.evaluated != nil {
		*c.evaluated++
	}
	return c.result
}

func child(d pdp.Decision, obligations ...string) *fakeChild {
	r := pdp.DecisionResult{Decision: d}
	if d.IsIndeterminate() {
		r.Status = pdp.NewStatus(pdp.StatusProcessingError, "boom")
	}
	for _, id := range obligations {
		r.Obligations = append(r.Obligations, pdp.Obligation{ID: id})
	}
	return &fakeChild{result: r, applicable: ApplicableTarget}
}

func standardRegistryT(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.RegisterStandard(); err != nil {
		t.Fatalf("RegisterStandard: %v", err)
	}
	r.Freeze()
	return r
}

func ruleAlg(t *testing.T, r *Registry, id string) Algorithm {
	t.Helper()
	a, ok := r.RuleAlgorithm(id)
	if !ok {
		t.Fatalf("rule algorithm %s not registered", id)
	}
	return a
}

func policyAlg(t *testing.T, r *Registry, id string) Algorithm {
	t.Helper()
	a, ok := r.PolicyAlgorithm(id)
	if !ok {
		t.Fatalf("policy algorithm %s not registered", id)
	}
	return a
}

func TestDenyOverrides(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:deny-overrides")

	tests := []struct {
		name     string
		children []Child
		want     pdp.Decision
	}{
		{"deny wins", []Child{child(pdp.Permit), child(pdp.Deny)}, pdp.Deny},
		{"permit without deny", []Child{child(pdp.NotApplicable), child(pdp.Permit)}, pdp.Permit},
		{"all not applicable", []Child{child(pdp.NotApplicable)}, pdp.NotApplicable},
		{"empty", nil, pdp.NotApplicable},
		{"indeterminate D alone", []Child{child(pdp.IndeterminateD)}, pdp.IndeterminateD},
		{"indeterminate D with permit", []Child{child(pdp.IndeterminateD), child(pdp.Permit)}, pdp.IndeterminateDP},
		{"indeterminate DP", []Child{child(pdp.IndeterminateDP), child(pdp.Permit)}, pdp.IndeterminateDP},
		{"indeterminate P with permit", []Child{child(pdp.IndeterminateP), child(pdp.Permit)}, pdp.Permit},
		{"indeterminate P alone", []Child{child(pdp.IndeterminateP)}, pdp.IndeterminateP},
		{"deny beats indeterminate", []Child{child(pdp.IndeterminateDP), child(pdp.Deny)}, pdp.Deny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alg.Combine(nil, tt.children)
			if got.Decision != tt.want {
				t.Errorf("Combine = %v, want %v", got.Decision, tt.want)
			}
		})
	}
}

func TestPermitOverridesIsMirror(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:permit-overrides")

	got := alg.Combine(nil, []Child{child(pdp.Deny), child(pdp.Permit)})
	if got.Decision != pdp.Permit {
		t.Errorf("permit-overrides = %v, want Permit", got.Decision)
	}
	got = alg.Combine(nil, []Child{child(pdp.IndeterminateP), child(pdp.Deny)})
	if got.Decision != pdp.IndeterminateDP {
		t.Errorf("permit-overrides with Indeterminate{P} and Deny = %v, want Indeterminate{DP}", got.Decision)
	}
}

func TestDenyOverridesShortCircuits(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:deny-overrides")

	evaluated := 0
	tail := child(pdp.Permit)
	tail.evaluated = &evaluated
	got := alg.Combine(nil, []Child{child(pdp.Deny), tail})
	if got.Decision != pdp.Deny {
		t.Fatalf("Combine = %v", got.Decision)
	}
	if evaluated != 0 {
		t.Error("children after the first Deny were evaluated")
	}
}

func TestObligationFiltering(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:permit-overrides")

	// NotApplicable and Deny children contribute nothing to a Permit.
	got := alg.Combine(nil, []Child{
		child(pdp.NotApplicable),
		child(pdp.Deny, "deny-ob"),
		child(pdp.Permit, "permit-ob"),
	})
	if got.Decision != pdp.Permit {
		t.Fatalf("Combine = %v", got.Decision)
	}
	if len(got.Obligations) != 1 || got.Obligations[0].ID != "permit-ob" {
		t.Errorf("obligations = %+v, want only permit-ob", got.Obligations)
	}
}

func TestFirstApplicable(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:first-applicable")

	got := alg.Combine(nil, []Child{child(pdp.NotApplicable), child(pdp.Deny), child(pdp.Permit)})
	if got.Decision != pdp.Deny {
		t.Errorf("first definite = %v, want Deny", got.Decision)
	}

	// Indeterminate children are skipped; the first is the fallback.
	got = alg.Combine(nil, []Child{child(pdp.IndeterminateD), child(pdp.Permit)})
	if got.Decision != pdp.Permit {
		t.Errorf("definite after Indeterminate = %v, want Permit", got.Decision)
	}
	got = alg.Combine(nil, []Child{child(pdp.IndeterminateD), child(pdp.NotApplicable)})
	if got.Decision != pdp.IndeterminateD {
		t.Errorf("no definite result = %v, want first Indeterminate", got.Decision)
	}
	got = alg.Combine(nil, []Child{child(pdp.NotApplicable)})
	if got.Decision != pdp.NotApplicable {
		t.Errorf("all NotApplicable = %v", got.Decision)
	}
}

func TestOnlyOneApplicable(t *testing.T) {
	r := standardRegistryT(t)
	alg := policyAlg(t, r, "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:only-one-applicable")

	notApplicable := child(pdp.NotApplicable)
	notApplicable.applicable = NotApplicableTarget

	one := child(pdp.Permit, "ob")
	got := alg.Combine(nil, []Child{notApplicable, one})
	if got.Decision != pdp.Permit || len(got.Obligations) != 1 {
		t.Errorf("single applicable child = %+v", got)
	}

	got = alg.Combine(nil, []Child{notApplicable})
	if got.Decision != pdp.NotApplicable {
		t.Errorf("zero applicable = %v", got.Decision)
	}

	got = alg.Combine(nil, []Child{one, child(pdp.Deny)})
	if got.Decision != pdp.IndeterminateDP {
		t.Errorf("two applicable = %v, want Indeterminate{DP}", got.Decision)
	}

	errTarget := child(pdp.Permit)
	errTarget.applicable = IndeterminateTarget
	got = alg.Combine(nil, []Child{errTarget})
	if got.Decision != pdp.IndeterminateDP {
		t.Errorf("applicability error = %v, want Indeterminate{DP}", got.Decision)
	}
}

func TestDenyUnlessPermit(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:deny-unless-permit")

	got := alg.Combine(nil, []Child{child(pdp.NotApplicable), child(pdp.IndeterminateDP)})
	if got.Decision != pdp.Deny {
		t.Errorf("collapse to Deny = %v", got.Decision)
	}
	got = alg.Combine(nil, []Child{child(pdp.Deny, "d"), child(pdp.Permit, "p")})
	if got.Decision != pdp.Permit || len(got.Obligations) != 1 || got.Obligations[0].ID != "p" {
		t.Errorf("permit wins with its obligations = %+v", got)
	}
}

func TestPermitUnlessDeny(t *testing.T) {
	r := standardRegistryT(t)
	alg := ruleAlg(t, r, "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:permit-unless-deny")

	got := alg.Combine(nil, []Child{child(pdp.IndeterminateD)})
	if got.Decision != pdp.Permit {
		t.Errorf("collapse to Permit = %v", got.Decision)
	}
	got = alg.Combine(nil, []Child{child(pdp.Deny)})
	if got.Decision != pdp.Deny {
		t.Errorf("deny wins = %v", got.Decision)
	}
}

func TestOrderedAliasesRegistered(t *testing.T) {
	r := standardRegistryT(t)
	for _, id := range []string{
		"urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:ordered-deny-overrides",
		"urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:ordered-permit-overrides",
		"urn:oasis:names:tc:xacml:1.1:rule-combining-algorithm:ordered-deny-overrides",
	} {
		if _, ok := r.RuleAlgorithm(id); !ok {
			t.Errorf("ordered alias %s not registered", id)
		}
	}
	// only-one-applicable is policy-scope only.
	if _, ok := r.RuleAlgorithm("urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:only-one-applicable"); ok {
		t.Error("only-one-applicable registered in the rule scope")
	}
}

func TestRegistryFreeze(t *testing.T) {
	r := standardRegistryT(t)
	if err := r.RegisterRule(newDenyOverrides("urn:example:custom")); err == nil {
		t.Error("RegisterRule after Freeze succeeded")
	}
}
