package provider

import (
	"strings"
	"testing"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/function"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/policy"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

const (
	algFirstApplicable  = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:first-applicable"
	algPolicyDenyOver   = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:deny-overrides"
)

func newEnv(t *testing.T) *policy.CompileEnv {
	t.Helper()
	datatypes := value.NewRegistry()
	if err := datatypes.RegisterStandard(); err != nil {
		t.Fatal(err)
	}
	functions := function.NewRegistry()
	if err := functions.RegisterStandard(); err != nil {
		t.Fatal(err)
	}
	algorithms := combining.NewRegistry()
	if err := algorithms.RegisterStandard(); err != nil {
		t.Fatal(err)
	}
	return &policy.CompileEnv{
		Datatypes:           datatypes,
		Functions:           functions,
		Algorithms:          algorithms,
		MaxVariableRefDepth: 10,
	}
}

func policyDoc(id, version string) *policy.PolicyDoc {
	return &policy.PolicyDoc{
		PolicyID:      id,
		Version:       version,
		RuleCombining: algFirstApplicable,
		Rules:         []policy.RuleDoc{{RuleID: id + ":r", Effect: "Permit"}},
	}
}

// setDoc builds a policy set referencing other policy sets by id.
func setDoc(id, version string, refs ...string) *policy.PolicySetDoc {
	doc := &policy.PolicySetDoc{
		PolicySetID:     id,
		Version:         version,
		PolicyCombining: algPolicyDenyOver,
	}
	for _, ref := range refs {
		doc.Children = append(doc.Children, policy.PolicySetChildDoc{
			PolicySetIDRef: &policy.RefDoc{ID: ref},
		})
	}
	if len(refs) == 0 {
		doc.Children = []policy.PolicySetChildDoc{{Policy: policyDoc(id+":inner", "1.0")}}
	}
	return doc
}

func TestDuplicateVersionIsFatal(t *testing.T) {
	docs := []Document{
		{Policy: policyDoc("urn:p", "1.0"), Source: "a.json"},
		{Policy: policyDoc("urn:p", "1.0"), Source: "b.json"},
	}
	_, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("New = %v, want duplicate error naming both sources", err)
	}
	if err != nil && (!strings.Contains(err.Error(), "a.json") || !strings.Contains(err.Error(), "b.json")) {
		t.Errorf("error does not name both sources: %v", err)
	}
}

func TestLatestVersionWinsAndIgnoreOld(t *testing.T) {
	docs := []Document{
		{Policy: policyDoc("urn:p", "1.0"), Source: "a"},
		{Policy: policyDoc("urn:p", "2.0"), Source: "b"},
	}
	p, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok := p.GetPolicy("urn:p", nil)
	if !ok || got.Version().String() != "2.0" {
		t.Errorf("GetPolicy latest = %v", got)
	}

	// With constraints, an older version is still reachable...
	pat, _ := policy.ParseVersionPattern("1.0")
	got, ok = p.GetPolicy("urn:p", &policy.VersionConstraints{Version: pat})
	if !ok || got.Version().String() != "1.0" {
		t.Errorf("GetPolicy(1.0) = %v", got)
	}

	// ...unless old versions are dropped at load.
	p, err = New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1, IgnoreOldVersions: true})
	if err != nil {
		t.Fatalf("New(ignore old): %v", err)
	}
	if _, ok := p.GetPolicy("urn:p", &policy.VersionConstraints{Version: pat}); ok {
		t.Error("old version survived IgnoreOldVersions")
	}
}

func TestReferenceCycleIsFatal(t *testing.T) {
	docs := []Document{
		{PolicySet: setDoc("urn:A", "1.0", "urn:B"), Source: "a"},
		{PolicySet: setDoc("urn:B", "1.0", "urn:A"), Source: "b"},
	}
	_, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1, RootID: "urn:A"})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("New = %v, want cycle error", err)
	}
}

func TestReferenceDepthBound(t *testing.T) {
	docs := []Document{
		{PolicySet: setDoc("urn:A", "1.0", "urn:B"), Source: "a"},
		{PolicySet: setDoc("urn:B", "1.0", "urn:C"), Source: "b"},
		{PolicySet: setDoc("urn:C", "1.0"), Source: "c"},
	}

	// A -> B -> C walks a three-set chain; a bound of 2 must fail and
	// name every set on the chain.
	_, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: 2, RootID: "urn:A"})
	if err == nil {
		t.Fatal("New succeeded with chain past the depth bound")
	}
	for _, id := range []string{"urn:A", "urn:B", "urn:C"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("depth error %q does not name %s", err, id)
		}
	}

	// A bound of 3 accommodates the chain.
	if _, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: 3, RootID: "urn:A"}); err != nil {
		t.Errorf("New with adequate bound: %v", err)
	}

	// Negative disables the bound.
	if _, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1, RootID: "urn:A"}); err != nil {
		t.Errorf("New with disabled bound: %v", err)
	}
}

func TestLongestChainReusedOnJoin(t *testing.T) {
	docs := []Document{
		{PolicySet: setDoc("urn:A", "1.0", "urn:B"), Source: "a"},
		{PolicySet: setDoc("urn:B", "1.0", "urn:C"), Source: "b"},
		{PolicySet: setDoc("urn:C", "1.0"), Source: "c"},
	}
	p, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: 3, RootID: "urn:A"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// B was compiled with a downstream chain of one reference. Joining
	// it from an active chain of two more sets exceeds the bound.
	if _, err := p.GetPolicySet("urn:B", nil, []string{"urn:X", "urn:Y"}); err == nil {
		t.Error("GetPolicySet allowed a join past the depth bound")
	}
	if _, err := p.GetPolicySet("urn:B", nil, []string{"urn:X"}); err != nil {
		t.Errorf("GetPolicySet within bound: %v", err)
	}
}

func TestRootSelection(t *testing.T) {
	// Single policy, no sets: that policy is the root.
	p, err := New([]Document{{Policy: policyDoc("urn:p", "1.0"), Source: "a"}}, newEnv(t), Config{MaxPolicyRefDepth: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Root() == nil {
		t.Fatal("Root() = nil")
	}

	// Single policy set: the set wins even with policies present.
	p, err = New([]Document{
		{Policy: policyDoc("urn:p", "1.0"), Source: "a"},
		{PolicySet: setDoc("urn:s", "1.0"), Source: "b"},
	}, newEnv(t), Config{MaxPolicyRefDepth: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Root() == nil {
		t.Fatal("Root() = nil")
	}

	// Two policy ids and no set: ambiguous.
	_, err = New([]Document{
		{Policy: policyDoc("urn:p1", "1.0"), Source: "a"},
		{Policy: policyDoc("urn:p2", "1.0"), Source: "b"},
	}, newEnv(t), Config{MaxPolicyRefDepth: -1})
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("New = %v, want ambiguous root error", err)
	}

	// Explicit root resolves the ambiguity.
	p, err = New([]Document{
		{Policy: policyDoc("urn:p1", "1.0"), Source: "a"},
		{Policy: policyDoc("urn:p2", "1.0"), Source: "b"},
	}, newEnv(t), Config{MaxPolicyRefDepth: -1, RootID: "urn:p2"})
	if err != nil {
		t.Fatalf("New with explicit root: %v", err)
	}
	if p.Root() == nil {
		t.Fatal("Root() = nil")
	}

	// Unknown explicit root is fatal.
	_, err = New([]Document{{Policy: policyDoc("urn:p1", "1.0"), Source: "a"}},
		newEnv(t), Config{MaxPolicyRefDepth: -1, RootID: "urn:missing"})
	if err == nil {
		t.Error("New accepted an unknown root id")
	}
}

func TestUnresolvedReferenceIsFatal(t *testing.T) {
	docs := []Document{{PolicySet: setDoc("urn:A", "1.0", "urn:missing"), Source: "a"}}
	_, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1})
	if err == nil || !strings.Contains(err.Error(), "unresolved") {
		t.Errorf("New = %v, want unresolved reference error", err)
	}
}

func TestReferenceVersionConstraints(t *testing.T) {
	set := setDoc("urn:A", "1.0")
	set.Children = []policy.PolicySetChildDoc{{
		PolicyIDRef: &policy.RefDoc{ID: "urn:p", Version: "1.+"},
	}}
	docs := []Document{
		{PolicySet: set, Source: "a"},
		{Policy: policyDoc("urn:p", "1.2"), Source: "b"},
		{Policy: policyDoc("urn:p", "2.0"), Source: "c"},
	}
	p, err := New(docs, newEnv(t), Config{MaxPolicyRefDepth: -1, RootID: "urn:A"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// The newest version matching 1.+ is 1.2, even though 2.0 exists.
	got, ok := p.GetPolicy("urn:p", nil)
	if !ok || got.Version().String() != "2.0" {
		t.Fatalf("latest unconstrained = %v", got)
	}
	pat, _ := policy.ParseVersionPattern("1.+")
	got, ok = p.GetPolicy("urn:p", &policy.VersionConstraints{Version: pat})
	if !ok || got.Version().String() != "1.2" {
		t.Errorf("latest matching 1.+ = %v", got)
	}
}
