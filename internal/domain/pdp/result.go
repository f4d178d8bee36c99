package pdp

import "github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"

// AttributeAssignment is one evaluated attribute carried by an obligation or
// advice.
type AttributeAssignment struct {
	AttributeID string
	Category    string
	Issuer      string
	Value       value.Value
}

// Obligation is a directive the enforcement point must carry out when it
// enforces the decision it is attached to.
type Obligation struct {
	ID          string
	Assignments []AttributeAssignment
}

// Advice is a directive the enforcement point may carry out. Unlike an
// obligation it is never binding.
type Advice struct {
	ID          string
	Assignments []AttributeAssignment
}

// DecisionResult is the currency of rule, policy, and combiner evaluation:
// a decision plus the obligations and advice collected from the elements
// whose FulfillOn matches it, and the status explaining an Indeterminate.
type DecisionResult struct {
	Decision    Decision
	Status      Status
	Obligations []Obligation
	Advice      []Advice
}

// PermitResult is the plain Permit with no obligations.
func PermitResult() DecisionResult { return DecisionResult{Decision: Permit} }

// DenyResult is the plain Deny with no obligations.
func DenyResult() DecisionResult { return DecisionResult{Decision: Deny} }

// NotApplicableResult contributes nothing to any combiner.
func NotApplicableResult() DecisionResult { return DecisionResult{Decision: NotApplicable} }

// IndeterminateResult builds an error result of the given kind.
func IndeterminateResult(d Decision, status Status) DecisionResult {
	return DecisionResult{Decision: d, Status: status}
}

// Result is one entry of a response: the externally visible rendering of a
// DecisionResult, carrying the decision for one individual request.
type Result struct {
	// ID identifies the result within a response.
	ID string
	// Decision is the authorization decision.
	Decision Decision
	// Status is attached for Indeterminate decisions and omitted otherwise.
	Status Status
	// Obligations the enforcement point must discharge.
	Obligations []Obligation
	// Advice the enforcement point may act on.
	Advice []Advice
	// Attributes echoes the request attributes marked IncludeInResult.
	Attributes []AttributeAssignment
}

// Response is the full answer to a decision request.
type Response struct {
	Results []Result
}
