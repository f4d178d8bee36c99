// Package pdp contains the domain types of the decision lattice: decisions,
// statuses, obligations, advice, and response results.
package pdp

// Effect is the outcome a rule produces when it applies.
type Effect int

const (
	// EffectPermit grants access when the rule applies.
	EffectPermit Effect = iota
	// EffectDeny refuses access when the rule applies.
	EffectDeny
)

// String returns the XACML name of the effect.
func (e Effect) String() string {
	if e == EffectDeny {
		return "Deny"
	}
	return "Permit"
}

// Decision is the outcome of evaluating a rule, policy, or policy set.
//
// The three Indeterminate kinds record which definite outcomes were still
// possible before the failure; combining algorithms depend on the
// distinction.
type Decision int

const (
	// NotApplicable means no rule or policy applied to the request.
	NotApplicable Decision = iota
	// Permit grants the request.
	Permit
	// Deny refuses the request.
	Deny
	// IndeterminateD is an error result that could only have produced Deny.
	IndeterminateD
	// IndeterminateP is an error result that could only have produced Permit.
	IndeterminateP
	// IndeterminateDP is an error result that could have produced either.
	IndeterminateDP
)

// IsIndeterminate reports whether the decision is any Indeterminate kind.
func (d Decision) IsIndeterminate() bool {
	return d == IndeterminateD || d == IndeterminateP || d == IndeterminateDP
}

// String returns the XACML response rendering of the decision. All three
// Indeterminate kinds render as "Indeterminate"; the bias is internal to
// combining and never leaves the engine.
func (d Decision) String() string {
	switch d {
	case Permit:
		return "Permit"
	case Deny:
		return "Deny"
	case NotApplicable:
		return "NotApplicable"
	default:
		return "Indeterminate"
	}
}

// IndeterminateFor returns the Indeterminate kind biased toward the given
// effect, used when a rule's target or condition fails.
func IndeterminateFor(e Effect) Decision {
	if e == EffectDeny {
		return IndeterminateD
	}
	return IndeterminateP
}
