package policy

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// Match applies a binary predicate between a policy literal and each
// element of the bag a designator or selector produces. The match holds
// when any element satisfies the predicate.
type Match struct {
	fn      expr.Function
	literal expr.Expression
	source  expr.Expression
}

// NewMatch builds a match clause. The predicate must be a boolean binary
// function accepting the literal's type and the source bag's element type.
func NewMatch(fn expr.Function, literal, source expr.Expression) (*Match, error) {
	srcElem := expr.ValueType(source.ReturnType().Datatype)
	if err := fn.Validate([]expr.Type{literal.ReturnType(), srcElem}); err != nil {
		return nil, err
	}
	return &Match{fn: fn, literal: literal, source: source}, nil
}

// evaluate resolves the source bag and applies the predicate per element.
func (m *Match) evaluate(ctx expr.EvaluationContext) (bool, pdp.Status) {
	lit := m.literal.Evaluate(ctx)
	if lit.IsIndeterminate() {
		return false, lit.Status()
	}
	src := m.source.Evaluate(ctx)
	if src.IsIndeterminate() {
		return false, src.Status()
	}
	bag, ok := src.Bag()
	if !ok {
		return false, pdp.NewStatus(pdp.StatusProcessingError, "match source did not produce a bag")
	}
	var deferred *pdp.Status
	for _, elem := range bag.Values() {
		r := m.fn.Call(ctx, []expr.Result{lit, expr.ValueResult(elem)})
		if r.IsIndeterminate() {
			if deferred == nil {
				s := r.Status()
				deferred = &s
			}
			continue
		}
		if b, ok := r.Boolean(); ok && b {
			return true, pdp.Status{}
		}
	}
	if deferred != nil {
		return false, *deferred
	}
	return false, pdp.Status{}
}

// Target is the applicability predicate of a rule, policy, or policy set: a
// conjunction of AnyOf clauses, each a disjunction of AllOf clauses, each a
// conjunction of matches. A nil Target matches every request.
type Target struct {
	anyOf []anyOf
}

type anyOf struct {
	allOf []allOf
}

type allOf struct {
	matches []*Match
}

// NewTarget assembles a target from its clause structure.
func NewTarget(clauses [][][]*Match) *Target {
	t := &Target{}
	for _, any := range clauses {
		a := anyOf{}
		for _, all := range any {
			a.allOf = append(a.allOf, allOf{matches: all})
		}
		t.anyOf = append(t.anyOf, a)
	}
	return t
}

// Applicable evaluates the target against the context. An Indeterminate
// match makes the whole target Indeterminate unless a definite answer
// absorbs it first.
func (t *Target) Applicable(ctx expr.EvaluationContext) (combining.Applicability, pdp.Status) {
	if t == nil {
		return combining.ApplicableTarget, pdp.Status{}
	}
	for _, any := range t.anyOf {
		matched := false
		var deferred *pdp.Status
		for _, all := range any.allOf {
			ok, status := all.evaluate(ctx)
			if !status.OK() {
				if deferred == nil {
					deferred = &status
				}
				continue
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			if deferred != nil {
				return combining.IndeterminateTarget, *deferred
			}
			return combining.NotApplicableTarget, pdp.Status{}
		}
	}
	return combining.ApplicableTarget, pdp.Status{}
}

// evaluate is the conjunction over the clause's matches. A definite false
// from any match absorbs an earlier Indeterminate; the deferred status only
// surfaces when every match was true or Indeterminate.
func (a *allOf) evaluate(ctx expr.EvaluationContext) (bool, pdp.Status) {
	var deferred *pdp.Status
	for _, m := range a.matches {
		ok, status := m.evaluate(ctx)
		if !status.OK() {
			if deferred == nil {
				deferred = &status
			}
			continue
		}
		if !ok {
			return false, pdp.Status{}
		}
	}
	if deferred != nil {
		return false, *deferred
	}
	return true, pdp.Status{}
}
