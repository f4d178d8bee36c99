package expr

import (
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// Designator looks up a bag of attribute values in the request context under
// the (category, attribute-id, issuer) key, coerced to its datatype.
type Designator struct {
	Category    string
	AttributeID string
	Issuer      string
	Datatype    string
	// MustBePresent turns an absent attribute into Indeterminate with a
	// missing-attribute status instead of an empty bag.
	MustBePresent bool
}

// Evaluate resolves the designator against the context. The context caches
// the lookup, so repeated designators in one decision resolve once.
func (d *Designator) Evaluate(ctx EvaluationContext) Result {
	bag, found, err := ctx.AttributeBag(d.Category, d.AttributeID, d.Issuer, d.Datatype)
	if err != nil {
		return Errorf(pdp.StatusSyntaxError,
			"attribute %s of category %s: %v", d.AttributeID, d.Category, err)
	}
	if !found || bag.Empty() {
		if d.MustBePresent {
			return Errorf(pdp.StatusMissingAttribute,
				"missing attribute %s of category %s", d.AttributeID, d.Category)
		}
		return BagResult(value.EmptyBag(d.Datatype))
	}
	return BagResult(bag)
}

// ReturnType is a bag of the designator's datatype.
func (d *Designator) ReturnType() Type { return BagType(d.Datatype) }

// Selector extracts values from a category's content fragment by a static
// slash-separated path. The conformance subset converts text and attribute
// nodes; anything richer is out of scope.
type Selector struct {
	Category string
	Path     string
	Datatype string
	// MustBePresent mirrors the designator semantics for an empty match.
	MustBePresent bool
}

// Evaluate fetches the content nodes at the path and converts each matched
// node to the target datatype.
func (s *Selector) Evaluate(ctx EvaluationContext) Result {
	bag, found, err := ctx.ContentValues(s.Category, s.Path, s.Datatype)
	if err != nil {
		return Errorf(pdp.StatusSyntaxError,
			"selector %s of category %s: %v", s.Path, s.Category, err)
	}
	if !found || bag.Empty() {
		if s.MustBePresent {
			return Errorf(pdp.StatusMissingAttribute,
				"selector %s of category %s matched nothing", s.Path, s.Category)
		}
		return BagResult(value.EmptyBag(s.Datatype))
	}
	return BagResult(bag)
}

// ReturnType is a bag of the selector's datatype.
func (s *Selector) ReturnType() Type { return BagType(s.Datatype) }
