package expr

import "github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"

// EvaluationContext is the per-request view the expression evaluator works
// against. Implementations cache attribute and variable lookups for the
// lifetime of one decision and are not shared across requests.
type EvaluationContext interface {
	// AttributeBag resolves a designator key to a bag of the requested
	// datatype. found is false when no matching attribute exists in the
	// request; a non-nil error means a request value failed to parse as
	// the datatype. Results are cached per (category, id, issuer,
	// datatype) key for the duration of the decision.
	AttributeBag(category, attributeID, issuer, datatype string) (bag value.Bag, found bool, err error)

	// ContentValues extracts nodes of the category's content fragment at
	// the given path and converts them to the datatype. found is false
	// when the category has no content or the path matches nothing; a
	// non-nil error means a matched node failed conversion.
	ContentValues(category, path, datatype string) (bag value.Bag, found bool, err error)

	// CachedVariable returns the memoized result of a variable
	// definition, if it was evaluated earlier in this decision.
	CachedVariable(id string) (Result, bool)

	// CacheVariable memoizes a variable result for the rest of the
	// decision.
	CacheVariable(id string, r Result)
}

// Function is a value-level XACML function: it receives already-evaluated
// argument results and produces a result. Implementations are registered in
// the function registry and shared, frozen, across requests.
type Function interface {
	// ID is the function identifier URN.
	ID() string
	// ReturnType is the function's static return type.
	ReturnType() Type
	// Validate checks statically known argument types at load time.
	Validate(args []Type) error
	// Call applies the function to evaluated arguments.
	Call(ctx EvaluationContext, args []Result) Result
}

// LazyFunction is implemented by functions that control the evaluation of
// their own arguments: the logical short-circuit functions and the
// higher-order bag functions.
type LazyFunction interface {
	Function
	// CallLazy receives the unevaluated argument expressions.
	CallLazy(ctx EvaluationContext, args []Expression) Result
}
