package expr

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// Expression is one node of a compiled expression tree. Evaluation either
// produces a result matching ReturnType or Indeterminate.
type Expression interface {
	Evaluate(ctx EvaluationContext) Result
	ReturnType() Type
}

// Literal is an attribute value embedded in a policy.
type Literal struct {
	v value.Value
}

// NewLiteral wraps a parsed attribute value.
func NewLiteral(v value.Value) *Literal { return &Literal{v: v} }

// Value returns the wrapped attribute value.
func (l *Literal) Value() value.Value { return l.v }

// Evaluate returns the literal value.
func (l *Literal) Evaluate(EvaluationContext) Result { return ValueResult(l.v) }

// ReturnType returns the literal's datatype.
func (l *Literal) ReturnType() Type { return ValueType(l.v.Type()) }

// BagLiteral is a bag embedded in a policy, produced by a bag constructor
// whose arguments were all literals.
type BagLiteral struct {
	b value.Bag
}

// NewBagLiteral wraps a bag.
func NewBagLiteral(b value.Bag) *BagLiteral { return &BagLiteral{b: b} }

// Evaluate returns the bag unchanged.
func (l *BagLiteral) Evaluate(EvaluationContext) Result { return BagResult(l.b) }

// ReturnType returns the bag type.
func (l *BagLiteral) ReturnType() Type { return BagType(l.b.Type()) }

// Variable is a compiled variable definition. Its expression is evaluated at
// most once per decision through the context's memoization table.
type Variable struct {
	id   string
	expr Expression
}

// NewVariable binds an id to its defining expression.
func NewVariable(id string, e Expression) *Variable {
	return &Variable{id: id, expr: e}
}

// ID returns the variable identifier.
func (v *Variable) ID() string { return v.id }

// ReturnType returns the static type of the defining expression.
func (v *Variable) ReturnType() Type { return v.expr.ReturnType() }

// Evaluate returns the memoized result, evaluating the definition exactly
// once per context.
func (v *Variable) Evaluate(ctx EvaluationContext) Result {
	if r, ok := ctx.CachedVariable(v.id); ok {
		return r
	}
	r := v.expr.Evaluate(ctx)
	ctx.CacheVariable(v.id, r)
	return r
}

// VarRef is a reference to a variable definition, resolved at load time.
type VarRef struct {
	def *Variable
}

// NewVarRef builds a reference to a resolved variable definition.
func NewVarRef(def *Variable) *VarRef { return &VarRef{def: def} }

// Evaluate delegates to the resolved definition.
func (r *VarRef) Evaluate(ctx EvaluationContext) Result { return r.def.Evaluate(ctx) }

// ReturnType returns the definition's static type.
func (r *VarRef) ReturnType() Type { return r.def.ReturnType() }

// FunctionRef yields a function handle; it is only valid as an argument to a
// higher-order function, which the Apply builder enforces.
type FunctionRef struct {
	fn Function
}

// NewFunctionRef wraps a resolved function.
func NewFunctionRef(fn Function) *FunctionRef { return &FunctionRef{fn: fn} }

// Function returns the wrapped function.
func (r *FunctionRef) Function() Function { return r.fn }

// Evaluate yields the function handle itself.
func (r *FunctionRef) Evaluate(EvaluationContext) Result { return FunctionResult(r.fn) }

// ReturnType returns the function pseudo-type.
func (r *FunctionRef) ReturnType() Type { return FunctionType() }

// Apply is a function application node.
type Apply struct {
	fn   Function
	args []Expression
}

// Specializer is implemented by functions whose signature depends on their
// function-typed argument, such as the higher-order bag functions. NewApply
// replaces the generic function with the specialized instance before
// validating, giving higher-order applications precise static types.
type Specializer interface {
	Function
	Specialize(args []Expression) (Function, error)
}

// NewApply builds a function application, validating the statically known
// argument types against the function signature. This is the load-time type
// check: a mismatch here is a configuration error, not an Indeterminate.
func NewApply(fn Function, args ...Expression) (*Apply, error) {
	if sp, ok := fn.(Specializer); ok {
		bound, err := sp.Specialize(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.ID(), err)
		}
		fn = bound
	}
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.ReturnType()
	}
	if err := fn.Validate(types); err != nil {
		return nil, fmt.Errorf("%s: %w", fn.ID(), err)
	}
	return &Apply{fn: fn, args: args}, nil
}

// Evaluate applies the function. Eager functions see fully evaluated
// arguments and any Indeterminate argument short-circuits the application;
// lazy functions receive the argument expressions and decide themselves.
func (a *Apply) Evaluate(ctx EvaluationContext) Result {
	if lazy, ok := a.fn.(LazyFunction); ok {
		return lazy.CallLazy(ctx, a.args)
	}
	results := make([]Result, len(a.args))
	for i, arg := range a.args {
		r := arg.Evaluate(ctx)
		if r.IsIndeterminate() {
			return r
		}
		results[i] = r
	}
	return a.fn.Call(ctx, results)
}

// ReturnType returns the function's declared return type.
func (a *Apply) ReturnType() Type { return a.fn.ReturnType() }

// EvaluateBoolean evaluates an expression expected to produce a single
// boolean, as conditions and match predicates do. A well-typed non-boolean
// outcome cannot happen for load-time-checked expressions; it is mapped to a
// processing error as a safety net.
func EvaluateBoolean(e Expression, ctx EvaluationContext) (bool, pdp.Status) {
	r := e.Evaluate(ctx)
	if r.IsIndeterminate() {
		return false, r.Status()
	}
	b, ok := r.Boolean()
	if !ok {
		return false, pdp.NewStatus(pdp.StatusProcessingError, "expression did not produce a boolean")
	}
	return b, pdp.Status{}
}
