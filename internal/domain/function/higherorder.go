package function

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// higherOrderFunctions builds the higher-order bag functions. Each is a
// Specializer: applying it binds the inner function from the function-typed
// first argument, so the inner signature is checked at load time and map
// gets a precise return type.
func higherOrderFunctions() []expr.Function {
	return []expr.Function{
		&anyAllOf{id: xacml30 + "any-of", universal: false},
		&anyAllOf{id: xacml30 + "all-of", universal: true},
		&anyOfAny{},
		&twoBags{id: xacml30 + "all-of-any", outerAll: true, innerAll: false},
		&twoBags{id: xacml30 + "any-of-all", outerAll: false, innerAll: true},
		&twoBags{id: xacml30 + "all-of-all", outerAll: true, innerAll: true},
		&mapOf{},
	}
}

// innerFunction extracts the inner function from the mandatory function
// reference in the first argument position.
func innerFunction(args []expr.Expression) (expr.Function, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("expects a function and at least one further argument")
	}
	ref, ok := args[0].(*expr.FunctionRef)
	if !ok {
		return nil, fmt.Errorf("first argument must be a function reference")
	}
	return ref.Function(), nil
}

// bagPositions returns the indexes of bag-typed arguments among args[1:].
func bagPositions(args []expr.Expression) []int {
	var idx []int
	for i, a := range args[1:] {
		if a.ReturnType().IsBag {
			idx = append(idx, i)
		}
	}
	return idx
}

// validateInner checks the inner function against the element types the
// higher-order application will synthesize: bag positions contribute their
// element type, the rest contribute their own type.
func validateInner(inner expr.Function, args []expr.Expression) error {
	elemTypes := make([]expr.Type, len(args)-1)
	for i, a := range args[1:] {
		t := a.ReturnType()
		if t.IsBag {
			t = expr.ValueType(t.Datatype)
		}
		elemTypes[i] = t
	}
	if err := inner.Validate(elemTypes); err != nil {
		return fmt.Errorf("inner function %s: %w", inner.ID(), err)
	}
	return nil
}

// quantify folds per-element boolean applications: the stop value decides
// immediately, Indeterminate is deferred and surfaced only when no stop
// value appears.
type quantify struct {
	stop     bool
	deferred *pdp.Status
}

// observe consumes one application result. done reports that the fold has
// reached its final answer.
func (q *quantify) observe(r expr.Result) (expr.Result, bool) {
	if r.IsIndeterminate() {
		if q.deferred == nil {
			s := r.Status()
			q.deferred = &s
		}
		return expr.Result{}, false
	}
	b, ok := r.Boolean()
	if !ok {
		return processingErrorf("higher-order function: inner function did not return a boolean"), true
	}
	if b == q.stop {
		return boolResult(q.stop), true
	}
	return expr.Result{}, false
}

// finish produces the fold result after all elements were observed.
func (q *quantify) finish() expr.Result {
	if q.deferred != nil {
		return expr.Indeterminate(*q.deferred)
	}
	return boolResult(!q.stop)
}

// anyAllOf implements any-of and all-of: one bag among the arguments, the
// inner predicate applied once per element.
type anyAllOf struct {
	id        string
	universal bool
	inner     expr.Function // set on the bound instance
	bagPos    int
}

func (f *anyAllOf) ID() string            { return f.id }
func (f *anyAllOf) ReturnType() expr.Type { return tyBool }

func (f *anyAllOf) Specialize(args []expr.Expression) (expr.Function, error) {
	inner, err := innerFunction(args)
	if err != nil {
		return nil, err
	}
	bags := bagPositions(args)
	if len(bags) != 1 {
		return nil, fmt.Errorf("expects exactly one bag argument, got %d", len(bags))
	}
	if err := validateInner(inner, args); err != nil {
		return nil, err
	}
	return &anyAllOf{id: f.id, universal: f.universal, inner: inner, bagPos: bags[0]}, nil
}

func (f *anyAllOf) Validate(args []expr.Type) error {
	if f.inner == nil {
		return fmt.Errorf("unbound higher-order function")
	}
	if len(args) < 2 || !args[0].IsFunction() {
		return fmt.Errorf("first argument must be a function reference")
	}
	return nil
}

func (f *anyAllOf) Call(ctx expr.EvaluationContext, args []expr.Result) expr.Result {
	bag := argBag(args[1+f.bagPos])
	q := &quantify{stop: !f.universal}
	inner := make([]expr.Result, len(args)-1)
	copy(inner, args[1:])
	for _, elem := range bag.Values() {
		inner[f.bagPos] = expr.ValueResult(elem)
		if r, done := q.observe(f.inner.Call(ctx, inner)); done {
			return r
		}
	}
	return q.finish()
}

// anyOfAny implements any-of-any: any number of bags among the arguments,
// existential over the cartesian product of their elements.
type anyOfAny struct {
	inner expr.Function
	bags  []int
}

func (f *anyOfAny) ID() string            { return xacml30 + "any-of-any" }
func (f *anyOfAny) ReturnType() expr.Type { return tyBool }

func (f *anyOfAny) Specialize(args []expr.Expression) (expr.Function, error) {
	inner, err := innerFunction(args)
	if err != nil {
		return nil, err
	}
	bags := bagPositions(args)
	if len(bags) == 0 {
		return nil, fmt.Errorf("expects at least one bag argument")
	}
	if err := validateInner(inner, args); err != nil {
		return nil, err
	}
	return &anyOfAny{inner: inner, bags: bags}, nil
}

func (f *anyOfAny) Validate(args []expr.Type) error {
	if f.inner == nil {
		return fmt.Errorf("unbound higher-order function")
	}
	if len(args) < 2 || !args[0].IsFunction() {
		return fmt.Errorf("first argument must be a function reference")
	}
	return nil
}

func (f *anyOfAny) Call(ctx expr.EvaluationContext, args []expr.Result) expr.Result {
	q := &quantify{stop: true}
	inner := make([]expr.Result, len(args)-1)
	copy(inner, args[1:])
	if r, done := f.enumerate(ctx, inner, args, 0, q); done {
		return r
	}
	return q.finish()
}

// enumerate walks the cartesian product of the bag positions depth-first.
func (f *anyOfAny) enumerate(ctx expr.EvaluationContext, inner []expr.Result, args []expr.Result, level int, q *quantify) (expr.Result, bool) {
	if level == len(f.bags) {
		return q.observe(f.inner.Call(ctx, inner))
	}
	pos := f.bags[level]
	for _, elem := range argBag(args[1+pos]).Values() {
		inner[pos] = expr.ValueResult(elem)
		if r, done := f.enumerate(ctx, inner, args, level+1, q); done {
			return r, true
		}
	}
	return expr.Result{}, false
}

// twoBags implements all-of-any, any-of-all, and all-of-all: a binary inner
// predicate quantified over two bags, the outer quantifier over the first.
type twoBags struct {
	id       string
	outerAll bool
	innerAll bool
	inner    expr.Function
}

func (f *twoBags) ID() string            { return f.id }
func (f *twoBags) ReturnType() expr.Type { return tyBool }

func (f *twoBags) Specialize(args []expr.Expression) (expr.Function, error) {
	inner, err := innerFunction(args)
	if err != nil {
		return nil, err
	}
	if len(args) != 3 || !args[1].ReturnType().IsBag || !args[2].ReturnType().IsBag {
		return nil, fmt.Errorf("expects a function and two bags")
	}
	if err := validateInner(inner, args); err != nil {
		return nil, err
	}
	return &twoBags{id: f.id, outerAll: f.outerAll, innerAll: f.innerAll, inner: inner}, nil
}

func (f *twoBags) Validate(args []expr.Type) error {
	if f.inner == nil {
		return fmt.Errorf("unbound higher-order function")
	}
	if len(args) != 3 || !args[0].IsFunction() {
		return fmt.Errorf("expects a function and two bags")
	}
	return nil
}

func (f *twoBags) Call(ctx expr.EvaluationContext, args []expr.Result) expr.Result {
	first := argBag(args[1])
	second := argBag(args[2])
	outer := &quantify{stop: !f.outerAll}
	for _, x := range first.Values() {
		inner := &quantify{stop: !f.innerAll}
		sub := [2]expr.Result{expr.ValueResult(x), {}}
		var r expr.Result
		done := false
		for _, y := range second.Values() {
			sub[1] = expr.ValueResult(y)
			if r, done = inner.observe(f.inner.Call(ctx, sub[:])); done {
				break
			}
		}
		if !done {
			r = inner.finish()
		}
		if out, outDone := outer.observe(r); outDone {
			return out
		}
	}
	return outer.finish()
}

// mapOf implements map: the inner function applied to every element of the
// single bag argument, producing a bag of the inner return type. Any
// element-level error makes the whole map Indeterminate.
type mapOf struct {
	inner  expr.Function
	bagPos int
}

func (f *mapOf) ID() string { return xacml30 + "map" }

func (f *mapOf) ReturnType() expr.Type {
	if f.inner == nil {
		return expr.BagType("")
	}
	return expr.BagType(f.inner.ReturnType().Datatype)
}

func (f *mapOf) Specialize(args []expr.Expression) (expr.Function, error) {
	inner, err := innerFunction(args)
	if err != nil {
		return nil, err
	}
	if inner.ReturnType().IsBag || inner.ReturnType().IsFunction() {
		return nil, fmt.Errorf("inner function %s must return a primitive value", inner.ID())
	}
	bags := bagPositions(args)
	if len(bags) != 1 {
		return nil, fmt.Errorf("expects exactly one bag argument, got %d", len(bags))
	}
	if err := validateInner(inner, args); err != nil {
		return nil, err
	}
	return &mapOf{inner: inner, bagPos: bags[0]}, nil
}

func (f *mapOf) Validate(args []expr.Type) error {
	if f.inner == nil {
		return fmt.Errorf("unbound higher-order function")
	}
	if len(args) < 2 || !args[0].IsFunction() {
		return fmt.Errorf("first argument must be a function reference")
	}
	return nil
}

func (f *mapOf) Call(ctx expr.EvaluationContext, args []expr.Result) expr.Result {
	bag := argBag(args[1+f.bagPos])
	inner := make([]expr.Result, len(args)-1)
	copy(inner, args[1:])
	elems := make([]value.Value, 0, bag.Size())
	for _, elem := range bag.Values() {
		inner[f.bagPos] = expr.ValueResult(elem)
		r := f.inner.Call(ctx, inner)
		if r.IsIndeterminate() {
			return r
		}
		v, ok := r.Value()
		if !ok {
			return processingErrorf("map: inner function did not return a value")
		}
		elems = append(elems, v)
	}
	out, err := value.NewBag(f.inner.ReturnType().Datatype, elems...)
	if err != nil {
		return processingErrorf("map: %v", err)
	}
	return expr.BagResult(out)
}
