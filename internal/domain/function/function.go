// Package function implements the XACML 3.0 standard function library and
// the registry the expression builder resolves function identifiers from.
package function

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// Function identifier namespaces.
const (
	xacml10 = "urn:oasis:names:tc:xacml:1.0:function:"
	xacml20 = "urn:oasis:names:tc:xacml:2.0:function:"
	xacml30 = "urn:oasis:names:tc:xacml:3.0:function:"
)

// Static type shorthands used throughout the library.
var (
	tyString    = expr.ValueType(value.TypeString)
	tyBool      = expr.ValueType(value.TypeBoolean)
	tyInt       = expr.ValueType(value.TypeInteger)
	tyDouble    = expr.ValueType(value.TypeDouble)
	tyDate      = expr.ValueType(value.TypeDate)
	tyTime      = expr.ValueType(value.TypeTime)
	tyDateTime  = expr.ValueType(value.TypeDateTime)
	tyDayTime   = expr.ValueType(value.TypeDayTimeDuration)
	tyYearMonth = expr.ValueType(value.TypeYearMonthDuration)
	tyURI       = expr.ValueType(value.TypeAnyURI)
)

// firstOrder is an eagerly evaluated function with a fixed signature. When
// variadic, the last parameter type repeats zero or more times.
type firstOrder struct {
	id       string
	ret      expr.Type
	params   []expr.Type
	variadic bool
	impl     func(args []expr.Result) expr.Result
}

func newFO(id string, ret expr.Type, params []expr.Type, impl func([]expr.Result) expr.Result) *firstOrder {
	return &firstOrder{id: id, ret: ret, params: params, impl: impl}
}

func newVariadic(id string, ret expr.Type, params []expr.Type, impl func([]expr.Result) expr.Result) *firstOrder {
	return &firstOrder{id: id, ret: ret, params: params, variadic: true, impl: impl}
}

// ID returns the function identifier URN.
func (f *firstOrder) ID() string { return f.id }

// ReturnType returns the declared return type.
func (f *firstOrder) ReturnType() expr.Type { return f.ret }

// Validate checks argument count and static types against the signature.
func (f *firstOrder) Validate(args []expr.Type) error {
	if f.variadic {
		fixed := len(f.params) - 1
		if len(args) < fixed {
			return fmt.Errorf("expects at least %d arguments, got %d", fixed, len(args))
		}
		for i, a := range args {
			want := f.params[min(i, fixed)]
			if a != want {
				return fmt.Errorf("argument %d: want %s, got %s", i+1, want, a)
			}
		}
		return nil
	}
	if len(args) != len(f.params) {
		return fmt.Errorf("expects %d arguments, got %d", len(f.params), len(args))
	}
	for i, a := range args {
		if a != f.params[i] {
			return fmt.Errorf("argument %d: want %s, got %s", i+1, f.params[i], a)
		}
	}
	return nil
}

// Call applies the implementation to evaluated arguments.
func (f *firstOrder) Call(_ expr.EvaluationContext, args []expr.Result) expr.Result {
	return f.impl(args)
}

// argValue unwraps a single-value argument. Safe after Validate.
func argValue(r expr.Result) value.Value {
	v, _ := r.Value()
	return v
}

// argBag unwraps a bag argument. Safe after Validate.
func argBag(r expr.Result) value.Bag {
	b, _ := r.Bag()
	return b
}

func boolResult(b bool) expr.Result {
	return expr.ValueResult(value.Boolean(b))
}

func processingErrorf(format string, args ...any) expr.Result {
	return expr.Errorf(pdp.StatusProcessingError, format, args...)
}

// Registry maps function identifiers to implementations. The standard
// library is added by RegisterStandard; custom functions may be added until
// Freeze, after which the registry is immutable and safe for concurrent
// reads.
type Registry struct {
	m      map[string]expr.Function
	frozen bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]expr.Function)}
}

// Register adds a function. It fails on duplicates and after Freeze.
func (r *Registry) Register(f expr.Function) error {
	if r.frozen {
		return fmt.Errorf("function registry is frozen")
	}
	if f.ID() == "" {
		return fmt.Errorf("function must have an id")
	}
	if _, ok := r.m[f.ID()]; ok {
		return fmt.Errorf("function %s already registered", f.ID())
	}
	r.m[f.ID()] = f
	return nil
}

// RegisterStandard adds the XACML 3.0 standard function library.
func (r *Registry) RegisterStandard() error {
	groups := [][]expr.Function{
		equalityFunctions(),
		arithmeticFunctions(),
		comparisonFunctions(),
		logicalFunctions(),
		bagFunctions(),
		setFunctions(),
		stringFunctions(),
		conversionFunctions(),
		regexpFunctions(),
		specialMatchFunctions(),
		temporalArithmeticFunctions(),
		higherOrderFunctions(),
	}
	for _, g := range groups {
		for _, f := range g {
			if err := r.Register(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Freeze closes the registry against further registration.
func (r *Registry) Freeze() { r.frozen = true }

// Get returns the implementation of a function identifier.
func (r *Registry) Get(id string) (expr.Function, bool) {
	f, ok := r.m[id]
	return f, ok
}
