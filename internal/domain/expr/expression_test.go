package expr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// fakeContext implements EvaluationContext with canned attribute bags and
// lookup counters for memoization assertions.
type fakeContext struct {
	bags        map[string]value.Bag
	content     map[string]value.Bag
	lookupCount map[string]int
	parseErr    bool
	vars        map[string]Result
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		bags:        make(map[string]value.Bag),
		content:     make(map[string]value.Bag),
		lookupCount: make(map[string]int),
		vars:        make(map[string]Result),
	}
}

func (c *fakeContext) key(category, id, issuer, datatype string) string {
	return category + "|" + id + "|" + issuer + "|" + datatype
}

func (c *fakeContext) AttributeBag(category, id, issuer, datatype string) (value.Bag, bool, error) {
	k := c.key(category, id, issuer, datatype)
	c.lookupCount[k]++
	if c.parseErr {
		return value.Bag{}, true, errors.New("bad lexical form")
	}
	bag, ok := c.bags[k]
	if !ok {
		return value.EmptyBag(datatype), false, nil
	}
	return bag, true, nil
}

func (c *fakeContext) ContentValues(category, path, datatype string) (value.Bag, bool, error) {
	bag, ok := c.content[category+"|"+path+"|"+datatype]
	if !ok {
		return value.EmptyBag(datatype), false, nil
	}
	return bag, true, nil
}

func (c *fakeContext) CachedVariable(id string) (Result, bool) {
	r, ok := c.vars[id]
	return r, ok
}

func (c *fakeContext) CacheVariable(id string, r Result) { c.vars[id] = r }

// boolFn is a minimal eager test function.
type boolFn struct {
	id    string
	calls int
	impl  func(args []Result) Result
}

func (f *boolFn) ID() string       { return f.id }
func (f *boolFn) ReturnType() Type { return ValueType(value.TypeBoolean) }
func (f *boolFn) Validate(args []Type) error {
	for i, a := range args {
		if a != ValueType(value.TypeBoolean) {
			return fmt.Errorf("argument %d: want boolean, got %s", i+1, a)
		}
	}
	return nil
}
func (f *boolFn) Call(_ EvaluationContext, args []Result) Result {
	f.calls++
	return f.impl(args)
}

func TestDesignatorMissingAttribute(t *testing.T) {
	ctx := newFakeContext()
	d := &Designator{
		Category:    "subject",
		AttributeID: "age",
		Datatype:    value.TypeInteger,
	}

	r := d.Evaluate(ctx)
	bag, ok := r.Bag()
	if !ok || !bag.Empty() {
		t.Errorf("optional missing designator: want empty bag, got %+v", r)
	}

	d.MustBePresent = true
	r = d.Evaluate(ctx)
	if !r.IsIndeterminate() {
		t.Fatal("required missing designator did not return Indeterminate")
	}
	if got := r.Status().Code(); got != pdp.StatusMissingAttribute {
		t.Errorf("status code = %s, want missing-attribute", got)
	}
}

func TestDesignatorSyntaxError(t *testing.T) {
	ctx := newFakeContext()
	ctx.parseErr = true
	d := &Designator{Category: "subject", AttributeID: "id", Datatype: value.TypeInteger}
	r := d.Evaluate(ctx)
	if !r.IsIndeterminate() || r.Status().Code() != pdp.StatusSyntaxError {
		t.Errorf("want syntax-error Indeterminate, got %+v", r)
	}
}

func TestSelectorEvaluate(t *testing.T) {
	ctx := newFakeContext()
	ctx.content["resource|record/patient|"+value.TypeString] = value.BagOf(value.String("Bart"))
	s := &Selector{Category: "resource", Path: "record/patient", Datatype: value.TypeString}
	r := s.Evaluate(ctx)
	bag, ok := r.Bag()
	if !ok || bag.Size() != 1 {
		t.Fatalf("selector result = %+v", r)
	}

	missing := &Selector{Category: "resource", Path: "nope", Datatype: value.TypeString, MustBePresent: true}
	if r := missing.Evaluate(ctx); !r.IsIndeterminate() || r.Status().Code() != pdp.StatusMissingAttribute {
		t.Errorf("missing selector: want missing-attribute, got %+v", r)
	}
}

func TestVariableMemoization(t *testing.T) {
	ctx := newFakeContext()
	k := ctx.key("subject", "id", "", value.TypeString)
	ctx.bags[k] = value.BagOf(value.String("alice"))

	d := &Designator{Category: "subject", AttributeID: "id", Datatype: value.TypeString}
	v := NewVariable("subject-bag", d)
	ref := NewVarRef(v)

	first := ref.Evaluate(ctx)
	second := ref.Evaluate(ctx)

	b1, _ := first.Bag()
	b2, _ := second.Bag()
	if !b1.Equal(b2) {
		t.Error("memoized variable returned different results")
	}
	// One designator evaluation despite two references.
	if got := ctx.lookupCount[k]; got != 1 {
		t.Errorf("designator resolved %d times, want 1", got)
	}
}

func TestApplyTypeCheckAtBuildTime(t *testing.T) {
	fn := &boolFn{id: "test:and2", impl: func(args []Result) Result {
		a, _ := args[0].Boolean()
		b, _ := args[1].Boolean()
		return ValueResult(value.Boolean(a && b))
	}}

	if _, err := NewApply(fn, NewLiteral(value.Boolean(true)), NewLiteral(value.Integer(1))); err == nil {
		t.Error("NewApply accepted an integer where boolean expected")
	}

	apply, err := NewApply(fn, NewLiteral(value.Boolean(true)), NewLiteral(value.Boolean(false)))
	if err != nil {
		t.Fatalf("NewApply: %v", err)
	}
	r := apply.Evaluate(newFakeContext())
	if b, ok := r.Boolean(); !ok || b {
		t.Errorf("apply result = %+v, want false", r)
	}
}

func TestApplyShortCircuitsOnIndeterminateArgument(t *testing.T) {
	fn := &boolFn{id: "test:const", impl: func([]Result) Result {
		return ValueResult(value.Boolean(true))
	}}
	ctx := newFakeContext()
	required := &Designator{Category: "s", AttributeID: "missing", Datatype: value.TypeBoolean, MustBePresent: true}

	// NewApply checks argument types statically and would reject the
	// designator's bag type, so build the node directly: the designator's
	// failure must surface before the function is ever called.
	apply := &Apply{fn: fn, args: []Expression{required}}
	r := apply.Evaluate(ctx)
	if !r.IsIndeterminate() {
		t.Fatal("apply with Indeterminate argument did not propagate")
	}
	if fn.calls != 0 {
		t.Errorf("function was called %d times despite Indeterminate argument", fn.calls)
	}
}

func TestFunctionRefEvaluate(t *testing.T) {
	fn := &boolFn{id: "test:pred"}
	ref := NewFunctionRef(fn)
	r := ref.Evaluate(newFakeContext())
	got, ok := r.Function()
	if !ok || got.ID() != "test:pred" {
		t.Errorf("function ref result = %+v", r)
	}
	if !ref.ReturnType().IsFunction() {
		t.Error("function ref return type is not the function pseudo-type")
	}
}

func TestEvaluateBoolean(t *testing.T) {
	ok, status := EvaluateBoolean(NewLiteral(value.Boolean(true)), newFakeContext())
	if !ok || !status.OK() {
		t.Errorf("EvaluateBoolean(true) = (%v, %+v)", ok, status)
	}
	_, status = EvaluateBoolean(NewLiteral(value.Integer(3)), newFakeContext())
	if status.OK() {
		t.Error("EvaluateBoolean on integer literal reported OK")
	}
}
