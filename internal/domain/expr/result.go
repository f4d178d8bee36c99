package expr

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

type resultKind int

const (
	resultValue resultKind = iota
	resultBag
	resultFunction
	resultIndeterminate
)

// Result is the outcome of evaluating one expression: a single value, a bag,
// a function handle, or Indeterminate with a status. Indeterminate is a
// value that flows through the evaluator, not an error.
type Result struct {
	kind   resultKind
	val    value.Value
	bag    value.Bag
	fn     Function
	status pdp.Status
}

// ValueResult wraps a single value.
func ValueResult(v value.Value) Result {
	return Result{kind: resultValue, val: v}
}

// BagResult wraps a bag.
func BagResult(b value.Bag) Result {
	return Result{kind: resultBag, bag: b}
}

// FunctionResult wraps a function handle produced by a function reference.
func FunctionResult(f Function) Result {
	return Result{kind: resultFunction, fn: f}
}

// Indeterminate builds an error result with the given status.
func Indeterminate(status pdp.Status) Result {
	return Result{kind: resultIndeterminate, status: status}
}

// Errorf builds an Indeterminate result with a single status code and a
// formatted message.
func Errorf(code, format string, args ...any) Result {
	return Indeterminate(pdp.NewStatus(code, fmt.Sprintf(format, args...)))
}

// IsIndeterminate reports whether the result is an error result.
func (r Result) IsIndeterminate() bool { return r.kind == resultIndeterminate }

// Status returns the status of an Indeterminate result, or the OK status.
func (r Result) Status() pdp.Status { return r.status }

// Value returns the single value and whether the result holds one.
func (r Result) Value() (value.Value, bool) {
	return r.val, r.kind == resultValue
}

// Bag returns the result as a bag. A single-value result is presented as a
// one-element bag, matching the XACML coercion for bag-typed positions.
func (r Result) Bag() (value.Bag, bool) {
	switch r.kind {
	case resultBag:
		return r.bag, true
	case resultValue:
		return value.BagOf(r.val), true
	default:
		return value.Bag{}, false
	}
}

// Function returns the function handle and whether the result holds one.
func (r Result) Function() (Function, bool) {
	return r.fn, r.kind == resultFunction
}

// Boolean returns the payload of a boolean value result. ok is false when
// the result is not a single boolean value.
func (r Result) Boolean() (bool, bool) {
	if r.kind != resultValue || r.val.Type() != value.TypeBoolean {
		return false, false
	}
	return r.val.Bool(), true
}
