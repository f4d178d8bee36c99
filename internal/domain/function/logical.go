package function

import (
	"fmt"
	"math/big"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
)

// logicalFunctions builds not, and, or, and n-of. The variadic three are
// lazy: they evaluate arguments in order and short-circuit where a definite
// answer is reached, deferring Indeterminate arguments until no
// short-circuit value can still appear.
func logicalFunctions() []expr.Function {
	return []expr.Function{
		newFO(xacml10+"not", tyBool, []expr.Type{tyBool},
			func(args []expr.Result) expr.Result {
				b, _ := args[0].Boolean()
				return boolResult(!b)
			}),
		&shortCircuit{id: xacml10 + "and", stop: false},
		&shortCircuit{id: xacml10 + "or", stop: true},
		&nOf{},
	}
}

// shortCircuit implements and/or. stop is the argument value that decides
// the outcome immediately: false for and, true for or.
type shortCircuit struct {
	id   string
	stop bool
}

func (f *shortCircuit) ID() string            { return f.id }
func (f *shortCircuit) ReturnType() expr.Type { return tyBool }

func (f *shortCircuit) Validate(args []expr.Type) error {
	for i, a := range args {
		if a != tyBool {
			return fmt.Errorf("argument %d: want %s, got %s", i+1, tyBool, a)
		}
	}
	return nil
}

// reduce folds already-evaluated boolean results.
func (f *shortCircuit) reduce(results []expr.Result) expr.Result {
	var deferred *pdp.Status
	for _, r := range results {
		if r.IsIndeterminate() {
			if deferred == nil {
				s := r.Status()
				deferred = &s
			}
			continue
		}
		b, ok := r.Boolean()
		if !ok {
			return processingErrorf("%s: argument is not a boolean", f.id)
		}
		if b == f.stop {
			return boolResult(f.stop)
		}
	}
	if deferred != nil {
		return expr.Indeterminate(*deferred)
	}
	return boolResult(!f.stop)
}

// Call handles pre-evaluated arguments, as a higher-order caller supplies.
func (f *shortCircuit) Call(_ expr.EvaluationContext, args []expr.Result) expr.Result {
	return f.reduce(args)
}

// CallLazy evaluates arguments one at a time so a deciding value skips the
// remaining argument evaluations entirely.
func (f *shortCircuit) CallLazy(ctx expr.EvaluationContext, args []expr.Expression) expr.Result {
	var deferred *pdp.Status
	for _, arg := range args {
		r := arg.Evaluate(ctx)
		if r.IsIndeterminate() {
			if deferred == nil {
				s := r.Status()
				deferred = &s
			}
			continue
		}
		b, ok := r.Boolean()
		if !ok {
			return processingErrorf("%s: argument is not a boolean", f.id)
		}
		if b == f.stop {
			return boolResult(f.stop)
		}
	}
	if deferred != nil {
		return expr.Indeterminate(*deferred)
	}
	return boolResult(!f.stop)
}

// nOf is true when at least n of its boolean arguments are true. An
// Indeterminate argument is deferred; it surfaces only when the true
// arguments alone cannot reach n but the deferred ones still could.
type nOf struct{}

func (f *nOf) ID() string            { return xacml10 + "n-of" }
func (f *nOf) ReturnType() expr.Type { return tyBool }

func (f *nOf) Validate(args []expr.Type) error {
	if len(args) < 1 {
		return fmt.Errorf("expects at least 1 argument")
	}
	if args[0] != tyInt {
		return fmt.Errorf("argument 1: want %s, got %s", tyInt, args[0])
	}
	for i, a := range args[1:] {
		if a != tyBool {
			return fmt.Errorf("argument %d: want %s, got %s", i+2, tyBool, a)
		}
	}
	return nil
}

func (f *nOf) Call(_ expr.EvaluationContext, args []expr.Result) expr.Result {
	v, ok := args[0].Value()
	if !ok {
		return processingErrorf("n-of: first argument is not an integer")
	}
	return f.count(v.Int(), func(i int) expr.Result { return args[i+1] }, len(args)-1)
}

func (f *nOf) CallLazy(ctx expr.EvaluationContext, args []expr.Expression) expr.Result {
	first := args[0].Evaluate(ctx)
	if first.IsIndeterminate() {
		return first
	}
	v, ok := first.Value()
	if !ok {
		return processingErrorf("n-of: first argument is not an integer")
	}
	return f.count(v.Int(), func(i int) expr.Result { return args[i+1].Evaluate(ctx) }, len(args)-1)
}

func (f *nOf) count(n *big.Int, eval func(int) expr.Result, rest int) expr.Result {
	if n.Sign() <= 0 {
		return boolResult(true)
	}
	if !n.IsInt64() || n.Int64() > int64(rest) {
		return processingErrorf("n-of: %s exceeds the %d remaining arguments", n, rest)
	}
	need := n.Int64()
	var trues, indets int64
	var deferred pdp.Status
	for i := 0; i < rest; i++ {
		r := eval(i)
		if r.IsIndeterminate() {
			if indets == 0 {
				deferred = r.Status()
			}
			indets++
			continue
		}
		b, ok := r.Boolean()
		if !ok {
			return processingErrorf("n-of: argument is not a boolean")
		}
		if b {
			trues++
			if trues >= need {
				return boolResult(true)
			}
		}
	}
	if trues+indets >= need {
		return expr.Indeterminate(deferred)
	}
	return boolResult(false)
}
