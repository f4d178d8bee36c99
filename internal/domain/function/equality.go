package function

import (
	"strings"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// equalityFunctions builds the X-equal family for every primitive datatype,
// plus string-equal-ignore-case.
func equalityFunctions() []expr.Function {
	fns := make([]expr.Function, 0, len(primitiveTypes)+1)
	for _, ti := range primitiveTypes {
		ti := ti
		fns = append(fns, newFO(
			ti.ns+ti.short+"-equal",
			tyBool,
			[]expr.Type{ti.ty, ti.ty},
			func(args []expr.Result) expr.Result {
				return boolResult(argValue(args[0]).Equal(argValue(args[1])))
			},
		))
	}
	fns = append(fns, newFO(
		xacml30+"string-equal-ignore-case",
		tyBool,
		[]expr.Type{tyString, tyString},
		func(args []expr.Result) expr.Result {
			return boolResult(strings.EqualFold(argValue(args[0]).Str(), argValue(args[1]).Str()))
		},
	))
	return fns
}

// comparisonFunctions builds the ordering family for the ordered datatypes.
func comparisonFunctions() []expr.Function {
	ordered := []typeInfo{
		{"string", xacml10, tyString},
		{"integer", xacml10, tyInt},
		{"double", xacml10, tyDouble},
		{"time", xacml10, tyTime},
		{"date", xacml10, tyDate},
		{"dateTime", xacml10, tyDateTime},
	}
	var fns []expr.Function
	for _, ti := range ordered {
		ti := ti
		cmp := func(name string, ok func(int) bool) expr.Function {
			return newFO(
				ti.ns+ti.short+"-"+name,
				tyBool,
				[]expr.Type{ti.ty, ti.ty},
				func(args []expr.Result) expr.Result {
					c, err := argValue(args[0]).Compare(argValue(args[1]))
					if err != nil {
						return processingErrorf("%s-%s: %v", ti.short, name, err)
					}
					return boolResult(ok(c))
				},
			)
		}
		fns = append(fns,
			cmp("greater-than", func(c int) bool { return c > 0 }),
			cmp("greater-than-or-equal", func(c int) bool { return c >= 0 }),
			cmp("less-than", func(c int) bool { return c < 0 }),
			cmp("less-than-or-equal", func(c int) bool { return c <= 0 }),
		)
	}
	fns = append(fns, newFO(
		xacml20+"time-in-range",
		tyBool,
		[]expr.Type{tyTime, tyTime, tyTime},
		func(args []expr.Result) expr.Result {
			t := argValue(args[0]).Timestamp()
			lo := argValue(args[1]).Timestamp()
			hi := argValue(args[2]).Timestamp()
			if !hi.Before(lo) {
				return boolResult(!t.Before(lo) && !t.After(hi))
			}
			// Range crosses midnight.
			return boolResult(!t.Before(lo) || !t.After(hi))
		},
	))
	return fns
}

// bagFunctions builds one-and-only, bag-size, is-in, and the bag
// constructor for every primitive datatype.
func bagFunctions() []expr.Function {
	var fns []expr.Function
	for _, ti := range primitiveTypes {
		ti := ti
		bagTy := expr.BagType(ti.ty.Datatype)
		fns = append(fns,
			newFO(ti.ns+ti.short+"-one-and-only", ti.ty, []expr.Type{bagTy},
				func(args []expr.Result) expr.Result {
					b := argBag(args[0])
					if b.Size() != 1 {
						return processingErrorf("%s-one-and-only: bag has %d elements", ti.short, b.Size())
					}
					return expr.ValueResult(b.Values()[0])
				}),
			newFO(ti.ns+ti.short+"-bag-size", tyInt, []expr.Type{bagTy},
				func(args []expr.Result) expr.Result {
					return expr.ValueResult(value.Integer(int64(argBag(args[0]).Size())))
				}),
			newFO(ti.ns+ti.short+"-is-in", tyBool, []expr.Type{ti.ty, bagTy},
				func(args []expr.Result) expr.Result {
					return boolResult(argBag(args[1]).Contains(argValue(args[0])))
				}),
			newVariadic(ti.ns+ti.short+"-bag", bagTy, []expr.Type{ti.ty},
				func(args []expr.Result) expr.Result {
					elems := make([]value.Value, len(args))
					for i, a := range args {
						elems[i] = argValue(a)
					}
					b, err := value.NewBag(ti.ty.Datatype, elems...)
					if err != nil {
						return processingErrorf("%s-bag: %v", ti.short, err)
					}
					return expr.BagResult(b)
				}),
		)
	}
	return fns
}

// setFunctions builds the set-theoretic family for every primitive datatype.
func setFunctions() []expr.Function {
	var fns []expr.Function
	for _, ti := range primitiveTypes {
		ti := ti
		bagTy := expr.BagType(ti.ty.Datatype)
		two := []expr.Type{bagTy, bagTy}
		fns = append(fns,
			newFO(ti.ns+ti.short+"-intersection", bagTy, two,
				func(args []expr.Result) expr.Result {
					return expr.BagResult(value.Intersection(argBag(args[0]), argBag(args[1])))
				}),
			newFO(ti.ns+ti.short+"-union", bagTy, two,
				func(args []expr.Result) expr.Result {
					return expr.BagResult(value.Union(argBag(args[0]), argBag(args[1])))
				}),
			newFO(ti.ns+ti.short+"-at-least-one-member-of", tyBool, two,
				func(args []expr.Result) expr.Result {
					return boolResult(value.AtLeastOneMemberOf(argBag(args[0]), argBag(args[1])))
				}),
			newFO(ti.ns+ti.short+"-subset", tyBool, two,
				func(args []expr.Result) expr.Result {
					return boolResult(value.Subset(argBag(args[0]), argBag(args[1])))
				}),
			newFO(ti.ns+ti.short+"-set-equals", tyBool, two,
				func(args []expr.Result) expr.Result {
					return boolResult(value.SetEquals(argBag(args[0]), argBag(args[1])))
				}),
		)
	}
	return fns
}
