package function

import (
	"math"
	"math/big"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// arithmeticFunctions builds the numeric function family. Integer semantics
// are arbitrary-precision; double semantics are IEEE-754.
func arithmeticFunctions() []expr.Function {
	intFold := func(name string, fold func(acc, x *big.Int) *big.Int) expr.Function {
		return newVariadic(xacml10+"integer-"+name, tyInt, []expr.Type{tyInt, tyInt, tyInt},
			func(args []expr.Result) expr.Result {
				acc := new(big.Int).Set(argValue(args[0]).Int())
				for _, a := range args[1:] {
					acc = fold(acc, argValue(a).Int())
				}
				return expr.ValueResult(value.BigInteger(acc))
			})
	}
	doubleFold := func(name string, fold func(acc, x float64) float64) expr.Function {
		return newVariadic(xacml10+"double-"+name, tyDouble, []expr.Type{tyDouble, tyDouble, tyDouble},
			func(args []expr.Result) expr.Result {
				acc := argValue(args[0]).Float()
				for _, a := range args[1:] {
					acc = fold(acc, argValue(a).Float())
				}
				return expr.ValueResult(value.Double(acc))
			})
	}

	return []expr.Function{
		intFold("add", func(acc, x *big.Int) *big.Int { return acc.Add(acc, x) }),
		intFold("multiply", func(acc, x *big.Int) *big.Int { return acc.Mul(acc, x) }),
		newFO(xacml10+"integer-subtract", tyInt, []expr.Type{tyInt, tyInt},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.BigInteger(
					new(big.Int).Sub(argValue(args[0]).Int(), argValue(args[1]).Int())))
			}),
		newFO(xacml10+"integer-divide", tyInt, []expr.Type{tyInt, tyInt},
			func(args []expr.Result) expr.Result {
				d := argValue(args[1]).Int()
				if d.Sign() == 0 {
					return processingErrorf("integer-divide: division by zero")
				}
				return expr.ValueResult(value.BigInteger(
					new(big.Int).Quo(argValue(args[0]).Int(), d)))
			}),
		newFO(xacml10+"integer-mod", tyInt, []expr.Type{tyInt, tyInt},
			func(args []expr.Result) expr.Result {
				d := argValue(args[1]).Int()
				if d.Sign() == 0 {
					return processingErrorf("integer-mod: division by zero")
				}
				return expr.ValueResult(value.BigInteger(
					new(big.Int).Rem(argValue(args[0]).Int(), d)))
			}),
		newFO(xacml10+"integer-abs", tyInt, []expr.Type{tyInt},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.BigInteger(
					new(big.Int).Abs(argValue(args[0]).Int())))
			}),

		doubleFold("add", func(acc, x float64) float64 { return acc + x }),
		doubleFold("multiply", func(acc, x float64) float64 { return acc * x }),
		newFO(xacml10+"double-subtract", tyDouble, []expr.Type{tyDouble, tyDouble},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.Double(argValue(args[0]).Float() - argValue(args[1]).Float()))
			}),
		newFO(xacml10+"double-divide", tyDouble, []expr.Type{tyDouble, tyDouble},
			func(args []expr.Result) expr.Result {
				// IEEE-754 division: zero divisor yields an infinity or NaN.
				return expr.ValueResult(value.Double(argValue(args[0]).Float() / argValue(args[1]).Float()))
			}),
		newFO(xacml10+"double-abs", tyDouble, []expr.Type{tyDouble},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.Double(math.Abs(argValue(args[0]).Float())))
			}),
		newFO(xacml10+"round", tyDouble, []expr.Type{tyDouble},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.Double(math.RoundToEven(argValue(args[0]).Float())))
			}),
		newFO(xacml10+"floor", tyDouble, []expr.Type{tyDouble},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.Double(math.Floor(argValue(args[0]).Float())))
			}),

		newFO(xacml10+"integer-to-double", tyDouble, []expr.Type{tyInt},
			func(args []expr.Result) expr.Result {
				f, _ := new(big.Float).SetInt(argValue(args[0]).Int()).Float64()
				return expr.ValueResult(value.Double(f))
			}),
		newFO(xacml10+"double-to-integer", tyInt, []expr.Type{tyDouble},
			func(args []expr.Result) expr.Result {
				f := argValue(args[0]).Float()
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return processingErrorf("double-to-integer: %v has no integer value", f)
				}
				i, _ := big.NewFloat(math.Trunc(f)).Int(nil)
				return expr.ValueResult(value.BigInteger(i))
			}),
	}
}
