package function

import (
	"strings"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// stringFunctions builds the string manipulation family. Following the
// standard signatures, the needle is the first argument of the starts-with,
// ends-with, and contains predicates.
func stringFunctions() []expr.Function {
	strPred := func(id string, argTy expr.Type, pred func(needle, s string) bool) expr.Function {
		return newFO(id, tyBool, []expr.Type{tyString, argTy},
			func(args []expr.Result) expr.Result {
				return boolResult(pred(argValue(args[0]).Str(), argValue(args[1]).Str()))
			})
	}
	return []expr.Function{
		newVariadic(xacml20+"string-concatenate", tyString, []expr.Type{tyString, tyString, tyString},
			func(args []expr.Result) expr.Result {
				var sb strings.Builder
				for _, a := range args {
					sb.WriteString(argValue(a).Str())
				}
				return expr.ValueResult(value.String(sb.String()))
			}),
		strPred(xacml30+"string-starts-with", tyString, func(needle, s string) bool { return strings.HasPrefix(s, needle) }),
		strPred(xacml30+"string-ends-with", tyString, func(needle, s string) bool { return strings.HasSuffix(s, needle) }),
		strPred(xacml30+"string-contains", tyString, func(needle, s string) bool { return strings.Contains(s, needle) }),
		strPred(xacml30+"anyURI-starts-with", tyURI, func(needle, s string) bool { return strings.HasPrefix(s, needle) }),
		strPred(xacml30+"anyURI-ends-with", tyURI, func(needle, s string) bool { return strings.HasSuffix(s, needle) }),
		strPred(xacml30+"anyURI-contains", tyURI, func(needle, s string) bool { return strings.Contains(s, needle) }),
		newFO(xacml30+"string-substring", tyString, []expr.Type{tyString, tyInt, tyInt},
			func(args []expr.Result) expr.Result {
				s := argValue(args[0]).Str()
				begin := argValue(args[1]).Int()
				end := argValue(args[2]).Int()
				if !begin.IsInt64() || !end.IsInt64() {
					return processingErrorf("string-substring: index out of range")
				}
				b, e := begin.Int64(), end.Int64()
				runes := []rune(s)
				if e == -1 {
					e = int64(len(runes))
				}
				if b < 0 || e < b || e > int64(len(runes)) {
					return processingErrorf("string-substring: range [%d,%d) out of bounds for length %d", b, e, len(runes))
				}
				return expr.ValueResult(value.String(string(runes[b:e])))
			}),
		newFO(xacml10+"string-normalize-space", tyString, []expr.Type{tyString},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.String(strings.TrimSpace(argValue(args[0]).Str())))
			}),
		newFO(xacml10+"string-normalize-to-lower-case", tyString, []expr.Type{tyString},
			func(args []expr.Result) expr.Result {
				return expr.ValueResult(value.String(strings.ToLower(argValue(args[0]).Str())))
			}),
	}
}

// conversionFunctions builds string-from-X and X-from-string for every
// primitive datatype except string, hexBinary, and base64Binary, using the
// standard parsers. A malformed lexical form
// at evaluation time is a syntax error, not a crash.
func conversionFunctions() []expr.Function {
	convertible := []struct {
		ti    typeInfo
		parse func(string) (value.Value, error)
	}{
		{typeInfo{"boolean", xacml30, tyBool}, value.ParseBoolean},
		{typeInfo{"integer", xacml30, tyInt}, value.ParseInteger},
		{typeInfo{"double", xacml30, tyDouble}, value.ParseDouble},
		{typeInfo{"time", xacml30, tyTime}, value.ParseTime},
		{typeInfo{"date", xacml30, tyDate}, value.ParseDate},
		{typeInfo{"dateTime", xacml30, tyDateTime}, value.ParseDateTime},
		{typeInfo{"dayTimeDuration", xacml30, tyDayTime}, value.ParseDayTimeDuration},
		{typeInfo{"yearMonthDuration", xacml30, tyYearMonth}, value.ParseYearMonthDuration},
		{typeInfo{"anyURI", xacml30, tyURI}, value.ParseAnyURI},
		{typeInfo{"x500Name", xacml30, tyX500}, value.ParseX500Name},
		{typeInfo{"rfc822Name", xacml30, tyRFC822}, value.ParseRFC822Name},
		{typeInfo{"ipAddress", xacml30, tyIP}, value.ParseIPAddress},
		{typeInfo{"dnsName", xacml30, tyDNS}, value.ParseDNSName},
	}
	var fns []expr.Function
	for _, c := range convertible {
		c := c
		fns = append(fns,
			newFO(c.ti.ns+"string-from-"+c.ti.short, tyString, []expr.Type{c.ti.ty},
				func(args []expr.Result) expr.Result {
					return expr.ValueResult(value.String(argValue(args[0]).Canonical()))
				}),
			newFO(c.ti.ns+c.ti.short+"-from-string", c.ti.ty, []expr.Type{tyString},
				func(args []expr.Result) expr.Result {
					v, err := c.parse(argValue(args[0]).Str())
					if err != nil {
						return expr.Errorf(pdp.StatusSyntaxError, "%s-from-string: %v", c.ti.short, err)
					}
					return expr.ValueResult(v)
				}),
		)
	}
	return fns
}
