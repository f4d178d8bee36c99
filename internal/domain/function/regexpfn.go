package function

import (
	"regexp"
	"strings"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// regexpFunctions builds the regexp-match family. The first argument is the
// pattern, the second the value, matched unanchored per fn:matches.
func regexpFunctions() []expr.Function {
	matchers := []struct {
		id string
		ty expr.Type
	}{
		{xacml10 + "string-regexp-match", tyString},
		{xacml20 + "anyURI-regexp-match", tyURI},
		{xacml20 + "ipAddress-regexp-match", tyIP},
		{xacml20 + "dnsName-regexp-match", tyDNS},
		{xacml20 + "rfc822Name-regexp-match", tyRFC822},
		{xacml20 + "x500Name-regexp-match", tyX500},
	}
	var fns []expr.Function
	for _, m := range matchers {
		m := m
		fns = append(fns, newFO(m.id, tyBool, []expr.Type{tyString, m.ty},
			func(args []expr.Result) expr.Result {
				re, err := regexp.Compile(argValue(args[0]).Str())
				if err != nil {
					return expr.Errorf(pdp.StatusSyntaxError, "regexp-match: %v", err)
				}
				return boolResult(re.MatchString(argValue(args[1]).Canonical()))
			}))
	}
	return fns
}

// specialMatchFunctions builds the name-matching predicates with semantics
// beyond simple equality.
func specialMatchFunctions() []expr.Function {
	return []expr.Function{
		// x500Name-match: true when the first name is the terminal part
		// of the second name's RDN sequence.
		newFO(xacml10+"x500Name-match", tyBool, []expr.Type{tyX500, tyX500},
			func(args []expr.Result) expr.Result {
				suffix := argValue(args[0]).Str()
				full := argValue(args[1]).Str()
				if strings.EqualFold(suffix, full) {
					return boolResult(true)
				}
				return boolResult(strings.HasSuffix(strings.ToLower(full), ","+strings.ToLower(suffix)))
			}),
		// rfc822Name-match: the string pattern is either a full mailbox
		// ("local@domain"), a whole domain ("@domain"), or a subdomain
		// pattern (".domain").
		newFO(xacml10+"rfc822Name-match", tyBool, []expr.Type{tyString, tyRFC822},
			func(args []expr.Result) expr.Result {
				pattern := argValue(args[0]).Str()
				name := argValue(args[1]).Str()
				at := strings.LastIndex(name, "@")
				if at < 0 {
					return processingErrorf("rfc822Name-match: malformed name %q", name)
				}
				local, domain := name[:at], name[at+1:]
				switch {
				case strings.HasPrefix(pattern, "@"):
					return boolResult(strings.EqualFold(pattern[1:], domain))
				case strings.HasPrefix(pattern, "."):
					return boolResult(strings.HasSuffix(domain, strings.ToLower(pattern)))
				default:
					pat := strings.LastIndex(pattern, "@")
					if pat < 0 {
						return boolResult(false)
					}
					return boolResult(pattern[:pat] == local &&
						strings.EqualFold(pattern[pat+1:], domain))
				}
			}),
	}
}

// temporalArithmeticFunctions builds the date and dateTime duration
// arithmetic family.
func temporalArithmeticFunctions() []expr.Function {
	addDayTime := func(id string, sign int) expr.Function {
		return newFO(xacml30+id, tyDateTime, []expr.Type{tyDateTime, tyDayTime},
			func(args []expr.Result) expr.Result {
				t := argValue(args[0]).Timestamp()
				d := argValue(args[1]).Duration()
				if sign < 0 {
					d = -d
				}
				return expr.ValueResult(value.DateTime(t.Add(d)))
			})
	}
	addYearMonth := func(id string, ret expr.Type, sign int) expr.Function {
		return newFO(xacml30+id, ret, []expr.Type{ret, tyYearMonth},
			func(args []expr.Result) expr.Result {
				t := argValue(args[0]).Timestamp()
				months := argValue(args[1]).Months()
				if sign < 0 {
					months = -months
				}
				shifted := t.AddDate(0, int(months), 0)
				if ret == tyDate {
					return expr.ValueResult(value.Date(shifted))
				}
				return expr.ValueResult(value.DateTime(shifted))
			})
	}
	return []expr.Function{
		addDayTime("dateTime-add-dayTimeDuration", 1),
		addDayTime("dateTime-subtract-dayTimeDuration", -1),
		addYearMonth("dateTime-add-yearMonthDuration", tyDateTime, 1),
		addYearMonth("dateTime-subtract-yearMonthDuration", tyDateTime, -1),
		addYearMonth("date-add-yearMonthDuration", tyDate, 1),
		addYearMonth("date-subtract-yearMonthDuration", tyDate, -1),
	}
}
