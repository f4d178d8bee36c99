// Package value implements the XACML value universe: typed attribute values,
// the bag multiset, and the datatype registry.
package value

import (
	"bytes"
	"fmt"
	"math/big"
	"time"
)

// Datatype identifiers for the standard XACML 3.0 datatypes.
const (
	TypeString            = "http://www.w3.org/2001/XMLSchema#string"
	TypeBoolean           = "http://www.w3.org/2001/XMLSchema#boolean"
	TypeInteger           = "http://www.w3.org/2001/XMLSchema#integer"
	TypeDouble            = "http://www.w3.org/2001/XMLSchema#double"
	TypeTime              = "http://www.w3.org/2001/XMLSchema#time"
	TypeDate              = "http://www.w3.org/2001/XMLSchema#date"
	TypeDateTime          = "http://www.w3.org/2001/XMLSchema#dateTime"
	TypeDayTimeDuration   = "http://www.w3.org/2001/XMLSchema#dayTimeDuration"
	TypeYearMonthDuration = "http://www.w3.org/2001/XMLSchema#yearMonthDuration"
	TypeAnyURI            = "http://www.w3.org/2001/XMLSchema#anyURI"
	TypeHexBinary         = "http://www.w3.org/2001/XMLSchema#hexBinary"
	TypeBase64Binary      = "http://www.w3.org/2001/XMLSchema#base64Binary"
	TypeX500Name          = "urn:oasis:names:tc:xacml:1.0:data-type:x500Name"
	TypeRFC822Name        = "urn:oasis:names:tc:xacml:1.0:data-type:rfc822Name"
	TypeIPAddress         = "urn:oasis:names:tc:xacml:2.0:data-type:ipAddress"
	TypeDNSName           = "urn:oasis:names:tc:xacml:2.0:data-type:dnsName"
)

// Value is an immutable typed attribute value. Construct through the typed
// constructors or a datatype registry; the zero Value is invalid.
type Value struct {
	dt string
	v  any
}

// Type returns the datatype identifier of the value.
func (v Value) Type() string { return v.dt }

// IsZero reports whether the value is the invalid zero Value.
func (v Value) IsZero() bool { return v.dt == "" }

// String constructs a string value.
func String(s string) Value { return Value{dt: TypeString, v: s} }

// Boolean constructs a boolean value.
func Boolean(b bool) Value { return Value{dt: TypeBoolean, v: b} }

// Integer constructs an integer value from an int64.
func Integer(i int64) Value { return Value{dt: TypeInteger, v: big.NewInt(i)} }

// BigInteger constructs an integer value from an arbitrary-precision integer.
// The argument is not copied and must not be mutated afterwards.
func BigInteger(i *big.Int) Value { return Value{dt: TypeInteger, v: i} }

// Double constructs a double value.
func Double(f float64) Value { return Value{dt: TypeDouble, v: f} }

// Date constructs a date value. Only the date component is significant.
func Date(t time.Time) Value { return Value{dt: TypeDate, v: t} }

// Time constructs a time-of-day value anchored on the reference date.
func Time(t time.Time) Value { return Value{dt: TypeTime, v: t} }

// DateTime constructs a dateTime value.
func DateTime(t time.Time) Value { return Value{dt: TypeDateTime, v: t} }

// DayTimeDuration constructs a day-time duration value.
func DayTimeDuration(d time.Duration) Value { return Value{dt: TypeDayTimeDuration, v: d} }

// YearMonthDuration constructs a year-month duration value from a month count.
func YearMonthDuration(months int64) Value { return Value{dt: TypeYearMonthDuration, v: months} }

// AnyURI constructs an anyURI value.
func AnyURI(u string) Value { return Value{dt: TypeAnyURI, v: u} }

// HexBinary constructs a hexBinary value. The slice is not copied.
func HexBinary(b []byte) Value { return Value{dt: TypeHexBinary, v: b} }

// Base64Binary constructs a base64Binary value. The slice is not copied.
func Base64Binary(b []byte) Value { return Value{dt: TypeBase64Binary, v: b} }

// X500Name constructs an x500Name value from a normalized distinguished name.
func X500Name(dn string) Value { return Value{dt: TypeX500Name, v: dn} }

// RFC822Name constructs an rfc822Name value. The domain part must already be
// lower-cased (the parser does this).
func RFC822Name(name string) Value { return Value{dt: TypeRFC822Name, v: name} }

// DNSName constructs a dnsName value from a normalized host pattern.
func DNSName(name string) Value { return Value{dt: TypeDNSName, v: name} }

// IPAddress constructs an ipAddress value from a normalized address form.
func IPAddress(addr string) Value { return Value{dt: TypeIPAddress, v: addr} }

// Str returns the string payload of string-shaped values (string, anyURI,
// x500Name, rfc822Name, dnsName, ipAddress).
func (v Value) Str() string {
	s, _ := v.v.(string)
	return s
}

// Bool returns the boolean payload. Valid only for boolean values.
func (v Value) Bool() bool {
	b, _ := v.v.(bool)
	return b
}

// Int returns the integer payload. Valid only for integer values.
func (v Value) Int() *big.Int {
	i, _ := v.v.(*big.Int)
	return i
}

// Float returns the double payload. Valid only for double values.
func (v Value) Float() float64 {
	f, _ := v.v.(float64)
	return f
}

// Timestamp returns the temporal payload of date, time, and dateTime values.
func (v Value) Timestamp() time.Time {
	t, _ := v.v.(time.Time)
	return t
}

// Duration returns the day-time duration payload.
func (v Value) Duration() time.Duration {
	d, _ := v.v.(time.Duration)
	return d
}

// Months returns the year-month duration payload as a month count.
func (v Value) Months() int64 {
	m, _ := v.v.(int64)
	return m
}

// Bytes returns the binary payload of hexBinary and base64Binary values.
func (v Value) Bytes() []byte {
	b, _ := v.v.([]byte)
	return b
}

// Equal reports datatype-specific equality. Values of different datatypes
// are never equal. Double equality follows IEEE-754, so NaN is unequal to
// everything including itself.
func (v Value) Equal(o Value) bool {
	if v.dt != o.dt {
		return false
	}
	switch a := v.v.(type) {
	case string:
		return a == o.v.(string)
	case bool:
		return a == o.v.(bool)
	case *big.Int:
		return a.Cmp(o.v.(*big.Int)) == 0
	case float64:
		return a == o.v.(float64)
	case time.Time:
		return a.Equal(o.v.(time.Time))
	case time.Duration:
		return a == o.v.(time.Duration)
	case int64:
		return a == o.v.(int64)
	case []byte:
		return bytes.Equal(a, o.v.([]byte))
	default:
		return false
	}
}

// Compare orders two values of the same ordered datatype, returning a
// negative, zero, or positive result. Unordered datatypes and mixed-type
// comparisons return an error.
func (v Value) Compare(o Value) (int, error) {
	if v.dt != o.dt {
		return 0, fmt.Errorf("cannot compare %s with %s", v.dt, o.dt)
	}
	switch a := v.v.(type) {
	case string:
		if v.dt != TypeString {
			return 0, fmt.Errorf("datatype %s has no total order", v.dt)
		}
		b := o.v.(string)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case *big.Int:
		return a.Cmp(o.v.(*big.Int)), nil
	case float64:
		b := o.v.(float64)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		case a == b:
			return 0, nil
		default:
			return 0, fmt.Errorf("NaN is unordered")
		}
	case time.Time:
		return a.Compare(o.v.(time.Time)), nil
	case time.Duration:
		b := o.v.(time.Duration)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case int64:
		b := o.v.(int64)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("datatype %s has no total order", v.dt)
	}
}
