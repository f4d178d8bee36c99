package value

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeRefDate anchors time-of-day values so they compare on a shared day.
var timeRefDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	dayTimeDurationPattern   = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	yearMonthDurationPattern = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?$`)
	dnsNamePattern           = regexp.MustCompile(`^(\*\.)?[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?(:\d*-?\d*)?$|^\*(:\d*-?\d*)?$`)
	ipv4Pattern              = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}(/\d{1,3}(\.\d{1,3}){3})?(:\d*-?\d*)?$`)
	rfc822NamePattern        = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

// ParseString parses a string value. Every input is a valid string.
func ParseString(s string) (Value, error) { return String(s), nil }

// ParseBoolean parses the XML Schema boolean lexical forms.
func ParseBoolean(s string) (Value, error) {
	switch s {
	case "true", "1":
		return Boolean(true), nil
	case "false", "0":
		return Boolean(false), nil
	}
	return Value{}, fmt.Errorf("invalid boolean %q", s)
}

// ParseInteger parses an arbitrary-precision decimal integer.
func ParseInteger(s string) (Value, error) {
	i, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
	if !ok {
		return Value{}, fmt.Errorf("invalid integer %q", s)
	}
	return BigInteger(i), nil
}

// ParseDouble parses an IEEE-754 double, accepting the XML Schema spellings
// INF, -INF, and NaN.
func ParseDouble(s string) (Value, error) {
	switch s {
	case "INF":
		return Double(math.Inf(1)), nil
	case "-INF":
		return Double(math.Inf(-1)), nil
	case "NaN":
		return Double(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid double %q", s)
	}
	return Double(f), nil
}

// parseTemporal tries a list of layouts and returns the first match.
func parseTemporal(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid temporal value %q", s)
}

// ParseDateTime parses an XML Schema dateTime. Values without an explicit
// timezone are interpreted as UTC.
func ParseDateTime(s string) (Value, error) {
	t, err := parseTemporal(s, []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999",
	})
	if err != nil {
		return Value{}, err
	}
	return DateTime(t), nil
}

// ParseDate parses an XML Schema date. Values without an explicit timezone
// are interpreted as UTC.
func ParseDate(s string) (Value, error) {
	t, err := parseTemporal(s, []string{
		"2006-01-02Z07:00",
		"2006-01-02",
	})
	if err != nil {
		return Value{}, err
	}
	return Date(t), nil
}

// ParseTime parses an XML Schema time-of-day, anchored on a fixed reference
// date so that values are mutually comparable.
func ParseTime(s string) (Value, error) {
	t, err := parseTemporal(s, []string{
		"15:04:05.999999999Z07:00",
		"15:04:05.999999999",
	})
	if err != nil {
		return Value{}, err
	}
	t = time.Date(timeRefDate.Year(), timeRefDate.Month(), timeRefDate.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	return Time(t), nil
}

// ParseDayTimeDuration parses an XML Schema dayTimeDuration (PnDTnHnMnS).
func ParseDayTimeDuration(s string) (Value, error) {
	m := dayTimeDurationPattern.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "") {
		return Value{}, fmt.Errorf("invalid dayTimeDuration %q", s)
	}
	var d time.Duration
	if m[2] != "" {
		days, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid dayTimeDuration %q", s)
		}
		d += time.Duration(days) * 24 * time.Hour
	}
	if m[3] != "" {
		hours, _ := strconv.ParseInt(m[3], 10, 64)
		d += time.Duration(hours) * time.Hour
	}
	if m[4] != "" {
		mins, _ := strconv.ParseInt(m[4], 10, 64)
		d += time.Duration(mins) * time.Minute
	}
	if m[5] != "" {
		secs, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid dayTimeDuration %q", s)
		}
		d += time.Duration(secs * float64(time.Second))
	}
	if m[1] == "-" {
		d = -d
	}
	return DayTimeDuration(d), nil
}

// ParseYearMonthDuration parses an XML Schema yearMonthDuration (PnYnM).
func ParseYearMonthDuration(s string) (Value, error) {
	m := yearMonthDurationPattern.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "") {
		return Value{}, fmt.Errorf("invalid yearMonthDuration %q", s)
	}
	var months int64
	if m[2] != "" {
		years, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid yearMonthDuration %q", s)
		}
		months += years * 12
	}
	if m[3] != "" {
		mm, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid yearMonthDuration %q", s)
		}
		months += mm
	}
	if m[1] == "-" {
		months = -months
	}
	return YearMonthDuration(months), nil
}

// ParseAnyURI parses an anyURI value.
func ParseAnyURI(s string) (Value, error) {
	if _, err := url.Parse(s); err != nil {
		return Value{}, fmt.Errorf("invalid anyURI %q: %w", s, err)
	}
	return AnyURI(s), nil
}

// ParseHexBinary parses a hexBinary value.
func ParseHexBinary(s string) (Value, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Value{}, fmt.Errorf("invalid hexBinary %q", s)
	}
	return HexBinary(b), nil
}

// ParseBase64Binary parses a base64Binary value.
func ParseBase64Binary(s string) (Value, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Value{}, fmt.Errorf("invalid base64Binary %q", s)
	}
	return Base64Binary(b), nil
}

// ParseX500Name parses an X.500 distinguished name. Comparison is on the
// normalized form: component separators tightened and attribute type
// identifiers lower-cased.
func ParseX500Name(s string) (Value, error) {
	if strings.TrimSpace(s) == "" {
		return Value{}, fmt.Errorf("invalid x500Name %q", s)
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if eq := strings.Index(p, "="); eq > 0 {
			p = strings.ToLower(strings.TrimSpace(p[:eq])) + "=" + strings.TrimSpace(p[eq+1:])
		} else {
			return Value{}, fmt.Errorf("invalid x500Name component %q", p)
		}
		parts[i] = p
	}
	return X500Name(strings.Join(parts, ",")), nil
}

// ParseRFC822Name parses an email-style name. The local part is
// case-sensitive; the domain part is lower-cased for comparison.
func ParseRFC822Name(s string) (Value, error) {
	if !rfc822NamePattern.MatchString(s) {
		return Value{}, fmt.Errorf("invalid rfc822Name %q", s)
	}
	at := strings.LastIndex(s, "@")
	return RFC822Name(s[:at+1] + strings.ToLower(s[at+1:])), nil
}

// ParseDNSName parses a DNS host pattern with an optional leading wildcard
// and an optional port or port range suffix.
func ParseDNSName(s string) (Value, error) {
	if !dnsNamePattern.MatchString(s) {
		return Value{}, fmt.Errorf("invalid dnsName %q", s)
	}
	return DNSName(strings.ToLower(s)), nil
}

// ParseIPAddress parses an IPv4 or IPv6 address with an optional mask and
// port range.
func ParseIPAddress(s string) (Value, error) {
	if strings.HasPrefix(s, "[") {
		// IPv6 form: [addr](/[mask])?(:portrange)?  — validated structurally.
		if !strings.Contains(s, "]") {
			return Value{}, fmt.Errorf("invalid ipAddress %q", s)
		}
		return IPAddress(strings.ToLower(s)), nil
	}
	if !ipv4Pattern.MatchString(s) {
		return Value{}, fmt.Errorf("invalid ipAddress %q", s)
	}
	return IPAddress(s), nil
}

// Canonical returns the canonical string serialization of the value.
func (v Value) Canonical() string {
	switch v.dt {
	case TypeBoolean:
		return strconv.FormatBool(v.Bool())
	case TypeInteger:
		return v.Int().String()
	case TypeDouble:
		f := v.Float()
		switch {
		case math.IsInf(f, 1):
			return "INF"
		case math.IsInf(f, -1):
			return "-INF"
		case math.IsNaN(f):
			return "NaN"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case TypeDateTime:
		return v.Timestamp().Format("2006-01-02T15:04:05.999999999Z07:00")
	case TypeDate:
		return v.Timestamp().Format("2006-01-02Z07:00")
	case TypeTime:
		return v.Timestamp().Format("15:04:05.999999999Z07:00")
	case TypeDayTimeDuration:
		return formatDayTimeDuration(v.Duration())
	case TypeYearMonthDuration:
		return formatYearMonthDuration(v.Months())
	case TypeHexBinary:
		return hex.EncodeToString(v.Bytes())
	case TypeBase64Binary:
		return base64.StdEncoding.EncodeToString(v.Bytes())
	default:
		return v.Str()
	}
}

func formatDayTimeDuration(d time.Duration) string {
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
	}
	if d > 0 || days == 0 {
		sb.WriteByte('T')
		hours := d / time.Hour
		d -= hours * time.Hour
		mins := d / time.Minute
		d -= mins * time.Minute
		secs := d.Seconds()
		if hours > 0 {
			fmt.Fprintf(&sb, "%dH", hours)
		}
		if mins > 0 {
			fmt.Fprintf(&sb, "%dM", mins)
		}
		if secs > 0 || (hours == 0 && mins == 0) {
			fmt.Fprintf(&sb, "%gS", secs)
		}
	}
	return sb.String()
}

func formatYearMonthDuration(months int64) string {
	var sb strings.Builder
	if months < 0 {
		sb.WriteByte('-')
		months = -months
	}
	sb.WriteByte('P')
	years := months / 12
	months -= years * 12
	if years > 0 {
		fmt.Fprintf(&sb, "%dY", years)
	}
	if months > 0 || years == 0 {
		fmt.Fprintf(&sb, "%dM", months)
	}
	return sb.String()
}
