package value

import (
	"math"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		datatype string
		input    string
		want     string // canonical form; empty means same as input
	}{
		{"string", TypeString, "hello", ""},
		{"boolean true", TypeBoolean, "true", ""},
		{"boolean numeric", TypeBoolean, "1", "true"},
		{"integer", TypeInteger, "42", ""},
		{"integer negative", TypeInteger, "-7", ""},
		{"integer big", TypeInteger, "123456789012345678901234567890", ""},
		{"double", TypeDouble, "1.5", ""},
		{"double inf", TypeDouble, "INF", ""},
		{"dateTime", TypeDateTime, "2002-05-30T09:30:10-06:00", ""},
		{"date", TypeDate, "2002-09-24", "2002-09-24Z"},
		{"time", TypeTime, "09:30:10Z", ""},
		{"dayTimeDuration", TypeDayTimeDuration, "P1DT2H", ""},
		{"yearMonthDuration", TypeYearMonthDuration, "P1Y2M", ""},
		{"anyURI", TypeAnyURI, "http://example.com/a", ""},
		{"hexBinary", TypeHexBinary, "0a0b", ""},
		{"base64Binary", TypeBase64Binary, "aGVsbG8=", ""},
		{"x500Name", TypeX500Name, "CN=Julius Hibbert, O=Medico", "cn=Julius Hibbert,o=Medico"},
		{"rfc822Name", TypeRFC822Name, "Anderson@SUN.COM", "Anderson@sun.com"},
		{"dnsName", TypeDNSName, "Example.COM", "example.com"},
		{"ipAddress", TypeIPAddress, "10.0.0.1", ""},
	}

	reg := NewRegistry()
	if err := reg.RegisterStandard(); err != nil {
		t.Fatalf("RegisterStandard: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := reg.Parse(tt.datatype, tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			want := tt.want
			if want == "" {
				want = tt.input
			}
			if got := v.Canonical(); got != want {
				t.Errorf("Canonical() = %q, want %q", got, want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		datatype string
		input    string
	}{
		{"boolean junk", TypeBoolean, "yes"},
		{"integer junk", TypeInteger, "4.5"},
		{"double junk", TypeDouble, "one"},
		{"dateTime junk", TypeDateTime, "yesterday"},
		{"duration junk", TypeDayTimeDuration, "P"},
		{"yearMonth junk", TypeYearMonthDuration, "1Y"},
		{"hex odd", TypeHexBinary, "0a0"},
		{"rfc822 no at", TypeRFC822Name, "not-an-email"},
		{"x500 no eq", TypeX500Name, "justaname"},
	}
	reg := NewRegistry()
	if err := reg.RegisterStandard(); err != nil {
		t.Fatalf("RegisterStandard: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Parse(tt.datatype, tt.input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestEqualitySemantics(t *testing.T) {
	if !Integer(5).Equal(Integer(5)) {
		t.Error("equal integers compare unequal")
	}
	if Integer(5).Equal(Double(5)) {
		t.Error("values of different datatypes compare equal")
	}
	nan := Double(math.NaN())
	if nan.Equal(nan) {
		t.Error("NaN compares equal to itself")
	}

	dt1, _ := ParseDateTime("2002-05-30T09:30:10-06:00")
	dt2, _ := ParseDateTime("2002-05-30T15:30:10Z")
	if !dt1.Equal(dt2) {
		t.Error("same instant in different zones compares unequal")
	}
}

func TestCompare(t *testing.T) {
	c, err := Integer(3).Compare(Integer(5))
	if err != nil || c >= 0 {
		t.Errorf("3 < 5: got (%d, %v)", c, err)
	}
	c, err = String("b").Compare(String("a"))
	if err != nil || c <= 0 {
		t.Errorf("b > a: got (%d, %v)", c, err)
	}
	if _, err := Boolean(true).Compare(Boolean(false)); err == nil {
		t.Error("boolean comparison succeeded, want error")
	}
	if _, err := Integer(1).Compare(Double(1)); err == nil {
		t.Error("cross-type comparison succeeded, want error")
	}
}

func TestBagMultisetEquality(t *testing.T) {
	a := BagOf(String("x"), String("y"), String("x"))
	b := BagOf(String("y"), String("x"), String("x"))
	c := BagOf(String("x"), String("y"))

	if !a.Equal(b) {
		t.Error("permuted bags compare unequal")
	}
	if a.Equal(c) {
		t.Error("bags with different multiplicity compare equal")
	}
	if !SetEquals(a, c) {
		t.Error("SetEquals should ignore multiplicity")
	}
}

func TestBagSetOperations(t *testing.T) {
	a := BagOf(Integer(1), Integer(2), Integer(2))
	b := BagOf(Integer(2), Integer(3))

	if got := Intersection(a, b); got.Size() != 1 || !got.Contains(Integer(2)) {
		t.Errorf("Intersection = %d elements", got.Size())
	}
	if got := Union(a, b); got.Size() != 3 {
		t.Errorf("Union has %d distinct elements, want 3", got.Size())
	}
	if !AtLeastOneMemberOf(a, b) {
		t.Error("AtLeastOneMemberOf(a, b) = false")
	}
	if Subset(a, b) {
		t.Error("Subset(a, b) = true")
	}
	if !Subset(BagOf(Integer(2)), a) {
		t.Error("Subset({2}, a) = false")
	}
}

func TestNewBagRejectsMixedTypes(t *testing.T) {
	if _, err := NewBag(TypeString, String("ok"), Integer(1)); err == nil {
		t.Error("NewBag accepted a mixed-type element list")
	}
}

func TestRegistryFreeze(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterStandard(); err != nil {
		t.Fatalf("RegisterStandard: %v", err)
	}
	reg.Freeze()
	err := reg.Register(Datatype{ID: "urn:example:custom", Parse: ParseString})
	if err == nil {
		t.Error("Register after Freeze succeeded")
	}
}

func TestRegistryCustomDatatype(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Datatype{ID: "urn:example:upper", Parse: ParseString}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(Datatype{ID: "urn:example:upper", Parse: ParseString}); err == nil {
		t.Error("duplicate registration succeeded")
	}
}
