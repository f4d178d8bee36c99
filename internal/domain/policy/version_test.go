package policy

import "testing"

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.2.3")
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	if v.String() != "1.2.3" {
		t.Errorf("String() = %s", v)
	}
	for _, bad := range []string{"", "1..2", "a.b", "-1", "1.-2"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Errorf("ParseVersion(%q) succeeded", bad)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"2.0", "1.9", 1},
		{"1.0", "1.0.1", -1},
		{"1.10", "1.9", 1},
	}
	for _, tt := range tests {
		a, _ := ParseVersion(tt.a)
		b, _ := ParseVersion(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersionPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		version string
		want    bool
	}{
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"1.*.3", "1.9.3", true},
		{"1.*.3", "1.3", false},
		{"1.+", "1", true},
		{"1.+", "1.2.3.4", true},
		{"2.+", "1.2", false},
		{"+.3", "1.2.3", true},
		{"+.3", "3", true},
		{"*", "7", true},
		{"*", "1.2", false},
	}
	for _, tt := range tests {
		p, err := ParseVersionPattern(tt.pattern)
		if err != nil {
			t.Fatalf("ParseVersionPattern(%q): %v", tt.pattern, err)
		}
		v, _ := ParseVersion(tt.version)
		if got := p.Match(v); got != tt.want {
			t.Errorf("%q.Match(%s) = %v, want %v", tt.pattern, tt.version, got, tt.want)
		}
	}
}

func TestVersionConstraints(t *testing.T) {
	pattern, _ := ParseVersionPattern("1.+")
	earliest, _ := ParseVersion("1.2")
	latest, _ := ParseVersion("1.5")
	c := &VersionConstraints{Version: pattern, Earliest: earliest, Latest: latest}

	accept := func(s string) bool {
		v, _ := ParseVersion(s)
		return c.Accepts(v)
	}
	if !accept("1.3") {
		t.Error("1.3 rejected")
	}
	if accept("1.1") {
		t.Error("1.1 accepted below earliest")
	}
	if accept("1.6") {
		t.Error("1.6 accepted above latest")
	}
	if accept("2.0") {
		t.Error("2.0 accepted against pattern")
	}
	var nilC *VersionConstraints
	v, _ := ParseVersion("9.9")
	if !nilC.Accepts(v) {
		t.Error("nil constraints rejected a version")
	}
}
