// Package policy implements the rule, policy, and policy-set evaluators,
// policy versions, and the compiler that turns parsed policy documents into
// frozen evaluator trees.
package policy

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted numeric policy version, compared component-wise with
// shorter versions ranking below longer ones sharing a prefix.
type Version []int

// ParseVersion parses a dotted numeric version such as "1.2.3".
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return nil, fmt.Errorf("empty version")
	}
	parts := strings.Split(s, ".")
	v := make(Version, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q", s)
		}
		v[i] = n
	}
	return v, nil
}

// Compare orders two versions component-wise.
func (v Version) Compare(o Version) int {
	for i := 0; i < len(v) && i < len(o); i++ {
		if v[i] != o[i] {
			if v[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(v) < len(o):
		return -1
	case len(v) > len(o):
		return 1
	default:
		return 0
	}
}

// String renders the dotted form.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// VersionPattern matches policy versions: a literal component matches
// itself, "*" matches any single component, and "+" matches any sequence of
// components including the empty one.
type VersionPattern []string

// ParseVersionPattern parses a version pattern such as "1.+" or "2.*.1".
func ParseVersionPattern(s string) (VersionPattern, error) {
	if s == "" {
		return nil, fmt.Errorf("empty version pattern")
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "*" || p == "+" {
			continue
		}
		if n, err := strconv.Atoi(p); err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version pattern %q", s)
		}
	}
	return VersionPattern(parts), nil
}

// Match reports whether the version matches the pattern.
func (p VersionPattern) Match(v Version) bool {
	return matchPattern(p, v)
}

func matchPattern(pat []string, v Version) bool {
	if len(pat) == 0 {
		return len(v) == 0
	}
	switch pat[0] {
	case "+":
		// "+" absorbs any number of leading components.
		for i := 0; i <= len(v); i++ {
			if matchPattern(pat[1:], v[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(v) > 0 && matchPattern(pat[1:], v[1:])
	default:
		n, _ := strconv.Atoi(pat[0])
		return len(v) > 0 && v[0] == n && matchPattern(pat[1:], v[1:])
	}
}

// String renders the dotted pattern form.
func (p VersionPattern) String() string { return strings.Join(p, ".") }

// VersionConstraints restricts which versions of a referenced policy are
// acceptable. A nil field leaves that bound unconstrained.
type VersionConstraints struct {
	// Version must match exactly (by pattern).
	Version VersionPattern
	// Earliest is the inclusive lower bound.
	Earliest Version
	// Latest is the inclusive upper bound.
	Latest Version
}

// Accepts reports whether the version satisfies all configured constraints.
func (c *VersionConstraints) Accepts(v Version) bool {
	if c == nil {
		return true
	}
	if c.Version != nil && !c.Version.Match(v) {
		return false
	}
	if c.Earliest != nil && v.Compare(c.Earliest) < 0 {
		return false
	}
	if c.Latest != nil && v.Compare(c.Latest) > 0 {
		return false
	}
	return true
}
