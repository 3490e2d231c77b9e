package model

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

const (
	// CurrentSchemaVersion is the schema version written by this package.
	CurrentSchemaVersion = "2.0.0"

	// LegacySchemaVersion is the schema version of the list-based state file.
	LegacySchemaVersion = "1.0.0"
)

// ParseVersion parses v leniently: a leading "v" and missing minor or patch
// components are accepted.
func ParseVersion(v string) (semver.Version, error) {
	return semver.ParseTolerant(strings.TrimSpace(v))
}

// CompareVersions compares two version strings. ok is false when either side
// is not a semantic version.
func CompareVersions(a, b string) (cmp int, ok bool) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, false
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, false
	}
	return va.Compare(vb), true
}

// ParseRange parses a version requirement. Besides the comparator syntax of
// blang/semver it accepts "*" or "" (any version), caret and tilde
// requirements, comma separated comparators and bare versions, which are
// treated as caret requirements.
func ParseRange(r string) (semver.Range, error) {
	if IsAnyRange(r) {
		return func(semver.Version) bool { return true }, nil
	}
	r = strings.TrimSpace(r)

	var alts []string
	for _, alt := range strings.Split(r, "||") {
		norm, err := normalizeComparators(alt)
		if err != nil {
			return nil, fmt.Errorf("parse range %q: %w", r, err)
		}
		alts = append(alts, norm)
	}
	rng, err := semver.ParseRange(strings.Join(alts, " || "))
	if err != nil {
		return nil, fmt.Errorf("parse range %q: %w", r, err)
	}
	return rng, nil
}

// IsAnyRange reports whether r accepts every version.
func IsAnyRange(r string) bool {
	r = strings.TrimSpace(r)
	return r == "" || r == "*"
}

// MatchesRange reports whether version v satisfies requirement r. An empty
// or "*" requirement matches any v, including unparsable ones such as "dev".
// Otherwise unparsable input never matches.
func MatchesRange(v, r string) bool {
	if IsAnyRange(r) {
		return true
	}
	ver, err := ParseVersion(v)
	if err != nil {
		return false
	}
	rng, err := ParseRange(r)
	if err != nil {
		return false
	}
	return rng(ver)
}

func normalizeComparators(alt string) (string, error) {
	fields := strings.Fields(strings.ReplaceAll(alt, ",", " "))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty requirement")
	}

	// join operators separated from their version by whitespace
	var tokens []string
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.Trim(f, "<>=!^~") == "" && i+1 < len(fields) {
			f += fields[i+1]
			i++
		}
		tokens = append(tokens, f)
	}

	var out []string
	for _, tok := range tokens {
		if tok == "*" {
			out = append(out, ">=0.0.0")
			continue
		}
		op, rest := splitOperator(tok)
		v, err := ParseVersion(rest)
		if err != nil {
			return "", fmt.Errorf("comparator %q: %w", tok, err)
		}
		switch op {
		case "^", "":
			out = append(out, ">="+v.String(), "<"+caretUpper(v).String())
		case "~":
			upper := semver.Version{Major: v.Major, Minor: v.Minor + 1}
			out = append(out, ">="+v.String(), "<"+upper.String())
		default:
			out = append(out, op+v.String())
		}
	}
	return strings.Join(out, " "), nil
}

func splitOperator(tok string) (op, rest string) {
	for _, candidate := range []string{">=", "<=", "!=", ">", "<", "=", "^", "~"} {
		if strings.HasPrefix(tok, candidate) {
			return candidate, tok[len(candidate):]
		}
	}
	return "", tok
}

func caretUpper(v semver.Version) semver.Version {
	switch {
	case v.Major > 0:
		return semver.Version{Major: v.Major + 1}
	case v.Minor > 0:
		return semver.Version{Minor: v.Minor + 1}
	default:
		return semver.Version{Patch: v.Patch + 1}
	}
}
