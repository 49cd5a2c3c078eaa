// Package tier classifies routing keys and queue names by deploy tier.
// This is part of the Functional Core - all functions are pure with no I/O.
package tier

import (
	"errors"
	"strings"
)

// =============================================================================
// Tier
// =============================================================================

// Tier selects which routing tokens a deployment consumes.
type Tier string

const (
	// Unspecified applies no filtering.
	Unspecified Tier = ""
	Large       Tier = "large"
	Small       Tier = "small"
	Critical    Tier = "critical"
)

// String returns the tier name, or "all" when unspecified.
func (t Tier) String() string {
	if t == Unspecified {
		return "all"
	}
	return string(t)
}

var (
	ErrNoTier           = errors.New("no deploy tier given")
	ErrConflictingTiers = errors.New("only one deploy tier may be given")
)

// FromFlags resolves the three mutually exclusive tier flags.
// No flag set yields Unspecified; more than one is ErrConflictingTiers.
func FromFlags(large, small, critical bool) (Tier, error) {
	selected := Unspecified
	n := 0
	if large {
		selected = Large
		n++
	}
	if small {
		selected = Small
		n++
	}
	if critical {
		selected = Critical
		n++
	}
	if n > 1 {
		return Unspecified, ErrConflictingTiers
	}
	return selected, nil
}

// Require is FromFlags for callers that cannot run without a tier.
func Require(large, small, critical bool) (Tier, error) {
	t, err := FromFlags(large, small, critical)
	if err != nil {
		return Unspecified, err
	}
	if t == Unspecified {
		return Unspecified, ErrNoTier
	}
	return t, nil
}

// =============================================================================
// Classification
// =============================================================================

// Set is a set of tiers.
type Set uint8

const (
	setLarge Set = 1 << iota
	setSmall
	setCritical
)

// Has reports whether t is in the set. Unspecified is in every set.
func (s Set) Has(t Tier) bool {
	switch t {
	case Unspecified:
		return true
	case Large:
		return s&setLarge != 0
	case Small:
		return s&setSmall != 0
	case Critical:
		return s&setCritical != 0
	}
	return false
}

// Tiers lists the members of the set in large, small, critical order.
func (s Set) Tiers() []Tier {
	var out []Tier
	for _, t := range []Tier{Large, Small, Critical} {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Classify returns every tier whose rule accepts token.
//
//   - large:    token starts with "large"
//   - critical: token contains "critical"
//   - small:    token contains "infer" and neither "large" nor "critical"
//
// The rules overlap: "large.x.critical" is both large and critical.
func Classify(token string) Set {
	var s Set
	if strings.HasPrefix(token, "large") {
		s |= setLarge
	}
	if strings.Contains(token, "critical") {
		s |= setCritical
	}
	if strings.Contains(token, "infer") &&
		!strings.Contains(token, "large") &&
		!strings.Contains(token, "critical") {
		s |= setSmall
	}
	return s
}

// =============================================================================
// Filtering
// =============================================================================

// FilterRoutingList keeps the comma-separated tokens of value that belong
// to t, in their original order. Unspecified returns value unchanged.
// An active tier with no surviving tokens yields "".
//
// Example:
//
//	FilterRoutingList("large_x,x_critical,y_infer,z", Large) // returns "large_x"
func FilterRoutingList(value string, t Tier) string {
	if t == Unspecified {
		return value
	}

	tokens := strings.Split(value, ",")
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if Classify(tok).Has(t) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, ",")
}

// IsRoutingKey reports whether an environment variable name holds a
// routing list, i.e. contains "queue" or "key" in any case.
func IsRoutingKey(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "queue") || strings.Contains(lower, "key")
}
