package gesture

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePattern is returned when two rules share a finger pattern.
	ErrDuplicatePattern = errors.New("duplicate finger pattern")
	// ErrNoLabels is returned for a rule without candidate labels.
	ErrNoLabels = errors.New("rule has no labels")
	// ErrUnknownLabel is returned for a label outside the vocabulary.
	ErrUnknownLabel = errors.New("unknown gesture label")
)

// Rule maps a finger pattern to its candidate labels. The first label is
// the one reported; the rest are alternates sharing the same pattern.
type Rule struct {
	Pattern FingerStatus `json:"pattern"`
	Labels  []Label      `json:"labels"`
}

// Label returns the reported label of the rule.
func (r Rule) Label() Label {
	if len(r.Labels) == 0 {
		return Unknown
	}
	return r.Labels[0]
}

// Alternates returns the candidates after the first.
func (r Rule) Alternates() []Label {
	if len(r.Labels) < 2 {
		return nil
	}
	return r.Labels[1:]
}

// Ruleset is an ordered list of rules with unique patterns.
type Ruleset struct {
	rules []Rule
	index map[FingerStatus]int
}

// NewRuleset validates rules and builds a lookup table. Rules keep their
// order for listing; patterns must be unique.
func NewRuleset(rules ...Rule) (*Ruleset, error) {
	rs := &Ruleset{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[FingerStatus]int, len(rules)),
	}

	for i, r := range rules {
		if len(r.Labels) == 0 {
			return nil, fmt.Errorf("rule %d %s: %w", i, r.Pattern, ErrNoLabels)
		}
		for _, l := range r.Labels {
			if !l.Valid() {
				return nil, fmt.Errorf("rule %d %s: %w: %q", i, r.Pattern, ErrUnknownLabel, l)
			}
		}
		if prev, ok := rs.index[r.Pattern]; ok {
			return nil, fmt.Errorf("rule %d %s (%s) repeats rule %d (%s): %w",
				i, r.Pattern, r.Label(), prev, rs.rules[prev].Label(), ErrDuplicatePattern)
		}

		labels := make([]Label, len(r.Labels))
		copy(labels, r.Labels)
		rs.index[r.Pattern] = len(rs.rules)
		rs.rules = append(rs.rules, Rule{Pattern: r.Pattern, Labels: labels})
	}

	return rs, nil
}

// MustRuleset is like NewRuleset but panics on error. It is meant for
// package-level tables.
func MustRuleset(rules ...Rule) *Ruleset {
	rs, err := NewRuleset(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Lookup returns the rule whose pattern equals status.
func (rs *Ruleset) Lookup(status FingerStatus) (Rule, bool) {
	i, ok := rs.index[status]
	if !ok {
		return Rule{}, false
	}
	return rs.rules[i], true
}

// Rules returns a copy of the rules in order.
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *Ruleset) Len() int { return len(rs.rules) }

// Reported returns every label a classifier using rs can report: each
// rule's first label in order, then OK and Unknown. Alternates are not
// included.
func (rs *Ruleset) Reported() []Label {
	out := make([]Label, 0, len(rs.rules)+2)
	for _, r := range rs.rules {
		out = append(out, r.Label())
	}
	return append(out, OK, Unknown)
}

// Reports reports whether label is in Reported.
func (rs *Ruleset) Reports(label Label) bool {
	for _, l := range rs.Reported() {
		if l == label {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in gesture table.
//
// One Finger and Pointing describe the same pattern. One Finger is
// reported and Pointing is kept as an alternate.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: Status(0, 0, 0, 0, 0), Labels: []Label{Fist}},
		{Pattern: Status(1, 1, 1, 1, 1), Labels: []Label{OpenPalm}},
		{Pattern: Status(0, 1, 0, 0, 0), Labels: []Label{OneFinger, Pointing}},
		{Pattern: Status(0, 1, 1, 0, 0), Labels: []Label{Peace}},
		{Pattern: Status(1, 0, 0, 0, 0), Labels: []Label{ThumbsUp}},
		{Pattern: Status(1, 0, 0, 0, 1), Labels: []Label{CallMe}},
	}
}

// DefaultRuleset is the validated DefaultRules table.
var DefaultRuleset = MustRuleset(DefaultRules()...)

// Shadow describes a rule that can never match because an earlier rule
// has the same pattern.
type Shadow struct {
	Index   int
	Rule    Rule
	ByIndex int
	ByRule  Rule
}

func (s Shadow) String() string {
	return fmt.Sprintf("rule %d %s (%s) is shadowed by rule %d (%s)",
		s.Index, s.Rule.Pattern, s.Rule.Label(), s.ByIndex, s.ByRule.Label())
}

// Shadowed checks an ordered first-match rule list and reports every rule
// made unreachable by an earlier one.
func Shadowed(rules []Rule) []Shadow {
	var out []Shadow
	first := make(map[FingerStatus]int, len(rules))
	for i, r := range rules {
		if j, ok := first[r.Pattern]; ok {
			out = append(out, Shadow{Index: i, Rule: r, ByIndex: j, ByRule: rules[j]})
			continue
		}
		first[r.Pattern] = i
	}
	return out
}
