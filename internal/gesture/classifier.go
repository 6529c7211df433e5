package gesture

import "github.com/ayusman/mudra/internal/detector"

// DefaultOKThreshold is the thumb-tip to index-tip distance, in normalized
// frame units, below which an unmatched pose is read as OK. It does not
// scale with hand size, so accuracy depends on distance to the camera.
const DefaultOKThreshold = 0.05

// Source tells how a label was reached.
type Source string

const (
	SourceRule     Source = "rule"
	SourceDistance Source = "distance"
	SourceNone     Source = "none"
)

// Result is the outcome of recognizing one hand.
type Result struct {
	Status     FingerStatus `json:"status"`
	Label      Label        `json:"label"`
	Alternates []Label      `json:"alternates,omitempty"`
	Source     Source       `json:"source"`
	// Distance is the thumb-to-index tip distance. It is only computed
	// when no rule matched.
	Distance float64 `json:"distance,omitempty"`
}

// Classifier maps finger statuses to labels. The zero value is not
// usable; use NewClassifier.
type Classifier struct {
	rules       *Ruleset
	extractor   Extractor
	okThreshold float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRuleset replaces the default rule table.
func WithRuleset(rs *Ruleset) Option {
	return func(c *Classifier) {
		if rs != nil {
			c.rules = rs
		}
	}
}

// WithExtractor sets how hands are reduced to finger statuses.
func WithExtractor(e Extractor) Option {
	return func(c *Classifier) { c.extractor = e }
}

// WithOKThreshold sets the OK distance threshold. Non-positive values are ignored.
func WithOKThreshold(t float64) Option {
	return func(c *Classifier) {
		if t > 0 {
			c.okThreshold = t
		}
	}
}

// NewClassifier creates a Classifier using DefaultRuleset, DefaultExtractor
// and DefaultOKThreshold unless overridden.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		rules:       DefaultRuleset,
		extractor:   DefaultExtractor,
		okThreshold: DefaultOKThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ruleset returns the rules in use.
func (c *Classifier) Ruleset() *Ruleset { return c.rules }

// OKThreshold returns the OK distance threshold in use.
func (c *Classifier) OKThreshold() float64 { return c.okThreshold }

// Classify returns the label for status. Rules are consulted first; only
// when none matches is the thumb-to-index distance of hand checked.
// Every input yields exactly one label.
func (c *Classifier) Classify(status FingerStatus, hand *detector.HandLandmarks) Label {
	return c.classify(status, hand).Label
}

// Recognize extracts the finger status of hand and classifies it.
func (c *Classifier) Recognize(hand *detector.HandLandmarks) Result {
	return c.classify(c.extractor.Extract(hand), hand)
}

func (c *Classifier) classify(status FingerStatus, hand *detector.HandLandmarks) Result {
	if rule, ok := c.rules.Lookup(status); ok {
		return Result{
			Status:     status,
			Label:      rule.Label(),
			Alternates: rule.Alternates(),
			Source:     SourceRule,
		}
	}

	d := hand.Distance2D(detector.ThumbTip, detector.IndexTip)
	if d < c.okThreshold {
		return Result{Status: status, Label: OK, Source: SourceDistance, Distance: d}
	}
	return Result{Status: status, Label: Unknown, Source: SourceNone, Distance: d}
}

var defaultClassifier = NewClassifier()

// Classify classifies status with the default classifier.
func Classify(status FingerStatus, hand *detector.HandLandmarks) Label {
	return defaultClassifier.Classify(status, hand)
}
