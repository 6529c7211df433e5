package gesture

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
)

func TestClassify_Patterns(t *testing.T) {
	hand := detector.OpenPalmLandmarks()

	tests := []struct {
		status FingerStatus
		want   Label
	}{
		{Status(0, 0, 0, 0, 0), Fist},
		{Status(1, 1, 1, 1, 1), OpenPalm},
		{Status(0, 1, 0, 0, 0), OneFinger},
		{Status(0, 1, 1, 0, 0), Peace},
		{Status(1, 0, 0, 0, 0), ThumbsUp},
		{Status(1, 0, 0, 0, 1), CallMe},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, &hand))
		})
	}
}

func TestClassify_PatternBeatsLandmarks(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		hand := randomHand(r)
		assert.Equal(t, Fist, Classify(Status(0, 0, 0, 0, 0), &hand))
		assert.Equal(t, OpenPalm, Classify(Status(1, 1, 1, 1, 1), &hand))
	}
}

func TestClassify_Deterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 500; i++ {
		hand := randomHand(r)
		status := ExtractFingerStatus(&hand)
		first := Classify(status, &hand)
		assert.Equal(t, first, Classify(status, &hand))
		assert.True(t, first.Valid())
	}
}

func TestClassify_Fallback(t *testing.T) {
	unmatched := []FingerStatus{
		Status(1, 1, 0, 0, 0),
		Status(0, 0, 1, 1, 1),
		Status(1, 1, 1, 0, 0),
		Status(0, 0, 0, 0, 1),
	}

	place := func(dx, dy float64) detector.HandLandmarks {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: 0.5}
		hand.Points[detector.IndexTip] = detector.Point3D{X: 0.5 + dx, Y: 0.5 + dy}
		return hand
	}

	tests := []struct {
		name   string
		dx, dy float64
		want   Label
	}{
		{"touching", 0, 0, OK},
		{"close diagonal", 0.03, 0.03, OK},
		{"just under", 0.0499, 0, OK},
		{"at threshold", 0.05, 0, Unknown},
		{"far", 0.3, 0.1, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := place(tt.dx, tt.dy)
			for _, s := range unmatched {
				assert.Equal(t, tt.want, Classify(s, &hand), "status %s", s)
			}
		})
	}

	t.Run("depth is ignored", func(t *testing.T) {
		hand := place(0.01, 0.01)
		hand.Points[detector.IndexTip].Z = 0.9
		assert.Equal(t, OK, Classify(Status(1, 1, 0, 0, 0), &hand))
	})
}

func TestClassify_Scenarios(t *testing.T) {
	t.Run("open palm", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip].X = 0.3
		hand.Points[detector.ThumbMCP].X = 0.4
		for _, tip := range detector.FingerTips {
			hand.Points[tip].Y = 0.2
			hand.Points[tip-2].Y = 0.4
		}

		res := NewClassifier().Recognize(&hand)
		assert.Equal(t, Status(1, 1, 1, 1, 1), res.Status)
		assert.Equal(t, OpenPalm, res.Label)
	})

	t.Run("fist", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip].X = 0.5
		hand.Points[detector.ThumbMCP].X = 0.4
		for _, tip := range detector.FingerTips {
			hand.Points[tip].Y = 0.7
			hand.Points[tip-2].Y = 0.4
		}

		res := NewClassifier().Recognize(&hand)
		assert.Equal(t, Status(0, 0, 0, 0, 0), res.Status)
		assert.Equal(t, Fist, res.Label)
	})

	t.Run("pattern precedes distance check", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: 0.5}
		hand.Points[detector.IndexTip] = detector.Point3D{X: 0.5, Y: 0.5}

		assert.Equal(t, ThumbsUp, Classify(Status(1, 0, 0, 0, 0), &hand))
	})
}

func TestClassifier_Recognize(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name       string
		hand       detector.HandLandmarks
		want       Label
		source     Source
		alternates []Label
	}{
		{name: "fist", hand: detector.FistLandmarks(), want: Fist, source: SourceRule},
		{name: "open palm", hand: detector.OpenPalmLandmarks(), want: OpenPalm, source: SourceRule},
		{name: "one finger", hand: detector.OneFingerLandmarks(), want: OneFinger, source: SourceRule, alternates: []Label{Pointing}},
		{name: "peace", hand: detector.PeaceLandmarks(), want: Peace, source: SourceRule},
		{name: "thumbs up", hand: detector.ThumbsUpLandmarks(), want: ThumbsUp, source: SourceRule},
		{name: "call me", hand: detector.CallMeLandmarks(), want: CallMe, source: SourceRule},
		{name: "ok", hand: detector.OKLandmarks(), want: OK, source: SourceDistance},
		{name: "unknown", hand: detector.Pose(true, true, true, false, false), want: Unknown, source: SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Recognize(&tt.hand)
			assert.Equal(t, tt.want, res.Label)
			assert.Equal(t, tt.source, res.Source)
			assert.Equal(t, tt.alternates, res.Alternates)
		})
	}
}

func TestClassifier_Options(t *testing.T) {
	t.Run("threshold", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.IndexTip] = detector.Point3D{X: 0.08}

		assert.Equal(t, Unknown, NewClassifier().Classify(Status(1, 1, 0, 0, 0), &hand))
		assert.Equal(t, OK, NewClassifier(WithOKThreshold(0.1)).Classify(Status(1, 1, 0, 0, 0), &hand))
		assert.InDelta(t, DefaultOKThreshold, NewClassifier(WithOKThreshold(-1)).OKThreshold(), 1e-12)
	})

	t.Run("custom ruleset", func(t *testing.T) {
		rs, err := NewRuleset(Rule{Pattern: Status(0, 1, 0, 0, 0), Labels: []Label{Pointing}})
		require.NoError(t, err)

		hand := detector.OneFingerLandmarks()
		c := NewClassifier(WithRuleset(rs))
		assert.Equal(t, Pointing, c.Recognize(&hand).Label)
		assert.Same(t, rs, c.Ruleset())

		fist := detector.FistLandmarks()
		assert.Equal(t, Unknown, c.Recognize(&fist).Label)
	})

	t.Run("nil ruleset keeps default", func(t *testing.T) {
		assert.Same(t, DefaultRuleset, NewClassifier(WithRuleset(nil)).Ruleset())
	})

	t.Run("extractor", func(t *testing.T) {
		left := detector.ThumbsUpLandmarks().Mirror()
		left.Handedness = detector.HandLeft

		assert.NotEqual(t, ThumbsUp, NewClassifier().Recognize(&left).Label)
		aware := NewClassifier(WithExtractor(Extractor{UseHandedness: true}))
		assert.Equal(t, ThumbsUp, aware.Recognize(&left).Label)
	})
}
