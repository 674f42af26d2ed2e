// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scoring folds the upstream analyzer outputs into a single 0-100
// confidence score and the manual-review decision. Two scoring formulas
// coexist as named policies behind one interface; a deployment picks one,
// they are never blended in a single report.
package scoring

import (
	"fmt"
	"math"

	"label-scan/internal/analyzers/quality"
)

// DefaultReviewThreshold is the score below which a scan is routed to a
// human.
const DefaultReviewThreshold = 70

// reviewMissingFields is the missing-field count at which review triggers
// regardless of score.
const reviewMissingFields = 2

// Inputs carries everything a policy may weigh. MeanTokenConfidence is only
// meaningful when HasTokenConfidence is set (the OCR engine reported token
// confidences).
type Inputs struct {
	FoundFields         int
	TotalFields         int
	Quality             quality.Tier
	MeanTokenConfidence float64
	HasTokenConfidence  bool
}

// Outcome is a policy's verdict. Score is always within [0,100] — even for
// degenerate inputs (zero fields, no text) the scorer produces a number and a
// review flag, favoring review over silent optimism.
type Outcome struct {
	Score             float64  `json:"score"`
	NeedsManualReview bool     `json:"needs_manual_review"`
	ReviewReasons     []string `json:"review_reasons,omitempty"`
}

// Policy is one scoring formula.
type Policy interface {
	Name() string
	Score(in Inputs) Outcome
}

// New returns the policy registered under name ("standard" or "enriched").
func New(name string, reviewThreshold float64) (Policy, error) {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	switch name {
	case "", "standard":
		return &StandardPolicy{ReviewThreshold: reviewThreshold}, nil
	case "enriched":
		return &EnrichedPolicy{ReviewThreshold: reviewThreshold}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q (want standard or enriched)", name)
	}
}

// StandardPolicy is the 60/40 split: compliance rate weighted 60, image
// quality tier weighted 40 via a fixed lookup.
type StandardPolicy struct {
	ReviewThreshold float64
}

var standardQualityPoints = map[quality.Tier]float64{
	quality.TierExcellent: 40,
	quality.TierGood:      32,
	quality.TierFair:      24,
	quality.TierPoor:      16,
	quality.TierVeryPoor:  8,
}

func (p *StandardPolicy) Name() string { return "standard" }

func (p *StandardPolicy) Score(in Inputs) Outcome {
	var compliance float64
	if in.TotalFields > 0 {
		compliance = float64(in.FoundFields) / float64(in.TotalFields) * 60
	}
	score := round2(compliance + standardQualityPoints[in.Quality])
	return finish(score, in, p.ReviewThreshold)
}

// EnrichedPolicy is the 40/30/20/10 split: compliance 40, quality 30, mean
// OCR token confidence 20, and a keyword completeness term 10. When the
// engine reported no token confidences that component contributes zero.
type EnrichedPolicy struct {
	ReviewThreshold float64
}

var enrichedQualityPoints = map[quality.Tier]float64{
	quality.TierExcellent: 30,
	quality.TierGood:      24,
	quality.TierFair:      18,
	quality.TierPoor:      12,
	quality.TierVeryPoor:  6,
}

func (p *EnrichedPolicy) Name() string { return "enriched" }

func (p *EnrichedPolicy) Score(in Inputs) Outcome {
	var completeness float64
	if in.TotalFields > 0 {
		completeness = float64(in.FoundFields) / float64(in.TotalFields)
	}

	score := completeness * 40
	score += enrichedQualityPoints[in.Quality]
	if in.HasTokenConfidence {
		score += clamp(in.MeanTokenConfidence, 0, 100) / 100 * 20
	}
	score += completeness * 10

	return finish(round2(score), in, p.ReviewThreshold)
}

// finish applies the shared manual-review policy: low score, poor quality, or
// two-plus missing fields each independently trigger review.
func finish(score float64, in Inputs, threshold float64) Outcome {
	score = clamp(score, 0, 100)
	out := Outcome{Score: score}

	if score < threshold {
		out.ReviewReasons = append(out.ReviewReasons,
			fmt.Sprintf("confidence score %.2f below %.0f", score, threshold))
	}
	if in.Quality == quality.TierPoor || in.Quality == quality.TierVeryPoor {
		out.ReviewReasons = append(out.ReviewReasons,
			fmt.Sprintf("image quality is %s", in.Quality))
	}
	if missing := in.TotalFields - in.FoundFields; missing >= reviewMissingFields {
		out.ReviewReasons = append(out.ReviewReasons,
			fmt.Sprintf("%d mandatory fields missing", missing))
	}

	out.NeedsManualReview = len(out.ReviewReasons) > 0
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
