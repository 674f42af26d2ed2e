// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package quality grades image sharpness from the variance of the Laplacian
// response over the grayscale image. Low variance means little high-frequency
// edge content, which reads as blur.
package quality

import (
	"image"

	"label-scan/internal/imaging"
)

// Tier is the categorical sharpness bucket.
type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
	TierPoor      Tier = "Poor"
	TierVeryPoor  Tier = "Very Poor"
)

// Rank orders tiers from worst (0) to best (4) for monotonicity checks.
func (t Tier) Rank() int {
	switch t {
	case TierExcellent:
		return 4
	case TierGood:
		return 3
	case TierFair:
		return 2
	case TierPoor:
		return 1
	default:
		return 0
	}
}

// Result holds the sharpness metric and its interpretation.
type Result struct {
	Variance float64 `json:"variance"`
	Quality  Tier    `json:"quality"`
	IsBlurry bool    `json:"is_blurry"`
}

// Boundaries are the inclusive lower variance bounds for each tier above
// VeryPoor.
type Boundaries struct {
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Fair      float64 `yaml:"fair"`
	Poor      float64 `yaml:"poor"`
}

// DefaultBoundaries returns the standard 500/200/100/50 tier boundaries.
func DefaultBoundaries() Boundaries {
	return Boundaries{Excellent: 500, Good: 200, Fair: 100, Poor: 50}
}

// Assessor computes sharpness results. The zero value is not usable; build
// with NewAssessor.
type Assessor struct {
	blurThreshold float64
	boundaries    Boundaries
}

// NewAssessor creates an assessor with the given blur threshold (variance
// below it is blurry) and tier boundaries.
func NewAssessor(blurThreshold float64, boundaries Boundaries) *Assessor {
	return &Assessor{blurThreshold: blurThreshold, boundaries: boundaries}
}

// Assess converts img to grayscale if needed and grades its Laplacian
// variance. Degenerate uniform images are valid input and grade VeryPoor.
func (a *Assessor) Assess(img image.Image) Result {
	gray := imaging.ToGray(img)
	return a.Grade(laplacianVariance(gray))
}

// Grade maps a precomputed variance onto a Result.
func (a *Assessor) Grade(variance float64) Result {
	return Result{
		Variance: variance,
		Quality:  a.tier(variance),
		IsBlurry: variance < a.blurThreshold,
	}
}

func (a *Assessor) tier(variance float64) Tier {
	switch {
	case variance >= a.boundaries.Excellent:
		return TierExcellent
	case variance >= a.boundaries.Good:
		return TierGood
	case variance >= a.boundaries.Fair:
		return TierFair
	case variance >= a.boundaries.Poor:
		return TierPoor
	default:
		return TierVeryPoor
	}
}

// laplacianVariance applies the 3x3 Laplacian kernel
//
//	0  1  0
//	1 -4  1
//	0  1  0
//
// to the interior pixels and returns the variance of the responses.
func laplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	n := (w - 2) * (h - 2)
	responses := make([]float64, 0, n)
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := int(gray.Pix[y*gray.Stride+x])
			up := int(gray.Pix[(y-1)*gray.Stride+x])
			down := int(gray.Pix[(y+1)*gray.Stride+x])
			left := int(gray.Pix[y*gray.Stride+x-1])
			right := int(gray.Pix[y*gray.Stride+x+1])

			r := float64(up + down + left + right - 4*center)
			responses = append(responses, r)
			sum += r
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, r := range responses {
		d := r - mean
		variance += d * d
	}
	return variance / float64(n)
}
