// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package forgery provides an advisory tamper signal for label photos. It
// combines error-level analysis, a regional variance check, and an EXIF
// software-tag inspection. The signal never fails a scan: any processing
// error degrades to a neutral not-forged result with an explanatory reason.
package forgery

import (
	"fmt"
	"image"
	"math"

	"label-scan/internal/imaging"
)

// DefaultErrorThreshold is the mean error level above which an image is
// flagged for suspected recompression artifacts.
const DefaultErrorThreshold = 0.15

// varianceRatioTolerance bounds how far the center/border variance ratio may
// drift from 1 before the distribution is flagged as manipulated.
const varianceRatioTolerance = 0.5

// elaSigma is the Gaussian blur width used for error-level analysis.
const elaSigma = 1.0

// Signal is the tamper verdict.
type Signal struct {
	IsForged bool    `json:"is_forged"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

// Detector runs the tamper heuristics in fixed order, first positive wins.
type Detector struct {
	errorThreshold float64
}

// NewDetector builds a detector. A non-positive threshold falls back to
// DefaultErrorThreshold.
func NewDetector(errorThreshold float64) *Detector {
	if errorThreshold <= 0 {
		errorThreshold = DefaultErrorThreshold
	}
	return &Detector{errorThreshold: errorThreshold}
}

// Detect analyzes img and, when the encoded bytes are available, its EXIF
// metadata. rawData may be nil. Panics from malformed pixel data are caught
// and reported as a neutral signal — tamper detection is advisory, never
// pipeline-fatal.
func (d *Detector) Detect(img image.Image, rawData []byte) (signal Signal) {
	defer func() {
		if r := recover(); r != nil {
			signal = Signal{IsForged: false, Score: 0, Reason: fmt.Sprintf("could not analyze: %v", r)}
		}
	}()

	gray := imaging.ToGray(img)
	pixels, w, h := imaging.GrayFloats(gray)
	if w == 0 || h == 0 {
		return Signal{Reason: "could not analyze: empty image"}
	}

	// Error-level analysis: the residual between the image and a slightly
	// blurred copy approximates compression/recompression artifacts.
	blurred := imaging.GaussianBlur(pixels, w, h, elaSigma)
	var errorSum float64
	for i := range pixels {
		errorSum += math.Abs(pixels[i] - blurred[i])
	}
	errorMean := errorSum / float64(len(pixels))

	if errorMean > d.errorThreshold {
		return Signal{
			IsForged: true,
			Score:    errorMean,
			Reason:   fmt.Sprintf("High error level detected (%.3f): Possible JPEG compression artifacts", errorMean),
		}
	}

	// Regional variance: spliced content tends to skew the variance of the
	// central quadrant against the border strips.
	ratio := centerBorderVarianceRatio(gray)
	if math.Abs(ratio-1.0) > varianceRatioTolerance {
		return Signal{
			IsForged: true,
			Score:    ratio,
			Reason:   fmt.Sprintf("Unusual variance pattern (%.2f): Possible content manipulation", ratio),
		}
	}

	// Metadata: an editing-software tag in EXIF is advisory evidence of a
	// processed image.
	if software, edited := editingSoftware(rawData); edited {
		return Signal{
			IsForged: true,
			Score:    errorMean,
			Reason:   fmt.Sprintf("EXIF metadata names editing software (%s): Possible post-processing", software),
		}
	}

	return Signal{IsForged: false, Score: errorMean, Reason: "No tampering detected"}
}

// centerBorderVarianceRatio compares pixel variance of the central quadrant
// region against the surrounding border strips.
func centerBorderVarianceRatio(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	center := image.Rect(w/4, h/4, 3*w/4, 3*h/4)

	var centerVals, borderVals []float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(gray.Pix[y*gray.Stride+x])
			if (image.Point{X: x, Y: y}).In(center) {
				centerVals = append(centerVals, v)
			} else {
				borderVals = append(borderVals, v)
			}
		}
	}

	return variance(centerVals) / (variance(borderVals) + 1e-6)
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	var acc float64
	for _, v := range vals {
		d := v - mean
		acc += d * d
	}
	return acc / float64(len(vals))
}
