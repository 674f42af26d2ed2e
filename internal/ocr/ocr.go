// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ocr defines the contract between the compliance pipeline and the
// external text-recognition engine. The pipeline consumes OCR output as a
// black box: full text plus per-token bounding boxes and confidences.
package ocr

import (
	"context"
	"image"
	"strings"
)

// Token is a single recognized word with its confidence and pixel bounding
// box (top-left origin). Tokens are immutable once produced.
type Token struct {
	Text       string `json:"text"`
	Confidence int    `json:"confidence"` // 0-100
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
}

// Box returns the token's bounding box as an image.Rectangle.
func (t Token) Box() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H)
}

// Result is the output of one recognition pass: the concatenated text and the
// ordered token sequence it was assembled from. A no-text image yields an
// empty Result, not an error.
type Result struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

// Empty reports whether the engine found no usable text.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Text) == "" && len(r.Tokens) == 0
}

// MeanConfidence returns the average token confidence in [0,100], and whether
// any tokens were available to average over.
func (r Result) MeanConfidence() (float64, bool) {
	if len(r.Tokens) == 0 {
		return 0, false
	}
	var sum int
	for _, t := range r.Tokens {
		sum += t.Confidence
	}
	return float64(sum) / float64(len(r.Tokens)), true
}

// Engine is the external OCR collaborator. Implementations must honor context
// cancellation and must return an empty Result (not an error) when the image
// contains no recognizable text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, languages []string) (Result, error)
}
