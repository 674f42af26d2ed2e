// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-scan/internal/analyzers/quality"
	"label-scan/internal/config"
	"label-scan/internal/imaging"
	"label-scan/internal/ocr"
	"label-scan/internal/report"
)

// stubEngine returns a canned OCR result without touching tesseract.
type stubEngine struct {
	result ocr.Result
	err    error
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(ctx context.Context, img image.Image, languages []string) (ocr.Result, error) {
	return s.result, s.err
}

// sharpLabel renders a clean periodic texture: high Laplacian variance,
// balanced regional variances, low error-level residual.
func sharpLabel() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.Pix[y*img.Stride+x] = uint8(128 + 100*math.Sin(2*math.Pi*float64(x)/8))
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	data, err := imaging.EncodePNG(img)
	require.NoError(t, err)
	return data
}

func fullLabelText() ocr.Result {
	text := "MRP Rs.100 Net Qty 500g Customer Care 1800-000-000 Country of Origin India Mfg Date 01/2024"
	return ocr.Result{
		Text: text,
		Tokens: []ocr.Token{
			{Text: "MRP", Confidence: 95, X: 2, Y: 2, W: 20, H: 8},
			{Text: "Rs.100", Confidence: 92, X: 25, Y: 2, W: 30, H: 8},
		},
	}
}

func newPipeline(t *testing.T, engine ocr.Engine) *Pipeline {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	p, err := New(cfg, engine, nil)
	require.NoError(t, err)
	return p
}

func TestScan_CompliantLabel(t *testing.T) {
	p := newPipeline(t, &stubEngine{result: fullLabelText()})

	rep, err := p.Scan(context.Background(), encodePNG(t, sharpLabel()), Options{Filename: "label.png"})
	require.NoError(t, err)

	assert.Equal(t, report.StatusCompliant, rep.Status)
	assert.Equal(t, 100.0, rep.ConfidenceScore)
	assert.False(t, rep.NeedsManualReview)
	assert.Equal(t, quality.TierExcellent, rep.ImageQuality.Quality)
	assert.False(t, rep.Tamper.IsForged)
	assert.Empty(t, rep.MissingFields())
	assert.Empty(t, rep.PII)
	assert.False(t, rep.Expiry.Found)
	assert.Equal(t, "label.png", rep.Filename)
	assert.NotEmpty(t, rep.ScanID)
	assert.GreaterOrEqual(t, rep.ProcessingMS, 0.0)

	// The fuzzy overlay sees the exact MRP token.
	var mrpRatio int
	for _, m := range rep.FuzzyMatches {
		if m.Field == "MRP" {
			mrpRatio = m.Ratio
		}
	}
	assert.Equal(t, 100, mrpRatio)
}

func TestScan_BlankBlurryLabel(t *testing.T) {
	// No text and a uniform image: worst quality, every field missing. The
	// flat pixel distribution also trips the tamper heuristics, which forces
	// the manual-review route.
	uniform := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range uniform.Pix {
		uniform.Pix[i] = 200
	}
	p := newPipeline(t, &stubEngine{result: ocr.Result{}})

	rep, err := p.Scan(context.Background(), encodePNG(t, uniform), Options{})
	require.NoError(t, err)

	assert.Equal(t, 8.0, rep.ConfidenceScore)
	assert.Equal(t, quality.TierVeryPoor, rep.ImageQuality.Quality)
	assert.True(t, rep.ImageQuality.IsBlurry)
	assert.True(t, rep.NeedsManualReview)
	assert.Equal(t, report.StatusManualReview, rep.Status)
	assert.Len(t, rep.MissingFields(), 5)
}

func TestScan_DecodeFailure(t *testing.T) {
	p := newPipeline(t, &stubEngine{})

	rep, err := p.Scan(context.Background(), []byte("not an image"), Options{})
	assert.Error(t, err)
	assert.Nil(t, rep)
}

func TestScan_EngineFailureDegrades(t *testing.T) {
	p := newPipeline(t, &stubEngine{err: errors.New("tesseract unavailable")})

	rep, err := p.Scan(context.Background(), encodePNG(t, sharpLabel()), Options{})
	require.NoError(t, err)

	assert.Empty(t, rep.ExtractedText)
	assert.Len(t, rep.MissingFields(), 5)
}

func TestScan_NilEngine(t *testing.T) {
	p := newPipeline(t, nil)

	rep, err := p.Scan(context.Background(), encodePNG(t, sharpLabel()), Options{})
	require.NoError(t, err)
	assert.Empty(t, rep.ExtractedText)
}

func TestAnalyze_MaskRetention(t *testing.T) {
	p := newPipeline(t, nil)

	text := ocr.Result{
		Text: "Customer Care: 9876543210",
		Tokens: []ocr.Token{
			{Text: "9876543210", Confidence: 90, X: 40, Y: 40, W: 40, H: 10},
		},
	}
	img := sharpLabel()

	rep := p.Analyze(context.Background(), img, nil, text, Options{KeepMask: true})
	require.Len(t, rep.PII, 1)
	assert.True(t, rep.PII[0].Masked)
	assert.NotEmpty(t, rep.MaskedImagePNG)

	// Without KeepMask the PNG is dropped even when PII was masked.
	rep = p.Analyze(context.Background(), img, nil, text, Options{})
	assert.Empty(t, rep.MaskedImagePNG)
}
