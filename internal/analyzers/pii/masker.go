// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pii

import (
	"image"
	"strings"

	"label-scan/internal/imaging"
	"label-scan/internal/ocr"
)

// maskPadding is the constant pixel padding added on each side of a blurred
// token box, clipped to image bounds.
const maskPadding = 5

// blurKernel is the box-blur kernel size used for redaction.
const blurKernel = 15

// TokenCorrelator associates a free-text regex match with the OCR tokens
// whose boxes should be redacted. The association is heuristic — a regex
// match may span several tokens or only loosely align with one — so the
// strategy is pluggable: a stronger token-span-alignment algorithm can be
// substituted without touching the detector's pattern contract.
type TokenCorrelator interface {
	Correlate(match string, tokens []ocr.Token) []ocr.Token
}

// SubstringCorrelator is the default strategy: a token is associated when its
// text contains the matched substring, case-insensitively. It can both
// under- and over-mask.
type SubstringCorrelator struct{}

// Correlate implements TokenCorrelator.
func (SubstringCorrelator) Correlate(match string, tokens []ocr.Token) []ocr.Token {
	needle := strings.ToLower(match)
	var out []ocr.Token
	for _, t := range tokens {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Finding reports one detected category and whether at least one token box
// was visually masked for it. Text-only evidence still counts as found.
type Finding struct {
	Category Category `json:"category"`
	Masked   bool     `json:"masked"`
}

// Masker combines detection with spatial redaction.
type Masker struct {
	detector   *Detector
	correlator TokenCorrelator
}

// NewMasker builds a masker. A nil correlator selects SubstringCorrelator.
func NewMasker(detector *Detector, correlator TokenCorrelator) *Masker {
	if correlator == nil {
		correlator = SubstringCorrelator{}
	}
	return &Masker{detector: detector, correlator: correlator}
}

// DetectAndMask scans text for PII and blurs the padded bounding boxes of
// correlated tokens on a copy of img. The original image is never modified.
// Findings are one per unique category; the returned image is always a valid
// copy even when nothing was detected.
func (m *Masker) DetectAndMask(img image.Image, text string, tokens []ocr.Token) (*image.RGBA, []Finding) {
	masked := imaging.ToRGBA(img)

	hits := m.detector.Detect(text)
	if len(hits) == 0 {
		return masked, nil
	}

	maskedCategories := make(map[Category]bool)
	for _, hit := range hits {
		for _, token := range m.correlator.Correlate(hit.Text, tokens) {
			box := token.Box().Inset(-maskPadding)
			imaging.BlurRegion(masked, box, blurKernel)
			maskedCategories[hit.Category] = true
		}
	}

	findings := make([]Finding, 0, len(maskedCategories))
	for _, cat := range Categories(hits) {
		findings = append(findings, Finding{Category: cat, Masked: maskedCategories[cat]})
	}
	return masked, findings
}
