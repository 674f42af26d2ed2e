// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pii finds personally identifiable information in OCR text and
// blurs the corresponding regions on a copy of the label image. Detection
// (text patterns) and masking (spatial redaction) are independent concerns:
// a category with no box to blur still counts as found.
package pii

import (
	"regexp"
	"sort"
)

// Category identifies a class of sensitive data.
type Category string

const (
	CategoryPhone   Category = "phone"
	CategoryEmail   Category = "email"
	CategoryGSTIN   Category = "gstin"
	CategoryAadhaar Category = "aadhaar"
)

// Pattern pairs a category with its detection regex.
type Pattern struct {
	Category Category
	Regex    *regexp.Regexp
}

// DefaultPatterns returns the built-in detector table: regional mobile
// numbers, email addresses, GSTIN business registrations, and Aadhaar-like
// numeric groupings.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{CategoryPhone, regexp.MustCompile(`(\+91[-\s]?|0)?[6-9]\d{9}`)},
		{CategoryEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
		{CategoryGSTIN, regexp.MustCompile(`\d{2}[A-Z]{5}\d{4}[A-Z][A-Z0-9]{3}`)},
		{CategoryAadhaar, regexp.MustCompile(`\d{4}\s?\d{4}\s?\d{4}`)},
	}
}

// Hit is one regex match with its category.
type Hit struct {
	Category Category
	Text     string
}

// Detector runs the pattern table over text. Construct with NewDetector so
// tests can substitute a smaller table.
type Detector struct {
	patterns []Pattern
}

// NewDetector builds a detector over the given pattern table.
func NewDetector(patterns []Pattern) *Detector {
	return &Detector{patterns: patterns}
}

// Detect returns every pattern match in the text, in table order. Detection
// never fails: no matches means an empty slice.
func (d *Detector) Detect(text string) []Hit {
	if text == "" {
		return nil
	}
	var hits []Hit
	for _, p := range d.patterns {
		for _, m := range p.Regex.FindAllString(text, -1) {
			hits = append(hits, Hit{Category: p.Category, Text: m})
		}
	}
	return hits
}

// Categories reduces hits to the sorted set of unique categories.
func Categories(hits []Hit) []Category {
	seen := make(map[Category]bool, len(hits))
	var out []Category
	for _, h := range hits {
		if !seen[h.Category] {
			seen[h.Category] = true
			out = append(out, h.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
