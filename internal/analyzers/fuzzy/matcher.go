// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy recovers keyword matches that exact substring search misses
// when OCR misreads characters or splits words. It scores every whitespace
// token against a field alias table with an order-independent token-set ratio
// and keeps only high-confidence candidates.
package fuzzy

import "strings"

// DefaultThreshold is the minimum ratio a candidate must reach. High on
// purpose: fuzzy recovery trades false positives for recall, and every match
// carries its ratio so the caller can explain it.
const DefaultThreshold = 80

// Keyword declares one fuzzy-matched field and its aliases. This table is
// independent from the exact matcher's mandatory-field table; it is a
// finer-grained overlay, not a replacement.
type Keyword struct {
	Field   string   `yaml:"field"`
	Aliases []string `yaml:"aliases"`
}

// DefaultKeywords returns the built-in fuzzy overlay table.
func DefaultKeywords() []Keyword {
	return []Keyword{
		{Field: "MRP", Aliases: []string{
			"MRP", "M.R.P", "Max Retail Price", "Maximum Retail Price", "Price", "Cost", "₹",
		}},
		{Field: "Net Quantity", Aliases: []string{
			"Net Qty", "Net Quantity", "Weight", "Volume", "QTY", "Qty", "ml", "gm", "kg",
		}},
		{Field: "Manufacture Date", Aliases: []string{
			"Mfg Date", "Manufacturing Date", "Mfd", "Manufactured", "Made On", "Date of Mfg",
		}},
		{Field: "Expiry Date", Aliases: []string{
			"Exp Date", "Expiry", "Best Before", "Use By", "Validity", "Date of Expiry",
		}},
		{Field: "Batch Number", Aliases: []string{
			"Batch No", "Batch Number", "Batch", "Lot No", "Lot Number", "Code",
		}},
	}
}

// Match is the best-scoring token for one field.
type Match struct {
	Field string `json:"field"`
	Token string `json:"token"`
	Ratio int    `json:"ratio"` // 0-100
}

// Matcher scores OCR tokens against the keyword table.
type Matcher struct {
	keywords  []Keyword
	threshold int
}

// NewMatcher builds a matcher with the given table and threshold. A
// non-positive threshold falls back to DefaultThreshold.
func NewMatcher(keywords []Keyword, threshold int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{keywords: keywords, threshold: threshold}
}

// Match splits text into whitespace tokens and scores every
// (field, alias, token) triple. Per field, the single highest-scoring token
// at or above the threshold is retained; fields with no candidate are
// reported with Ratio 0 and an empty token.
func (m *Matcher) Match(text string) []Match {
	words := strings.Fields(text)
	results := make([]Match, 0, len(m.keywords))

	for _, kw := range m.keywords {
		best := Match{Field: kw.Field}
		for _, word := range words {
			for _, alias := range kw.Aliases {
				ratio := TokenSetRatio(word, alias)
				if ratio >= m.threshold && ratio > best.Ratio {
					best.Token = word
					best.Ratio = ratio
				}
			}
		}
		results = append(results, best)
	}
	return results
}
