// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package keywords checks OCR text for the mandatory disclosure fields using
// case-insensitive substring containment over a fixed alias table.
package keywords

import (
	"strings"
	"unicode/utf8"
)

// snippetMargin is how many bytes of surrounding text a verdict captures on
// each side of a matched alias.
const snippetMargin = 20

// Verdict is the per-field compliance result. One verdict is produced for
// every declared field on every run, in declaration order, found or not.
type Verdict struct {
	Field           string `json:"field"`
	Description     string `json:"description"`
	Found           bool   `json:"found"`
	MatchedAlias    string `json:"matched_alias,omitempty"`
	MatchConfidence int    `json:"match_confidence"`
	Snippet         string `json:"snippet,omitempty"`
}

// Matcher searches text for mandatory-field aliases. Construct with
// NewMatcher; the field table is injected so tests can substitute fixtures.
type Matcher struct {
	fields []Field
}

// NewMatcher builds a matcher over the given field table.
func NewMatcher(fields []Field) *Matcher {
	return &Matcher{fields: fields}
}

// Fields returns the declared field table.
func (m *Matcher) Fields() []Field {
	return m.fields
}

// Match tests every field against the text. Aliases are tried in declaration
// order and the first containment wins, regardless of where later aliases
// appear in the text. Empty text is valid and yields all-false verdicts.
func (m *Matcher) Match(text string) []Verdict {
	verdicts := make([]Verdict, 0, len(m.fields))
	lower := strings.ToLower(text)

	for _, field := range m.fields {
		verdict := Verdict{Field: field.Name, Description: field.Description}

		for _, alias := range field.Aliases {
			idx := strings.Index(lower, strings.ToLower(alias))
			if idx < 0 {
				continue
			}
			verdict.Found = true
			verdict.MatchedAlias = alias
			verdict.MatchConfidence = 100
			verdict.Snippet = snippet(text, idx, len(alias))
			break
		}

		verdicts = append(verdicts, verdict)
	}
	return verdicts
}

// Counts returns how many verdicts are found and missing.
func Counts(verdicts []Verdict) (found, missing int) {
	for _, v := range verdicts {
		if v.Found {
			found++
		} else {
			missing++
		}
	}
	return found, missing
}

// snippet clips [start-snippetMargin, start+aliasLen+snippetMargin) to the
// text bounds, nudging cut points back onto rune boundaries. Indexes computed
// on the lowercased text are reused here; for the supported scripts
// lowercasing preserves byte offsets.
func snippet(text string, start, aliasLen int) string {
	lo := start - snippetMargin
	if lo < 0 {
		lo = 0
	}
	hi := start + aliasLen + snippetMargin
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}
