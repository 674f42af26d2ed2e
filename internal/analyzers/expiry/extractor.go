// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package expiry discovers and interprets expiry dates in OCR text. The
// search is keyword-anchored: an expiry-indicating phrase is located first,
// then a date shape is matched within a short window after it. The whole
// search is greedy first-match, not best-match, for compatibility with the
// established scanner behavior.
package expiry

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// dateWindow is how many bytes after an anchor keyword a date may appear.
const dateWindow = 50

// contextMargin pads the context snippet on both sides.
const contextMargin = 10

// Finding is the result of one extraction run. At most one date is reported
// per scan. DaysUntilExpiry is set iff ParsedDate is set; it goes negative
// once the date has passed, feeding "expired N days ago" messaging.
type Finding struct {
	Found           bool       `json:"found"`
	DateString      string     `json:"date_string,omitempty"`
	ParsedDate      *time.Time `json:"parsed_date,omitempty"`
	IsExpired       bool       `json:"is_expired"`
	DaysUntilExpiry *int       `json:"days_until_expiry,omitempty"`
	Context         string     `json:"context,omitempty"`
}

// Anchor keywords in fixed priority order. The last entry is the Tamil word
// for expiry, matched literally.
var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)expiry\s*date?`),
	regexp.MustCompile(`(?i)exp\.?\s*date?`),
	regexp.MustCompile(`(?i)best\s*before`),
	regexp.MustCompile(`(?i)use\s*by`),
	regexp.MustCompile(`(?i)valid\s*until`),
	regexp.MustCompile(`(?i)expires?`),
	regexp.MustCompile(`காலாவதி`),
}

// Date shapes in fixed priority order. The first shape matching inside the
// window wins.
var datePatterns = []*regexp.Regexp{
	// DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY (2- or 4-digit years)
	regexp.MustCompile(`(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
	// MM/YYYY, MM-YYYY, MM.YYYY
	regexp.MustCompile(`(\d{1,2}[-/.]\d{4})`),
	// Month YYYY (e.g. Jan 2026, January 2026)
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s*\d{4})`),
	// YYYY-MM-DD (ISO)
	regexp.MustCompile(`(\d{4}[-/]\d{1,2}[-/]\d{1,2})`),
	// DD Month YYYY (e.g. 15 Jan 2026)
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s*\d{4})`),
}

// Parse layouts in fixed priority order: day-month-year with the three
// separators and both year widths, month-year only, ISO, then month-name
// forms. Non-padded layouts accept padded values, so one layout covers both.
var parseLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"1/2006",
	"1-2006",
	"1.2006",
	"2006-1-2",
	"2006/1/2",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2006",
	"January 2006",
}

// monthYearLayouts identifies the layouts that carry no day component; those
// normalize to the last calendar day of the month ("valid through end of
// month").
var monthYearLayouts = map[string]bool{
	"1/2006":       true,
	"1-2006":       true,
	"1.2006":       true,
	"Jan 2006":     true,
	"January 2006": true,
}

// Extractor runs the anchored date search. Now is injectable for tests and
// defaults to time.Now.
type Extractor struct {
	Now func() time.Time
}

// NewExtractor returns an extractor using the wall clock.
func NewExtractor() *Extractor {
	return &Extractor{Now: time.Now}
}

// Extract searches the original-case text (month-name casing is preserved for
// parsing) and returns the first successful (keyword, window, shape, layout)
// combination. A text with no anchor or no parseable date yields
// Found=false — expected, not an error.
func (e *Extractor) Extract(text string) Finding {
	if strings.TrimSpace(text) == "" {
		return Finding{}
	}

	for _, keyword := range keywordPatterns {
		for _, loc := range keyword.FindAllStringIndex(text, -1) {
			window := clipRunes(text, loc[1], loc[1]+dateWindow)

			for _, shape := range datePatterns {
				m := shape.FindStringSubmatchIndex(window)
				if m == nil {
					continue
				}
				dateString := window[m[2]:m[3]]

				parsed, ok := parseDate(dateString)
				if !ok {
					continue
				}

				now := e.now()
				days := daysBetween(now, parsed)
				end := loc[1] + m[3] + contextMargin
				return Finding{
					Found:           true,
					DateString:      dateString,
					ParsedDate:      &parsed,
					IsExpired:       parsed.Before(now),
					DaysUntilExpiry: &days,
					Context:         strings.TrimSpace(clipRunes(text, loc[0]-contextMargin, end)),
				}
			}
		}
	}
	return Finding{}
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// parseDate tries the fixed layout list in order; the first success wins.
// Month-year-only layouts normalize to the last day of the month.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if monthYearLayouts[layout] {
			parsed = lastDayOfMonth(parsed)
		}
		return parsed, true
	}
	return time.Time{}, false
}

func lastDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// daysBetween is the signed whole-day difference from now to the target,
// rounded toward negative infinity so "expired yesterday evening" still
// counts as a full day past.
func daysBetween(now, target time.Time) int {
	return int(math.Floor(target.Sub(now).Hours() / 24))
}

// clipRunes slices text by byte offsets clamped to bounds and nudged onto
// rune boundaries, so a window cut never splits a multibyte character.
func clipRunes(text string, lo, hi int) string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(text) {
		hi = len(text)
	}
	if lo >= hi {
		return ""
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}
