// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"label-scan/internal/formatters"
	"label-scan/internal/report"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []*report.ComplianceReport, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	if len(reports) == 0 {
		return "No scans performed.", nil
	}

	var builder strings.Builder
	for i, r := range reports {
		if i > 0 {
			builder.WriteString("\n")
		}
		f.appendReport(&builder, r, options)
	}

	if len(reports) > 1 {
		f.appendBatchSummary(&builder, reports)
	}

	return builder.String(), nil
}

func (f *Formatter) appendReport(b *strings.Builder, r *report.ComplianceReport, options formatters.FormatterOptions) {
	name := r.Filename
	if name == "" {
		name = r.ScanID
	}
	fmt.Fprintf(b, "%s\n", f.colors["white"].Sprintf("=== %s ===", name))
	fmt.Fprintf(b, "Status:     %s\n", f.statusColor(r.Status).Sprint(string(r.Status)))
	fmt.Fprintf(b, "Confidence: %.2f (policy: %s)\n", r.ConfidenceScore, r.ScoringPolicy)
	fmt.Fprintf(b, "Quality:    %s (variance %.2f", r.ImageQuality.Quality, r.ImageQuality.Variance)
	if r.ImageQuality.IsBlurry {
		fmt.Fprintf(b, ", %s", f.colors["yellow"].Sprint("blurry"))
	}
	b.WriteString(")\n")

	b.WriteString("Mandatory fields:\n")
	for _, v := range r.Verdicts {
		mark := f.colors["red"].Sprint("MISSING")
		detail := ""
		if v.Found {
			mark = f.colors["green"].Sprint("FOUND")
			detail = fmt.Sprintf(" via %q", v.MatchedAlias)
		}
		fmt.Fprintf(b, "  %-35s %s%s\n", v.Field, mark, detail)
		if options.Verbose && v.Found && v.Snippet != "" {
			fmt.Fprintf(b, "    context: %s\n", strings.TrimSpace(v.Snippet))
		}
	}

	if options.Verbose && len(r.FuzzyMatches) > 0 {
		b.WriteString("Fuzzy matches:\n")
		for _, m := range r.FuzzyMatches {
			if m.Ratio > 0 {
				fmt.Fprintf(b, "  %-25s %q (%d)\n", m.Field, m.Token, m.Ratio)
			} else {
				fmt.Fprintf(b, "  %-25s (none)\n", m.Field)
			}
		}
	}

	if r.Expiry.Found {
		state := f.colors["green"].Sprint("valid")
		if r.Expiry.IsExpired {
			state = f.colors["red"].Sprint("EXPIRED")
		}
		fmt.Fprintf(b, "Expiry:     %s (%s", r.Expiry.DateString, state)
		if r.Expiry.DaysUntilExpiry != nil {
			fmt.Fprintf(b, ", %d days", *r.Expiry.DaysUntilExpiry)
		}
		b.WriteString(")\n")
	} else {
		b.WriteString("Expiry:     no date found\n")
	}

	if len(r.PII) > 0 {
		b.WriteString("PII:        ")
		var parts []string
		for _, p := range r.PII {
			label := string(p.Category)
			if p.Masked {
				label += " (masked)"
			}
			parts = append(parts, label)
		}
		fmt.Fprintf(b, "%s\n", f.colors["yellow"].Sprint(strings.Join(parts, ", ")))
	}

	if r.Tamper.IsForged {
		fmt.Fprintf(b, "Tamper:     %s\n", f.colors["red"].Sprint(r.Tamper.Reason))
	} else if options.Verbose {
		fmt.Fprintf(b, "Tamper:     %s\n", r.Tamper.Reason)
	}

	if r.NeedsManualReview {
		fmt.Fprintf(b, "%s\n", f.colors["yellow"].Sprint("Manual review required:"))
		for _, reason := range r.ReviewReasons {
			fmt.Fprintf(b, "  - %s\n", reason)
		}
	}

	if options.Verbose {
		fmt.Fprintf(b, "Processed in %.1f ms (scan %s)\n", r.ProcessingMS, r.ScanID)
	}
}

func (f *Formatter) appendBatchSummary(b *strings.Builder, reports []*report.ComplianceReport) {
	var compliant, nonCompliant, review int
	for _, r := range reports {
		switch r.Status {
		case report.StatusCompliant:
			compliant++
		case report.StatusNonCompliant:
			nonCompliant++
		case report.StatusManualReview:
			review++
		}
	}
	fmt.Fprintf(b, "\n%s\n", f.colors["white"].Sprint("=== Summary ==="))
	fmt.Fprintf(b, "Total: %d  Compliant: %s  Non-compliant: %s  Manual review: %s\n",
		len(reports),
		f.colors["green"].Sprint(compliant),
		f.colors["red"].Sprint(nonCompliant),
		f.colors["yellow"].Sprint(review))
}

func (f *Formatter) statusColor(s report.Status) *color.Color {
	switch s {
	case report.StatusCompliant:
		return f.colors["green"]
	case report.StatusManualReview:
		return f.colors["yellow"]
	default:
		return f.colors["red"]
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
