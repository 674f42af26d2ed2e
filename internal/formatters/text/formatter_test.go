// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"strings"
	"testing"

	"label-scan/internal/analyzers/keywords"
	"label-scan/internal/analyzers/quality"
	"label-scan/internal/formatters"
	"label-scan/internal/report"
)

func sampleReport() *report.ComplianceReport {
	return &report.ComplianceReport{
		ScanID:   "scan-1",
		Filename: "label.png",
		Status:   report.StatusNonCompliant,
		ImageQuality: quality.Result{
			Variance: 250.5,
			Quality:  quality.TierGood,
		},
		Verdicts: []keywords.Verdict{
			{Field: "MRP", Found: true, MatchedAlias: "MRP", Snippet: "MRP Rs.100"},
			{Field: "Net Quantity", Found: false},
		},
		ConfidenceScore:   62.0,
		ScoringPolicy:     "standard",
		NeedsManualReview: true,
		ReviewReasons:     []string{"confidence score 62.00 below 70"},
	}
}

func TestFormat_NoColorPlainOutput(t *testing.T) {
	out, err := NewFormatter().Format([]*report.ComplianceReport{sampleReport()},
		formatters.FormatterOptions{NoColor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"label.png",
		"NON_COMPLIANT",
		"62.00",
		"MRP",
		"FOUND",
		"Net Quantity",
		"MISSING",
		"Manual review required",
		"confidence score 62.00 below 70",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("ANSI escape codes present despite NoColor")
	}
}

func TestFormat_VerboseIncludesSnippets(t *testing.T) {
	out, err := NewFormatter().Format([]*report.ComplianceReport{sampleReport()},
		formatters.FormatterOptions{NoColor: true, Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "MRP Rs.100") {
		t.Errorf("verbose output missing snippet\n%s", out)
	}
	if !strings.Contains(out, "scan-1") {
		t.Errorf("verbose output missing scan id\n%s", out)
	}
}

func TestFormat_BatchSummary(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	b.Status = report.StatusCompliant

	out, err := NewFormatter().Format([]*report.ComplianceReport{a, b},
		formatters.FormatterOptions{NoColor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Summary") || !strings.Contains(out, "Total: 2") {
		t.Errorf("batch summary missing\n%s", out)
	}
}

func TestFormat_Empty(t *testing.T) {
	out, err := NewFormatter().Format(nil, formatters.FormatterOptions{NoColor: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No scans performed." {
		t.Errorf("empty output = %q", out)
	}
}

func TestRegistered(t *testing.T) {
	if _, ok := formatters.Get("text"); !ok {
		t.Error("text formatter not registered")
	}
}
