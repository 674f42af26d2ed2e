// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-scan/internal/analyzers/expiry"
	"label-scan/internal/analyzers/forgery"
	"label-scan/internal/analyzers/keywords"
	"label-scan/internal/analyzers/quality"
	"label-scan/internal/analyzers/scoring"
)

func allFound() []keywords.Verdict {
	return []keywords.Verdict{
		{Field: "MRP", Found: true},
		{Field: "Net Quantity", Found: true},
	}
}

func TestAssemble_Compliant(t *testing.T) {
	r := Assemble("text", quality.Result{Quality: quality.TierExcellent}, allFound(),
		nil, expiry.Finding{}, nil,
		forgery.Signal{Reason: "No tampering detected"},
		scoring.Outcome{Score: 100}, "standard")

	require.NotNil(t, r)
	assert.Equal(t, StatusCompliant, r.Status)
	assert.False(t, r.NeedsManualReview)
	assert.NotEmpty(t, r.ScanID)
	assert.False(t, r.ScannedAt.IsZero())
	assert.Equal(t, "standard", r.ScoringPolicy)
	assert.Empty(t, r.MissingFields())
	assert.Equal(t, []string{"MRP", "Net Quantity"}, r.FoundFields())
}

func TestAssemble_NonCompliant(t *testing.T) {
	verdicts := []keywords.Verdict{
		{Field: "MRP", Found: true},
		{Field: "Net Quantity", Found: false},
	}
	r := Assemble("text", quality.Result{}, verdicts, nil, expiry.Finding{}, nil,
		forgery.Signal{}, scoring.Outcome{Score: 60}, "standard")

	assert.Equal(t, StatusNonCompliant, r.Status)
	assert.Equal(t, []string{"Net Quantity"}, r.MissingFields())
}

func TestAssemble_ReviewOutcomeWinsOverCompliance(t *testing.T) {
	r := Assemble("text", quality.Result{}, allFound(), nil, expiry.Finding{}, nil,
		forgery.Signal{},
		scoring.Outcome{Score: 50, NeedsManualReview: true, ReviewReasons: []string{"confidence score 50.00 below 70"}},
		"standard")

	assert.Equal(t, StatusManualReview, r.Status)
	assert.True(t, r.NeedsManualReview)
}

func TestAssemble_TamperOverride(t *testing.T) {
	// A positive tamper signal forces review even on an otherwise perfect scan.
	r := Assemble("text", quality.Result{Quality: quality.TierExcellent}, allFound(),
		nil, expiry.Finding{}, nil,
		forgery.Signal{IsForged: true, Score: 0.3, Reason: "High error level detected (0.300): Possible JPEG compression artifacts"},
		scoring.Outcome{Score: 100}, "standard")

	assert.Equal(t, StatusManualReview, r.Status)
	assert.True(t, r.NeedsManualReview)
	require.Len(t, r.ReviewReasons, 1)
	assert.Contains(t, r.ReviewReasons[0], "tamper signal positive")
}

func TestAssemble_UniqueScanIDs(t *testing.T) {
	a := Assemble("", quality.Result{}, nil, nil, expiry.Finding{}, nil, forgery.Signal{}, scoring.Outcome{}, "standard")
	b := Assemble("", quality.Result{}, nil, nil, expiry.Finding{}, nil, forgery.Signal{}, scoring.Outcome{}, "standard")
	assert.NotEqual(t, a.ScanID, b.ScanID)
}
