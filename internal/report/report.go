// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report defines the aggregate compliance report handed back to the
// caller and the assembly step that composes analyzer outputs into it.
package report

import (
	"time"

	"github.com/google/uuid"

	"label-scan/internal/analyzers/expiry"
	"label-scan/internal/analyzers/forgery"
	"label-scan/internal/analyzers/fuzzy"
	"label-scan/internal/analyzers/keywords"
	"label-scan/internal/analyzers/pii"
	"label-scan/internal/analyzers/quality"
	"label-scan/internal/analyzers/scoring"
)

// Status is the terminal disposition of a scan.
type Status string

const (
	StatusCompliant    Status = "COMPLIANT"
	StatusNonCompliant Status = "NON_COMPLIANT"
	StatusManualReview Status = "MANUAL_REVIEW"
)

// ComplianceReport is the aggregate root produced once per scan. It owns one
// quality result, one verdict per declared mandatory field in declaration
// order, one expiry finding, the PII finding set, one tamper signal, and the
// final score/review decision. Ownership passes to the caller; whatever
// persistence it applies is outside this core.
type ComplianceReport struct {
	ScanID    string    `json:"scan_id"`
	Filename  string    `json:"filename,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`

	ExtractedText string `json:"extracted_text"`

	ImageQuality quality.Result     `json:"image_quality"`
	Verdicts     []keywords.Verdict `json:"compliance_results"`
	FuzzyMatches []fuzzy.Match      `json:"fuzzy_matches,omitempty"`
	Expiry       expiry.Finding     `json:"expiry"`
	PII          []pii.Finding      `json:"pii_detected,omitempty"`
	Tamper       forgery.Signal     `json:"tamper"`

	ConfidenceScore   float64  `json:"confidence_score"`
	NeedsManualReview bool     `json:"needs_manual_review"`
	ReviewReasons     []string `json:"review_reasons,omitempty"`
	Status            Status   `json:"compliance_status"`
	ScoringPolicy     string   `json:"scoring_policy"`

	ProcessingMS float64 `json:"processing_ms"`

	// MaskedImagePNG is the PII-redacted copy of the input image. It is not
	// serialized with the report; callers decide whether to persist or
	// transmit it.
	MaskedImagePNG []byte `json:"-"`
}

// FoundFields lists the names of fields whose verdicts are found.
func (r *ComplianceReport) FoundFields() []string {
	return fieldNames(r.Verdicts, true)
}

// MissingFields lists the names of fields whose verdicts are missing.
func (r *ComplianceReport) MissingFields() []string {
	return fieldNames(r.Verdicts, false)
}

func fieldNames(verdicts []keywords.Verdict, found bool) []string {
	var out []string
	for _, v := range verdicts {
		if v.Found == found {
			out = append(out, v.Field)
		}
	}
	return out
}

// Assemble composes the per-analyzer outputs into the final report. The
// tamper override lives here, above the scorer: a positive tamper signal
// forces manual review regardless of score.
func Assemble(
	text string,
	qualityResult quality.Result,
	verdicts []keywords.Verdict,
	fuzzyMatches []fuzzy.Match,
	expiryFinding expiry.Finding,
	piiFindings []pii.Finding,
	tamper forgery.Signal,
	outcome scoring.Outcome,
	policyName string,
) *ComplianceReport {
	r := &ComplianceReport{
		ScanID:            uuid.NewString(),
		ScannedAt:         time.Now().UTC(),
		ExtractedText:     text,
		ImageQuality:      qualityResult,
		Verdicts:          verdicts,
		FuzzyMatches:      fuzzyMatches,
		Expiry:            expiryFinding,
		PII:               piiFindings,
		Tamper:            tamper,
		ConfidenceScore:   outcome.Score,
		NeedsManualReview: outcome.NeedsManualReview,
		ReviewReasons:     outcome.ReviewReasons,
		ScoringPolicy:     policyName,
	}

	_, missing := keywords.Counts(verdicts)
	if missing == 0 {
		r.Status = StatusCompliant
	} else {
		r.Status = StatusNonCompliant
	}

	if tamper.IsForged {
		r.NeedsManualReview = true
		r.ReviewReasons = append(r.ReviewReasons, "tamper signal positive: "+tamper.Reason)
	}
	if r.NeedsManualReview {
		r.Status = StatusManualReview
	}

	return r
}
