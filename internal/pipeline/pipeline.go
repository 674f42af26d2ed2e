// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline wires the analyzers into the single-image scan flow:
// decode, recognize, fan out the independent analyses, score, assemble.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"label-scan/internal/analyzers/expiry"
	"label-scan/internal/analyzers/forgery"
	"label-scan/internal/analyzers/fuzzy"
	"label-scan/internal/analyzers/keywords"
	"label-scan/internal/analyzers/pii"
	"label-scan/internal/analyzers/quality"
	"label-scan/internal/analyzers/scoring"
	"label-scan/internal/config"
	"label-scan/internal/imaging"
	"label-scan/internal/observability"
	"label-scan/internal/ocr"
	"label-scan/internal/report"
)

// Options carries per-scan overrides. Zero values defer to configuration.
type Options struct {
	Filename  string
	Languages []string
	KeepMask  bool // retain the PII-masked PNG on the report
}

// Pipeline owns one instance of each analyzer, constructed once from
// configuration and reused across scans. All analyzers are safe for
// concurrent use, so a single Pipeline may serve many goroutines.
type Pipeline struct {
	cfg      *config.Config
	engine   ocr.Engine
	observer *observability.StandardObserver

	assessor  *quality.Assessor
	matcher   *keywords.Matcher
	fuzzier   *fuzzy.Matcher
	extractor *expiry.Extractor
	masker    *pii.Masker
	forensics *forgery.Detector
	policy    scoring.Policy
}

// New builds a pipeline from configuration. engine may be nil when callers
// only use Analyze with pre-recognized text. observer may be nil.
func New(cfg *config.Config, engine ocr.Engine, observer *observability.StandardObserver) (*Pipeline, error) {
	if cfg == nil {
		cfg, _ = config.LoadConfig("")
	}

	policy, err := scoring.New(cfg.Defaults.Policy, cfg.Thresholds.ReviewScore)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		engine:    engine,
		observer:  observer,
		assessor:  quality.NewAssessor(cfg.Thresholds.Blur, cfg.Thresholds.QualityTiers),
		matcher:   keywords.NewMatcher(cfg.MandatoryFields()),
		fuzzier:   fuzzy.NewMatcher(cfg.FuzzyTable(), cfg.Thresholds.FuzzyMatch),
		extractor: expiry.NewExtractor(),
		masker:    pii.NewMasker(pii.NewDetector(nil), nil),
		forensics: forgery.NewDetector(cfg.Thresholds.ForgeryError),
		policy:    policy,
	}, nil
}

// Policy exposes the active scoring policy name.
func (p *Pipeline) Policy() string { return p.policy.Name() }

// Scan runs the full flow on raw encoded image bytes. Decode failure is the
// only fatal input error; OCR failure or timeout degrades to an empty text
// result and the scan proceeds on image-only evidence.
func (p *Pipeline) Scan(ctx context.Context, data []byte, opts Options) (*report.ComplianceReport, error) {
	start := time.Now()
	scanID := uuid.NewString()

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	text := p.recognize(ctx, img, opts.Languages, scanID)

	rep := p.analyze(ctx, img, data, text, scanID, opts.KeepMask)
	rep.ScanID = scanID
	rep.Filename = opts.Filename
	rep.ProcessingMS = float64(time.Since(start).Microseconds()) / 1000.0
	return rep, nil
}

// Analyze runs the analyzers on an already-decoded image and caller-supplied
// recognition result, for hosts that run OCR elsewhere. rawData may be nil;
// EXIF evidence is then unavailable to the tamper check.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image, rawData []byte, text ocr.Result, opts Options) *report.ComplianceReport {
	start := time.Now()
	scanID := uuid.NewString()
	rep := p.analyze(ctx, img, rawData, text, scanID, opts.KeepMask)
	rep.ScanID = scanID
	rep.Filename = opts.Filename
	rep.ProcessingMS = float64(time.Since(start).Microseconds()) / 1000.0
	return rep
}

// recognize runs the OCR engine under the configured timeout. Any failure is
// logged and swallowed: downstream analyzers treat no-text the same way they
// treat a blank label.
func (p *Pipeline) recognize(ctx context.Context, img image.Image, languages []string, scanID string) ocr.Result {
	if p.engine == nil {
		return ocr.Result{}
	}

	if len(languages) == 0 {
		languages = p.cfg.OCR.Languages
	}

	timeout := time.Duration(p.cfg.OCR.TimeoutSeconds) * time.Second
	ocrCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := p.observer.StartTiming("ocr", "recognize", scanID)
	result, err := p.engine.Recognize(ocrCtx, img, languages)
	if err != nil {
		done(false, map[string]interface{}{"engine": p.engine.Name(), "error": err.Error()})
		return ocr.Result{}
	}
	done(true, map[string]interface{}{
		"engine": p.engine.Name(),
		"tokens": len(result.Tokens),
		"chars":  len(result.Text),
	})
	return result
}

// analyze fans the six analyses out concurrently. Each is a pure function of
// the decoded image and recognized text, so they never contend; the group
// exists for the fan-out/join shape, not for error propagation.
func (p *Pipeline) analyze(ctx context.Context, img image.Image, rawData []byte, text ocr.Result, scanID string, keepMask bool) *report.ComplianceReport {
	var (
		qualityResult quality.Result
		verdicts      []keywords.Verdict
		fuzzyMatches  []fuzzy.Match
		expiryFinding expiry.Finding
		maskedImage   *image.RGBA
		piiFindings   []pii.Finding
		tamper        forgery.Signal
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(p.timed("quality", "assess", scanID, func() {
		qualityResult = p.assessor.Assess(img)
	}))
	g.Go(p.timed("keywords", "match", scanID, func() {
		verdicts = p.matcher.Match(text.Text)
	}))
	g.Go(p.timed("fuzzy", "match", scanID, func() {
		fuzzyMatches = p.fuzzier.Match(text.Text)
	}))
	g.Go(p.timed("expiry", "extract", scanID, func() {
		expiryFinding = p.extractor.Extract(text.Text)
	}))
	g.Go(p.timed("pii", "detect_and_mask", scanID, func() {
		maskedImage, piiFindings = p.masker.DetectAndMask(img, text.Text, text.Tokens)
	}))
	g.Go(p.timed("forgery", "detect", scanID, func() {
		tamper = p.forensics.Detect(img, rawData)
	}))

	// Analyzers return no errors; Wait is a pure join.
	_ = g.Wait()

	found, _ := keywords.Counts(verdicts)
	meanConf, hasConf := text.MeanConfidence()
	outcome := p.policy.Score(scoring.Inputs{
		FoundFields:         found,
		TotalFields:         len(verdicts),
		Quality:             qualityResult.Quality,
		MeanTokenConfidence: meanConf,
		HasTokenConfidence:  hasConf,
	})

	rep := report.Assemble(text.Text, qualityResult, verdicts, fuzzyMatches,
		expiryFinding, piiFindings, tamper, outcome, p.policy.Name())

	if keepMask && maskedImage != nil && len(piiFindings) > 0 {
		if png, err := imaging.EncodePNG(maskedImage); err == nil {
			rep.MaskedImagePNG = png
		}
	}
	return rep
}

// timed wraps an analyzer call with observer timing for use as an errgroup
// task.
func (p *Pipeline) timed(component, operation, scanID string, fn func()) func() error {
	return func() error {
		done := p.observer.StartTiming(component, operation, scanID)
		fn()
		done(true, nil)
		return nil
	}
}
