// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel runs batch scans across a fixed worker pool. One worker
// holds one in-flight scan; the pipeline itself fans each scan out
// internally, so pool width times analyzer fan-out bounds total concurrency.
package parallel

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"label-scan/internal/observability"
	"label-scan/internal/pipeline"
	"label-scan/internal/report"
)

// MaxBatchFiles caps how many files one batch may carry.
const MaxBatchFiles = 50

// Job represents one file scan task
type Job struct {
	FilePath string
	Options  pipeline.Options
}

// Result represents one file scan outcome
type Result struct {
	FilePath string
	Report   *report.ComplianceReport
	Error    error
	Duration time.Duration
}

// BatchSummary aggregates a finished batch.
type BatchSummary struct {
	Total        int     `json:"total"`
	Compliant    int     `json:"compliant"`
	NonCompliant int     `json:"non_compliant"`
	ManualReview int     `json:"manual_review"`
	Failed       int     `json:"failed"`
	DurationMS   float64 `json:"duration_ms"`
}

// WorkerPool manages parallel image scanning
type WorkerPool struct {
	workers  int
	pipe     *pipeline.Pipeline
	observer *observability.StandardObserver

	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
}

// NewWorkerPool creates a pool of the given width. Width is clamped to at
// least one.
func NewWorkerPool(workers int, pipe *pipeline.Pipeline, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers:  workers,
		pipe:     pipe,
		observer: observer,
		jobs:     make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
	}
}

// ScanFiles processes filePaths and returns per-file results in completion
// order plus a batch summary. base carries per-batch options (mask retention,
// language overrides); Filename is set per file. The batch size cap is
// enforced up front; ctx cancellation stops workers between files.
func (wp *WorkerPool) ScanFiles(ctx context.Context, filePaths []string, base pipeline.Options) ([]Result, BatchSummary, error) {
	if len(filePaths) == 0 {
		return nil, BatchSummary{}, nil
	}
	if len(filePaths) > MaxBatchFiles {
		return nil, BatchSummary{}, fmt.Errorf("batch of %d files exceeds the %d file limit", len(filePaths), MaxBatchFiles)
	}

	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "scan_files", "")
	}

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}

	go func() {
		defer close(wp.jobs)
		for _, path := range filePaths {
			opts := base
			opts.Filename = path
			select {
			case wp.jobs <- Job{FilePath: path, Options: opts}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wp.wg.Wait()
		close(wp.results)
	}()

	results := make([]Result, 0, len(filePaths))
	for result := range wp.results {
		results = append(results, result)
	}

	summary := summarize(results, time.Since(start))
	if finishTiming != nil {
		finishTiming(summary.Failed == 0, map[string]interface{}{
			"total":     summary.Total,
			"compliant": summary.Compliant,
			"failed":    summary.Failed,
		})
	}
	return results, summary, ctx.Err()
}

// worker drains the job queue until it closes or the context is canceled.
func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := wp.processJob(ctx, job)

		select {
		case wp.results <- result:
		case <-ctx.Done():
			return
		}
	}
}

// processJob scans a single file.
func (wp *WorkerPool) processJob(ctx context.Context, job Job) Result {
	start := time.Now()

	data, err := os.ReadFile(job.FilePath)
	if err != nil {
		return Result{
			FilePath: job.FilePath,
			Error:    fmt.Errorf("reading %s: %w", job.FilePath, err),
			Duration: time.Since(start),
		}
	}

	rep, err := wp.pipe.Scan(ctx, data, job.Options)
	return Result{
		FilePath: job.FilePath,
		Report:   rep,
		Error:    err,
		Duration: time.Since(start),
	}
}

func summarize(results []Result, elapsed time.Duration) BatchSummary {
	summary := BatchSummary{
		Total:      len(results),
		DurationMS: float64(elapsed.Microseconds()) / 1000.0,
	}
	for _, r := range results {
		if r.Error != nil || r.Report == nil {
			summary.Failed++
			continue
		}
		switch r.Report.Status {
		case report.StatusCompliant:
			summary.Compliant++
		case report.StatusNonCompliant:
			summary.NonCompliant++
		case report.StatusManualReview:
			summary.ManualReview++
		}
	}
	return summary
}
