// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"label-scan/internal/config"
	"label-scan/internal/imaging"
	"label-scan/internal/pipeline"
	"label-scan/internal/report"
)

func testPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	// No OCR engine: scans degrade to image-only evidence, which is all the
	// pool behavior needs.
	p, err := pipeline.New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return p
}

func writeTestImages(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("label-%02d.png", i))
		if err := os.WriteFile(p, data, 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestScanFiles_Batch(t *testing.T) {
	pool := NewWorkerPool(3, testPipeline(t), nil)
	paths := writeTestImages(t, 6)

	results, summary, err := pool.ScanFiles(context.Background(), paths, pipeline.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	if summary.Total != 6 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 6 total 0 failed", summary)
	}
	// Blank uniform labels route to manual review.
	if summary.ManualReview != 6 {
		t.Errorf("summary.ManualReview = %d, want 6", summary.ManualReview)
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("file %s failed: %v", r.FilePath, r.Error)
			continue
		}
		if r.Report.Status != report.StatusManualReview {
			t.Errorf("file %s status = %s", r.FilePath, r.Report.Status)
		}
		if r.Report.Filename != r.FilePath {
			t.Errorf("report filename = %q, want %q", r.Report.Filename, r.FilePath)
		}
	}
}

func TestScanFiles_BatchCap(t *testing.T) {
	pool := NewWorkerPool(2, testPipeline(t), nil)

	paths := make([]string, MaxBatchFiles+1)
	for i := range paths {
		paths[i] = fmt.Sprintf("file-%d.png", i)
	}

	_, _, err := pool.ScanFiles(context.Background(), paths, pipeline.Options{})
	if err == nil {
		t.Fatal("oversized batch accepted")
	}
}

func TestScanFiles_Empty(t *testing.T) {
	pool := NewWorkerPool(2, testPipeline(t), nil)
	results, summary, err := pool.ScanFiles(context.Background(), nil, pipeline.Options{})
	if err != nil || len(results) != 0 || summary.Total != 0 {
		t.Errorf("empty batch: results=%v summary=%+v err=%v", results, summary, err)
	}
}

func TestScanFiles_UnreadableFileCountsAsFailed(t *testing.T) {
	pool := NewWorkerPool(2, testPipeline(t), nil)
	paths := append(writeTestImages(t, 2), "/nonexistent/label.png")

	results, summary, err := pool.ScanFiles(context.Background(), paths, pipeline.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary.Failed = %d, want 1", summary.Failed)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestNewWorkerPool_ClampsWidth(t *testing.T) {
	pool := NewWorkerPool(0, testPipeline(t), nil)
	if pool.workers != 1 {
		t.Errorf("workers = %d, want 1", pool.workers)
	}
}
