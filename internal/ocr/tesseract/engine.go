// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tesseract provides the default ocr.Engine backed by the gosseract
// Tesseract client.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"label-scan/internal/ocr"
)

// Engine implements ocr.Engine using a per-call gosseract client. Clients are
// not safe for concurrent use, so each Recognize call builds and closes its
// own.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs OCR on img. The blocking Tesseract call runs in its own
// goroutine so the caller's deadline is honored; on timeout the context error
// is returned and the caller treats the scan as a no-text result.
func (e *Engine) Recognize(ctx context.Context, img image.Image, languages []string) (ocr.Result, error) {
	type outcome struct {
		result ocr.Result
		err    error
	}
	ch := make(chan outcome, 1)

	go func() {
		res, err := e.recognize(img, languages)
		ch <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	case out := <-ch:
		return out.result, out.err
	}
}

func (e *Engine) recognize(img image.Image, languages []string) (ocr.Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Result{}, fmt.Errorf("encode image for ocr: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		Text:   strings.TrimSpace(text),
		Tokens: extractTokens(c),
	}, nil
}

// extractTokens reads word-level bounding boxes from the client. A box read
// failure degrades to text-only output rather than failing the scan.
func extractTokens(c *gosseract.Client) []ocr.Token {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}

	tokens := make([]ocr.Token, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, ocr.Token{
			Text:       word,
			Confidence: clampConfidence(int(b.Confidence)),
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			W:          b.Box.Dx(),
			H:          b.Box.Dy(),
		})
	}
	return tokens
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
