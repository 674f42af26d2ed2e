// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pii

import (
	"image"
	"testing"

	"label-scan/internal/ocr"
)

// testImage builds a checkerboard RGBA so blurring measurably changes pixels.
func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 255
		}
	}
	return img
}

func TestDetectAndMask_PhoneTokenBlurred(t *testing.T) {
	src := testImage(100, 60)
	tokens := []ocr.Token{
		{Text: "Contact:", X: 5, Y: 20, W: 30, H: 10},
		{Text: "9876543210", X: 40, Y: 20, W: 40, H: 10},
	}

	masker := NewMasker(NewDetector(DefaultPatterns()), nil)
	masked, findings := masker.DetectAndMask(src, "Contact: 9876543210", tokens)

	if len(findings) != 1 || findings[0].Category != CategoryPhone {
		t.Fatalf("findings = %+v, want one phone finding", findings)
	}
	if !findings[0].Masked {
		t.Error("phone finding not marked masked")
	}

	// The padded token box must differ from the source; everything outside
	// must be untouched.
	box := tokens[1].Box().Inset(-maskPadding).Intersect(src.Bounds())
	changedInside := false
	for y := src.Bounds().Min.Y; y < src.Bounds().Max.Y; y++ {
		for x := src.Bounds().Min.X; x < src.Bounds().Max.X; x++ {
			i := src.PixOffset(x, y)
			same := src.Pix[i] == masked.Pix[i] &&
				src.Pix[i+1] == masked.Pix[i+1] &&
				src.Pix[i+2] == masked.Pix[i+2]
			inside := (image.Point{X: x, Y: y}).In(box)
			if inside && !same {
				changedInside = true
			}
			if !inside && !same {
				t.Fatalf("pixel (%d,%d) outside the mask box changed", x, y)
			}
		}
	}
	if !changedInside {
		t.Error("no pixel inside the mask box changed")
	}
}

func TestDetectAndMask_NoPII(t *testing.T) {
	src := testImage(40, 40)
	masked, findings := masker().DetectAndMask(src, "MRP Rs. 45 only", nil)

	if findings != nil {
		t.Errorf("findings = %+v, want none", findings)
	}
	for i := range src.Pix {
		if src.Pix[i] != masked.Pix[i] {
			t.Fatal("image changed although nothing was detected")
		}
	}
}

func TestDetectAndMask_TextOnlyEvidence(t *testing.T) {
	// PII in text but no token carries it: found, not masked.
	src := testImage(40, 40)
	tokens := []ocr.Token{{Text: "unrelated", X: 2, Y: 2, W: 10, H: 5}}

	_, findings := masker().DetectAndMask(src, "care@example.com", tokens)

	if len(findings) != 1 || findings[0].Category != CategoryEmail {
		t.Fatalf("findings = %+v, want one email finding", findings)
	}
	if findings[0].Masked {
		t.Error("finding marked masked without a correlated token")
	}
}

func TestDetectAndMask_OriginalUntouched(t *testing.T) {
	src := testImage(60, 40)
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	tokens := []ocr.Token{{Text: "9876543210", X: 10, Y: 10, W: 30, H: 8}}
	masker().DetectAndMask(src, "9876543210", tokens)

	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("source image was mutated")
		}
	}
}

func TestSubstringCorrelator_CaseInsensitive(t *testing.T) {
	tokens := []ocr.Token{{Text: "CARE@EXAMPLE.COM"}}
	got := SubstringCorrelator{}.Correlate("care@example.com", tokens)
	if len(got) != 1 {
		t.Errorf("Correlate returned %d tokens, want 1", len(got))
	}
}

func masker() *Masker {
	return NewMasker(NewDetector(DefaultPatterns()), nil)
}
