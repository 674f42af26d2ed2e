// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package imaging holds the pixel-level primitives shared by the analyzers:
// decoding, grayscale conversion, and the blur kernels used for error-level
// analysis and PII masking.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	// Registered decoders. BMP, TIFF and WebP come from golang.org/x/image so
	// field photos survive whatever format the upload pipeline hands us.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// Decode parses encoded image bytes into an image.Image. Unsupported or
// corrupt data is an input error surfaced to the caller before any analyzer
// runs.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	return img, nil
}

// EncodePNG serializes an image as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToGray converts any image to 8-bit grayscale. Images that are already
// grayscale are returned as-is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	return gray
}

// ToRGBA copies any image into a mutable RGBA buffer with a zero origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	return rgba
}

// GrayFloats returns the grayscale pixel values normalized to [0,1] in
// row-major order along with the image width and height.
func GrayFloats(gray *image.Gray) ([]float64, int, int) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x, v := range row {
			out[y*w+x] = float64(v) / 255.0
		}
	}
	return out, w, h
}

// GaussianBlur applies a separable Gaussian kernel to a normalized grayscale
// plane. The kernel radius is ceil(3*sigma), matching the usual truncation.
func GaussianBlur(src []float64, w, h int, sigma float64) []float64 {
	if sigma <= 0 || w <= 0 || h <= 0 {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	// Horizontal pass
	tmp := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				xx := clamp(x+k, 0, w-1)
				sum += src[y*w+xx] * kernel[k+radius]
			}
			tmp[y*w+x] = sum
		}
	}

	// Vertical pass
	out := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				yy := clamp(y+k, 0, h-1)
				sum += tmp[yy*w+x] * kernel[k+radius]
			}
			out[y*w+x] = sum
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(3*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := gauss(float64(i), sigma)
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func gauss(x, sigma float64) float64 {
	return math.Exp(-(x * x) / (2 * sigma * sigma))
}

// BlurRegion applies a k x k box blur to rect on img in place. The rectangle
// is clipped to the image bounds; a degenerate rectangle is a no-op.
func BlurRegion(img *image.RGBA, rect image.Rectangle, k int) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() || k < 2 {
		return
	}
	radius := k / 2

	w, h := rect.Dx(), rect.Dy()
	blurred := make([]uint8, w*h*4)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			var r, g, b, a, n int
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					sx := clamp(x+dx, rect.Min.X, rect.Max.X-1)
					sy := clamp(y+dy, rect.Min.Y, rect.Max.Y-1)
					i := img.PixOffset(sx, sy)
					r += int(img.Pix[i])
					g += int(img.Pix[i+1])
					b += int(img.Pix[i+2])
					a += int(img.Pix[i+3])
					n++
				}
			}
			o := ((y-rect.Min.Y)*w + (x - rect.Min.X)) * 4
			blurred[o] = uint8(r / n)
			blurred[o+1] = uint8(g / n)
			blurred[o+2] = uint8(b / n)
			blurred[o+3] = uint8(a / n)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(rect.Min.X+x, rect.Min.Y+y)
			o := (y*w + x) * 4
			copy(img.Pix[i:i+4], blurred[o:o+4])
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
