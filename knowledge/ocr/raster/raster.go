//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package raster holds rendered page images handed to recognition engines.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Mode is the color layout of a rendered page.
type Mode string

// Supported modes.
const (
	ModeRGB  Mode = "RGB"
	ModeRGBA Mode = "RGBA"
)

// Image is a rendered page. It is transient: produced for one page,
// consumed by one recognition call and then dropped.
type Image struct {
	Width  int
	Height int
	Mode   Mode
	Pixels image.Image
}

// PageRenderer renders a zero-based page at a resolution.
// *pdf.Document implements it.
type PageRenderer interface {
	RenderPage(ctx context.Context, page, dpi int) (image.Image, error)
}

// Render rasterizes one page and wraps the result. Rendering is done fresh
// on every call; errors from the renderer are returned unchanged in the chain.
func Render(ctx context.Context, r PageRenderer, page, dpi int) (*Image, error) {
	img, err := r.RenderPage(ctx, page, dpi)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("renderer returned no image for page %d", page+1)
	}
	return FromImage(img), nil
}

// FromImage wraps img. The mode is RGBA when the pixels carry transparency
// and RGB otherwise.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	mode := ModeRGB
	if hasAlpha(img) {
		mode = ModeRGBA
	}
	return &Image{Width: b.Dx(), Height: b.Dy(), Mode: mode, Pixels: img}
}

// EncodePNG encodes the pixels as PNG. Opaque images are written without
// an alpha channel.
func (i *Image) EncodePNG() ([]byte, error) {
	if i == nil || i.Pixels == nil {
		return nil, fmt.Errorf("raster: empty image")
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, i.Pixels); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.YCbCrModel, color.CMYKModel:
		return false
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
