//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package ocr decides whether a PDF needs optical character recognition and
// converts scanned PDFs to plain text page by page.
//
// Recognition backends live in sub packages and register themselves by
// name; import them for their side effect:
//
//	import _ "trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/tesseract"
package ocr

import (
	"context"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
)

// Engine recognizes text in rendered page images.
//
// An Engine is built once per conversion and used for every page of that
// conversion. It performs all configuration checks at construction time.
type Engine interface {
	// Name returns the registered engine name.
	Name() string
	// Preprocess prepares an image for recognition.
	Preprocess(img *raster.Image) *raster.Image
	// ExtractText recognizes the text in img. It never fails: recognition
	// errors are logged and reported as an empty string.
	ExtractText(ctx context.Context, img *raster.Image) string
	// Close releases the engine.
	Close() error
}

// NopPreprocess implements Engine.Preprocess as the identity transform.
// Engines embed it.
type NopPreprocess struct{}

// Preprocess returns img unchanged.
func (NopPreprocess) Preprocess(img *raster.Image) *raster.Image {
	return img
}
