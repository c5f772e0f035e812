//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package pdf

import (
	"context"
	"image"

	"github.com/gen2brain/go-fitz"
)

// fitzRasterizer renders pages with MuPDF.
type fitzRasterizer struct {
	doc *fitz.Document
}

func newFitzRasterizer(_ string, content []byte) (Rasterizer, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, err
	}
	return &fitzRasterizer{doc: doc}, nil
}

func (r *fitzRasterizer) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.doc.ImageDPI(page, float64(dpi))
}

func (r *fitzRasterizer) Close() error {
	return r.doc.Close()
}
