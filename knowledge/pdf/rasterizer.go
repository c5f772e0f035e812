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
	"fmt"
	"image"
	"sort"
	"strings"
)

// Rasterizer names.
const (
	RasterizerFitz        = "fitz"
	RasterizerGhostscript = "gs"

	// DefaultRasterizer is used when no rasterizer is selected.
	DefaultRasterizer = RasterizerFitz
)

// Rasterizer renders pages of one PDF into images.
type Rasterizer interface {
	// Render rasterizes the zero-based page at dpi.
	Render(ctx context.Context, page, dpi int) (image.Image, error)
	// Close releases the backend.
	Close() error
}

type rasterizerBuilder func(path string, content []byte) (Rasterizer, error)

var rasterizers = map[string]rasterizerBuilder{
	RasterizerFitz:        newFitzRasterizer,
	RasterizerGhostscript: newGhostscriptRasterizer,
}

// RasterizerNames returns the supported rasterizer names in sorted order.
func RasterizerNames() []string {
	names := make([]string, 0, len(rasterizers))
	for name := range rasterizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newRasterizer(name, path string, content []byte) (Rasterizer, error) {
	builder, ok := rasterizers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("pdf: unknown rasterizer %q (supported: %s)", name, strings.Join(RasterizerNames(), ", "))
	}
	r, err := builder(path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s rasterizer: %w", name, err)
	}
	return r, nil
}
