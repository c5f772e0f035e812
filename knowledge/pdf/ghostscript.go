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
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
)

// GhostscriptBinary is the executable used by the gs rasterizer.
var GhostscriptBinary = "gs"

// ghostscriptRasterizer renders pages by running Ghostscript once per page
// and decoding the PNG it writes to stdout.
type ghostscriptRasterizer struct {
	binary string
	path   string
}

func newGhostscriptRasterizer(path string, _ []byte) (Rasterizer, error) {
	binary, err := exec.LookPath(GhostscriptBinary)
	if err != nil {
		return nil, fmt.Errorf("ghostscript not found: %w", err)
	}
	return &ghostscriptRasterizer{binary: binary, path: path}, nil
}

func (r *ghostscriptRasterizer) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	pageNum := strconv.Itoa(page + 1)
	cmd := exec.CommandContext(ctx, r.binary,
		"-q",
		"-dQUIET",
		"-dSAFER",
		"-dNOPAUSE",
		"-dBATCH",
		"-sDEVICE=png16m",
		"-r"+strconv.Itoa(dpi),
		"-dFirstPage="+pageNum,
		"-dLastPage="+pageNum,
		"-sOutputFile=-",
		r.path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ghostscript failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ghostscript output: %w", err)
	}
	return img, nil
}

func (r *ghostscriptRasterizer) Close() error {
	return nil
}
