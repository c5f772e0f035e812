//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package pdftest generates small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Page describes one fixture page.
type Page struct {
	// Text is written line by line in Helvetica 12pt.
	Text string
	// Image embeds an opaque PNG covering the upper half of the page.
	Image bool
}

// Write generates a PDF with the given pages into dir and returns its path.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	registered := false
	for _, p := range pages {
		doc.AddPage()
		if p.Image {
			if !registered {
				doc.RegisterImageOptionsReader("scan", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(scanPNG(t)))
				registered = true
			}
			doc.ImageOptions("scan", 10, 10, 190, 130, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			doc.SetY(150)
		}
		for _, line := range strings.Split(p.Text, "\n") {
			if line == "" {
				continue
			}
			doc.Cell(0, 8, line)
			doc.Ln(8)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to generate test PDF: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// Text generates a text-only PDF with one page per entry.
func Text(t testing.TB, dir string, pages ...string) string {
	t.Helper()
	ps := make([]Page, len(pages))
	for i, text := range pages {
		ps[i] = Page{Text: text}
	}
	return Write(t, dir, "text.pdf", ps...)
}

// Scanned generates a PDF of n image-only pages.
func Scanned(t testing.TB, dir string, n int) string {
	t.Helper()
	ps := make([]Page, n)
	for i := range ps {
		ps[i] = Page{Image: true}
	}
	return Write(t, dir, "scanned.pdf", ps...)
}

// Repeat returns a string of n characters built from word.
func Repeat(word string, n int) string {
	if n <= 0 || word == "" {
		return ""
	}
	s := strings.Repeat(word, n/len(word)+1)
	return s[:n]
}

func scanPNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if (x/8+y/8)%2 == 0 {
				c = color.RGBA{A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture image: %v", err)
	}
	return buf.Bytes()
}
