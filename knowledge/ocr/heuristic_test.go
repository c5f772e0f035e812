//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/internal/pdftest"
)

// fakeInspector serves per page facts from slices.
type fakeInspector struct {
	chars   []int
	images  []int
	failAt  int
	visited []int
}

func (f *fakeInspector) NumPages() int { return len(f.chars) }

func (f *fakeInspector) PageTextLength(i int) (int, error) {
	f.visited = append(f.visited, i)
	if f.failAt >= 0 && i == f.failAt {
		return 0, errors.New("broken page")
	}
	return f.chars[i], nil
}

func (f *fakeInspector) PageImageCount(i int) (int, error) {
	return f.images[i], nil
}

func pages(chars []int, images []int) *fakeInspector {
	if images == nil {
		images = make([]int, len(chars))
	}
	return &fakeInspector{chars: chars, images: images, failAt: -1}
}

func TestNeedsOCRDocumentRules(t *testing.T) {
	tests := []struct {
		name   string
		chars  []int
		images []int
		want   bool
	}{
		{"zero pages", nil, nil, false},
		{"two pages 40 chars no images", []int{20, 20}, nil, true},
		{"two pages 150 chars no images", []int{75, 75}, nil, false},
		{"two pages 150 chars with image", []int{75, 75}, []int{1, 0}, true},
		{"two pages 250 chars with image", []int{125, 125}, []int{0, 2}, false},
		{"one page exactly 50 chars", []int{50}, nil, false},
		{"one page 49 chars", []int{49}, nil, true},
		{"one page exactly 100 chars with image", []int{100}, []int{1}, false},
		{"one page 99 chars with image", []int{99}, []int{1}, true},
		{"image free scanned-like", []int{0, 0, 0}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsOCRDocument(pages(tt.chars, tt.images)))
		})
	}
}

func TestInspectSamplesOnlyFirstFivePages(t *testing.T) {
	// Ten pages: the first five are empty, the rest are text heavy.
	chars := []int{0, 0, 0, 0, 0, 5000, 5000, 5000, 5000, 5000}
	doc := pages(chars, nil)

	in, err := Inspect(doc)
	require.NoError(t, err)
	assert.Equal(t, 5, in.Pages)
	assert.Equal(t, 0, in.TextChars)
	assert.True(t, in.NeedsOCR)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, doc.visited)

	// Content beyond the sample never changes the decision.
	chars[9] = 0
	assert.True(t, NeedsOCRDocument(pages(chars, nil)))

	// Shorter documents are inspected page by page.
	short := pages([]int{60, 60, 60}, nil)
	in, err = Inspect(short)
	require.NoError(t, err)
	assert.Equal(t, 3, in.Pages)
	assert.Equal(t, []int{0, 1, 2}, short.visited)
	assert.False(t, in.NeedsOCR)
}

func TestInspectReportsReason(t *testing.T) {
	in, err := Inspect(pages([]int{10}, []int{1}))
	require.NoError(t, err)
	assert.True(t, in.HasImages)
	assert.Contains(t, in.Reason, "images")

	in, err = Inspect(pages([]int{500}, nil))
	require.NoError(t, err)
	assert.False(t, in.NeedsOCR)
	assert.Contains(t, in.Reason, "text layer present")
}

func TestNeedsOCRDocumentFailsOpen(t *testing.T) {
	doc := pages([]int{0, 0, 0}, nil)
	doc.failAt = 1
	assert.False(t, NeedsOCRDocument(doc))

	_, err := Inspect(doc)
	assert.Error(t, err)
}

type panickingInspector struct{ fakeInspector }

func (p *panickingInspector) NumPages() int { panic("closed") }

func TestNeedsOCRDocumentRecoversPanics(t *testing.T) {
	assert.False(t, NeedsOCRDocument(&panickingInspector{}))
}

func TestNeedsOCRMissingOrCorruptFile(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, NeedsOCR(context.Background(), filepath.Join(dir, "missing.pdf")))

	corrupt := filepath.Join(dir, "corrupt.pdf")
	require.NoError(t, os.WriteFile(corrupt, []byte("%PDF-1.4 garbage"), 0o644))
	assert.False(t, NeedsOCR(context.Background(), corrupt))
}

func TestNeedsOCRRealFiles(t *testing.T) {
	dir := t.TempDir()

	text := pdftest.Text(t, dir,
		pdftest.Repeat("The quick brown fox jumps over the lazy dog. ", 300),
		pdftest.Repeat("Pack my box with five dozen liquor jugs. ", 300),
	)
	assert.False(t, NeedsOCR(context.Background(), text))

	scanned := pdftest.Scanned(t, dir, 3)
	assert.True(t, NeedsOCR(context.Background(), scanned))

	sparse := pdftest.Write(t, dir, "sparse.pdf", pdftest.Page{Text: "Fig. 1", Image: true})
	assert.True(t, NeedsOCR(context.Background(), sparse))
}
