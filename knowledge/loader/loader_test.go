//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/internal/pdftest"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
)

type stubConverter struct {
	text    string
	err     error
	calls   int
	outputs []string
}

func (s *stubConverter) Convert(_ context.Context, _, outputPath string) (string, error) {
	s.calls++
	s.outputs = append(s.outputs, outputPath)
	if s.err != nil {
		return "", s.err
	}
	if err := os.WriteFile(outputPath, []byte(s.text), 0o644); err != nil {
		return "", err
	}
	return s.text, nil
}

func detectAlways(context.Context, string) bool { return true }

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"a.pdf":      true,
		"B.PDF":      true,
		"c.docx":     true,
		"d.txt":      true,
		"e.md":       true,
		"f.csv":      true,
		"g.doc":      false,
		"h":          false,
		"i.markdown": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsSupported(path), path)
	}
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := LoadDocument(context.Background(), "slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestLoad_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("lorem ipsum ", 200)), 0o644))

	docs, err := LoadDocument(context.Background(), path, WithChunking(300, 50))
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)
	for _, d := range docs {
		assert.LessOrEqual(t, len([]rune(d.Content)), 300)
		assert.Equal(t, path, d.Metadata[document.MetaSource])
	}
}

func TestLoad_PDFWithOCR(t *testing.T) {
	path := pdftest.Scanned(t, t.TempDir(), 1)
	conv := &stubConverter{text: ocr.PageMarker(1) + "recognized words\n\n"}

	docs, err := LoadDocument(context.Background(), path,
		WithOCR(true), WithDetector(detectAlways), WithConverter(conv))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, conv.calls)
	assert.Contains(t, docs[0].Content, "--- Page 1 ---")
	assert.Contains(t, docs[0].Content, "recognized words")
	assert.Equal(t, path, docs[0].Metadata[document.MetaSource])
	assert.Equal(t, "pdf", docs[0].Metadata[document.MetaFileType])
	assert.Equal(t, document.ExtractionOCR, docs[0].Metadata[document.MetaExtraction])

	require.Len(t, conv.outputs, 1)
	assert.True(t, strings.HasSuffix(conv.outputs[0], ".txt"))
	_, statErr := os.Stat(conv.outputs[0])
	assert.True(t, os.IsNotExist(statErr), "temporary OCR output must be removed")
}

func TestLoad_PDFOCRFailureFallsBack(t *testing.T) {
	path := pdftest.Text(t, t.TempDir(), "Plain text layer")
	conv := &stubConverter{err: errors.New("engine exploded")}

	docs, err := LoadDocument(context.Background(), path,
		WithOCR(true), WithDetector(detectAlways), WithConverter(conv))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "Plain")
	assert.Equal(t, document.ExtractionText, docs[0].Metadata[document.MetaExtraction])

	_, statErr := os.Stat(conv.outputs[0])
	assert.True(t, os.IsNotExist(statErr))
}

type panicConverter struct{}

func (panicConverter) Convert(context.Context, string, string) (string, error) {
	panic("recognizer crashed")
}

func TestLoad_PDFOCRPanicFallsBack(t *testing.T) {
	path := pdftest.Text(t, t.TempDir(), "Plain text layer")

	docs, err := LoadDocument(context.Background(), path,
		WithOCR(true), WithDetector(detectAlways), WithConverter(panicConverter{}))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "Plain")
	assert.Equal(t, document.ExtractionText, docs[0].Metadata[document.MetaExtraction])
}

func TestLoad_PDFOCRDisabled(t *testing.T) {
	path := pdftest.Text(t, t.TempDir(), "Plain text layer")
	conv := &stubConverter{text: "unused"}
	detected := false
	detector := func(context.Context, string) bool {
		detected = true
		return true
	}

	_, err := LoadDocument(context.Background(), path,
		WithOCR(false), WithDetector(detector), WithConverter(conv))
	require.NoError(t, err)
	assert.False(t, detected)
	assert.Zero(t, conv.calls)
}

func TestLoad_PDFNotScanned(t *testing.T) {
	path := pdftest.Text(t, t.TempDir(), pdftest.Repeat("word", 40))
	conv := &stubConverter{text: "unused"}

	docs, err := LoadDocument(context.Background(), path, WithOCR(true), WithConverter(conv))
	require.NoError(t, err)
	assert.Zero(t, conv.calls)
	require.NotEmpty(t, docs)
}
