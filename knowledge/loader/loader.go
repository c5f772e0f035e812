//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package loader turns files on disk into chunked documents. PDFs without a
// usable text layer are routed through OCR first.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/chunking"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
	idocument "trpc.group/trpc-go/trpc-docqa-go/knowledge/internal/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/log"

	// Readers and OCR engines register themselves on import.
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader/csv"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader/docx"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader/markdown"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader/pdf"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader/text"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/easyocr"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/tesseract"
)

// SupportedExtensions lists the file types the loader accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".md", ".csv"}

// ErrUnsupportedFile is returned for files whose extension is not supported.
var ErrUnsupportedFile = errors.New("unsupported file type")

// IsSupported reports whether path has a supported extension, ignoring case.
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Converter writes the OCR text of a PDF to outputPath.
type Converter interface {
	Convert(ctx context.Context, pdfPath, outputPath string) (string, error)
}

// Detector decides whether a PDF needs OCR.
type Detector func(ctx context.Context, path string) bool

type options struct {
	ocr          bool
	ocrConfig    ocr.Config
	chunkSize    int
	chunkOverlap int
	detector     Detector
	converter    Converter
}

// Option configures a Loader.
type Option func(*options)

// WithOCR enables the OCR path for scanned PDFs.
func WithOCR(enabled bool) Option {
	return func(o *options) {
		o.ocr = enabled
	}
}

// WithOCRConfig sets the engine configuration used for OCR.
func WithOCRConfig(cfg ocr.Config) Option {
	return func(o *options) {
		o.ocrConfig = cfg
	}
}

// WithChunking sets chunk size and overlap in characters.
func WithChunking(size, overlap int) Option {
	return func(o *options) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithDetector replaces ocr.NeedsOCR.
func WithDetector(d Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// WithConverter replaces the OCR converter built from the OCR config.
func WithConverter(c Converter) Option {
	return func(o *options) {
		o.converter = c
	}
}

// Loader loads single files.
type Loader struct {
	opts options
}

// New creates a Loader. Chunking defaults to 1000 characters with 200 overlap.
func New(opts ...Option) *Loader {
	o := options{
		ocrConfig:    ocr.DefaultConfig(),
		chunkSize:    chunking.DefaultChunkSize,
		chunkOverlap: chunking.DefaultOverlap,
		detector:     ocr.NeedsOCR,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.converter == nil {
		o.converter = ocr.NewConverter(o.ocrConfig)
	}
	return &Loader{opts: o}
}

// LoadDocument loads path with a Loader built from opts.
func LoadDocument(ctx context.Context, path string, opts ...Option) ([]*document.Document, error) {
	return New(opts...).Load(ctx, path)
}

func (l *Loader) readerOptions() []reader.Option {
	return []reader.Option{
		reader.WithChunkSize(l.opts.chunkSize),
		reader.WithChunkOverlap(l.opts.chunkOverlap),
	}
}

// Load reads path into chunked documents.
func (l *Loader) Load(ctx context.Context, path string) ([]*document.Document, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" && l.opts.ocr && l.opts.detector(ctx, path) {
		log.Infof("PDF appears to be scanned, using OCR: %s", path)
		docs, err := l.loadWithOCR(ctx, path)
		if err == nil {
			return docs, nil
		}
		log.Errorf("OCR failed for %s, falling back to text extraction: %v", path, err)
	}
	r, ok := reader.GetReader(ext, l.readerOptions()...)
	if !ok {
		return nil, fmt.Errorf("%w: no reader registered for %s", ErrUnsupportedFile, ext)
	}
	docs, err := r.ReadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return docs, nil
}

// loadWithOCR converts path into a temporary text file and loads that file
// through the text reader. The temporary file is always removed.
func (l *Loader) loadWithOCR(ctx context.Context, path string) (docs []*document.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("OCR panicked: %v", r)
		}
	}()
	tmp, err := os.CreateTemp("", "docqa-ocr-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := l.opts.converter.Convert(ctx, path, tmpPath); err != nil {
		return nil, err
	}
	r, ok := reader.GetReader(".txt", reader.WithChunk(false))
	if !ok {
		return nil, errors.New("text reader is not registered")
	}
	loaded, err := r.ReadFromFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load OCR output: %w", err)
	}
	var b strings.Builder
	for _, d := range loaded {
		b.WriteString(d.Content)
	}
	doc := idocument.CreateFileDocument(b.String(), path, document.ExtractionOCR)
	return reader.NewConfig(l.readerOptions()...).Apply([]*document.Document{doc})
}
