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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/metric"
	itrace "trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

// Document is a PDF being converted.
type Document interface {
	raster.PageRenderer
	NumPages() int
	Close() error
}

// DocumentOpener opens the PDF at path.
type DocumentOpener func(path string, cfg Config) (Document, error)

// EngineFactory builds the engine for one conversion.
type EngineFactory func(ctx context.Context, cfg Config) (Engine, error)

// Converter turns a PDF into page marked plain text.
type Converter struct {
	config       Config
	openDocument DocumentOpener
	newEngine    EngineFactory
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithDocumentOpener replaces the PDF opener.
func WithDocumentOpener(open DocumentOpener) ConverterOption {
	return func(c *Converter) {
		c.openDocument = open
	}
}

// WithEngineFactory replaces the registry lookup used to build engines.
func WithEngineFactory(factory EngineFactory) ConverterOption {
	return func(c *Converter) {
		c.newEngine = factory
	}
}

// NewConverter creates a converter for cfg. Empty engine, language and DPI
// take their defaults; UseGPU is used as given, so build cfg with NewConfig
// to get GPU acceleration by default.
func NewConverter(cfg Config, opts ...ConverterOption) *Converter {
	c := &Converter{
		config:       cfg.withDefaults(),
		openDocument: openPDF,
		newEngine:    NewEngine,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Converter) Config() Config {
	return c.config
}

// ConvertPDFToText converts the PDF at pdfPath with an engine built from opts.
// See Converter.Convert.
func ConvertPDFToText(ctx context.Context, pdfPath, outputPath string, opts ...Option) (string, error) {
	return NewConverter(NewConfig(opts...)).Convert(ctx, pdfPath, outputPath)
}

// Convert renders every page of the PDF at pdfPath, recognizes its text and
// returns the pages joined as "--- Page N ---\n<text>\n\n" blocks.
// When outputPath is not empty the text is also written there, creating
// parent directories and replacing any existing file.
//
// A missing input fails with ErrPDFNotFound. Engine configuration and page
// rendering errors abort the conversion; recognition failures only leave
// the affected page empty.
func (c *Converter) Convert(ctx context.Context, pdfPath, outputPath string) (text string, err error) {
	ctx, span := itrace.Tracer.Start(ctx, "ocr.convert", trace.WithAttributes(
		attribute.String("ocr.engine", c.config.Engine),
		attribute.String("ocr.lang", c.config.Lang),
		attribute.Int("ocr.dpi", c.config.DPI),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if _, err := os.Stat(pdfPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: %w", ErrPDFNotFound, pdfPath, err)
		}
		return "", fmt.Errorf("failed to stat PDF file: %w", err)
	}

	engine, err := c.newEngine(ctx, c.config)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			log.WarnfContext(ctx, "failed to close OCR engine %s: %v", engine.Name(), cerr)
		}
	}()

	doc, err := c.openDocument(pdfPath, c.config)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.WarnfContext(ctx, "failed to close PDF %s: %v", pdfPath, cerr)
		}
	}()
	text, err = c.recognizePages(ctx, doc, engine)
	if err != nil {
		return "", err
	}

	if outputPath != "" {
		if err := writeOutput(outputPath, text); err != nil {
			return "", err
		}
		log.InfofContext(ctx, "Saved OCR text to %s", outputPath)
	}
	return text, nil
}

func (c *Converter) recognizePages(ctx context.Context, doc Document, engine Engine) (string, error) {
	total := doc.NumPages()
	log.InfofContext(ctx, "Running %s OCR on %d pages", engine.Name(), total)

	var sb strings.Builder
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		log.InfofContext(ctx, "Processing page %d/%d", i+1, total)

		start := time.Now()
		img, err := raster.Render(ctx, doc, i, c.config.DPI)
		if err != nil {
			return "", fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		pageText := extractPage(ctx, engine, img, i+1)
		metric.RecordOCRPage(ctx, engine.Name(), pageText != "", time.Since(start))

		sb.WriteString(PageMarker(i + 1))
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// extractPage runs the engine on one page. A panicking engine leaves the
// page empty.
func extractPage(ctx context.Context, engine Engine, img *raster.Image, page int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorfContext(ctx, "OCR engine %s panicked on page %d: %v", engine.Name(), page, r)
			text = ""
		}
	}()
	return engine.ExtractText(ctx, engine.Preprocess(img))
}

// PageMarker returns the header line that precedes the text of page n (1-based).
func PageMarker(n int) string {
	return fmt.Sprintf("--- Page %d ---\n", n)
}

func writeOutput(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write OCR output: %w", err)
	}
	return nil
}

func openPDF(path string, cfg Config) (Document, error) {
	return pdf.Open(path, pdf.WithRasterizer(cfg.Rasterizer))
}
