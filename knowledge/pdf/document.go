//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package pdf opens PDF files for page level inspection and rendering.
//
// A Document combines three views of the same bytes: the text layer
// (ledongthuc/pdf), the image XObjects of each page (pdfcpu) and a
// rasterizer that turns a page into pixels. Pages are addressed with
// zero-based indices.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	pdfcpuAPI "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// ErrPageOutOfRange is returned for a page index outside [0, NumPages).
var ErrPageOutOfRange = errors.New("pdf: page index out of range")

// Document is an opened PDF. It is not safe for concurrent use.
// Calling any page method after Close panics.
type Document struct {
	path    string
	content []byte

	text     *pdf.Reader
	images   *model.Context
	numPages int

	rasterizerName string
	rasterizer     Rasterizer

	closed bool
}

// Open reads the PDF at path and prepares its text and image views.
// The rasterizer is created lazily on the first RenderPage call.
func Open(path string, opts ...Option) (*Document, error) {
	o := &options{rasterizer: DefaultRasterizer}
	for _, opt := range opts {
		opt(o)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}
	return load(path, content, o)
}

// Load prepares a document from content already in memory. name is used for
// logging and by rasterizers that need a file on disk.
func Load(name string, content []byte, opts ...Option) (*Document, error) {
	o := &options{rasterizer: DefaultRasterizer}
	for _, opt := range opts {
		opt(o)
	}
	return load(name, content, o)
}

func load(path string, content []byte, o *options) (*Document, error) {
	textReader, err := newTextReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	doc := &Document{
		path:           path,
		content:        content,
		text:           textReader,
		numPages:       textReader.NumPage(),
		rasterizerName: o.rasterizer,
	}

	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.EXTRACTIMAGES
	conf.ValidationMode = model.ValidationRelaxed
	imagesCtx, err := pdfcpuAPI.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		// Image counts degrade to zero; the text layer is still usable.
		log.Warnf("pdf: image inspection unavailable for %s: %v", path, err)
	} else {
		doc.images = imagesCtx
	}
	return doc, nil
}

// newTextReader recovers from panics raised by the text layer parser on
// malformed files.
func newTextReader(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int {
	d.mustBeOpen()
	return d.numPages
}

// PageText returns the embedded text of page i.
func (d *Document) PageText(i int) (text string, err error) {
	d.mustBeOpen()
	if err := d.checkIndex(i); err != nil {
		return "", err
	}
	page := d.text.Page(i + 1)
	if page.V.IsNull() {
		return "", nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to extract text from page %d: %v", i+1, rec)
		}
	}()
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", i+1, err)
	}
	return text, nil
}

// PageTextLength returns the number of characters in the text layer of page i.
func (d *Document) PageTextLength(i int) (int, error) {
	text, err := d.PageText(i)
	if err != nil {
		return 0, err
	}
	return utf8.RuneCountInString(text), nil
}

// PageImageCount returns the number of images embedded in page i.
func (d *Document) PageImageCount(i int) (int, error) {
	d.mustBeOpen()
	if err := d.checkIndex(i); err != nil {
		return 0, err
	}
	if d.images == nil {
		return 0, nil
	}
	images, err := pdfcpu.ExtractPageImages(d.images, i+1, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list images on page %d: %w", i+1, err)
	}
	return len(images), nil
}

// Text returns the text layer of every page, one page per line block.
// Pages whose text cannot be extracted are skipped.
func (d *Document) Text() string {
	d.mustBeOpen()
	var buf bytes.Buffer
	for i := 0; i < d.numPages; i++ {
		text, err := d.PageText(i)
		if err != nil || text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	return buf.String()
}

// RenderPage rasterizes page i at dpi dots per inch.
func (d *Document) RenderPage(ctx context.Context, i, dpi int) (image.Image, error) {
	d.mustBeOpen()
	if err := d.checkIndex(i); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("pdf: invalid dpi %d", dpi)
	}
	if d.rasterizer == nil {
		r, err := newRasterizer(d.rasterizerName, d.path, d.content)
		if err != nil {
			return nil, err
		}
		d.rasterizer = r
	}
	img, err := d.rasterizer.Render(ctx, i, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
	}
	return img, nil
}

// Close releases the rasterizer. It is safe to call more than once.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.text = nil
	d.images = nil
	d.content = nil
	if d.rasterizer != nil {
		return d.rasterizer.Close()
	}
	return nil
}

func (d *Document) checkIndex(i int) error {
	if i < 0 || i >= d.numPages {
		return fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, i, d.numPages)
	}
	return nil
}

func (d *Document) mustBeOpen() {
	if d.closed {
		panic("pdf: document used after Close")
	}
}
