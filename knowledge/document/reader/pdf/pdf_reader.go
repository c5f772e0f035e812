//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package pdf provides the PDF document reader. It reads the embedded text
// layer only; scanned files go through the OCR path in the loader.
package pdf

import (
	"fmt"
	"io"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
	idocument "trpc.group/trpc-go/trpc-docqa-go/knowledge/internal/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
)

var supportedExtensions = []string{".pdf"}

// init registers the PDF reader with the global registry.
func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// Reader reads the text layer of PDF documents and applies chunking.
type Reader struct {
	config *reader.Config
}

var _ reader.Reader = (*Reader)(nil)

// New creates a new PDF reader with the given options.
func New(opts ...reader.Option) reader.Reader {
	return &Reader{config: reader.NewConfig(opts...)}
}

// ReadFromReader reads PDF content from rd.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	doc, err := pdf.Load(name, content)
	if err != nil {
		return nil, err
	}
	return r.fromDocument(doc)
}

// ReadFromFile reads the PDF file at filePath.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	doc, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	return r.fromDocument(doc)
}

func (r *Reader) fromDocument(doc *pdf.Document) ([]*document.Document, error) {
	text := doc.Text()
	name := doc.Path()
	if err := doc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close PDF: %w", err)
	}
	out := idocument.CreateFileDocument(text, name, document.ExtractionText)
	return r.config.Apply([]*document.Document{out})
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "PDFReader"
}

// SupportedExtensions returns the file extensions this reader supports.
func (r *Reader) SupportedExtensions() []string {
	return supportedExtensions
}
