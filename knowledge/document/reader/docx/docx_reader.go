//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package docx provides the Word (.docx) document reader.
package docx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gonfva/docxlib"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
	idocument "trpc.group/trpc-go/trpc-docqa-go/knowledge/internal/document"
)

var supportedExtensions = []string{".docx"}

func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// Reader reads .docx files. Paragraph text is joined with blank lines.
type Reader struct {
	config *reader.Config
}

var _ reader.Reader = (*Reader)(nil)

// New creates a new docx reader.
func New(opts ...reader.Option) reader.Reader {
	return &Reader{config: reader.NewConfig(opts...)}
}

// ReadFromReader reads a .docx archive from rd.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx: %w", err)
	}
	paragraphs, err := Paragraphs(data)
	if err != nil {
		return nil, err
	}
	doc := idocument.CreateFileDocument(strings.Join(paragraphs, "\n\n"), name, document.ExtractionDocx)
	doc.Metadata[document.MetaParagraphs] = len(paragraphs)
	return r.config.Apply([]*document.Document{doc})
}

// Paragraphs returns the non-blank paragraph texts of a .docx archive.
func Paragraphs(data []byte) ([]string, error) {
	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}
	var out []string
	for _, p := range doc.Paragraphs() {
		var b strings.Builder
		for _, child := range p.Children() {
			switch {
			case child.Run != nil:
				writeRun(&b, child.Run)
			case child.Link != nil:
				writeRun(&b, &child.Link.Run)
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

func writeRun(b *strings.Builder, run *docxlib.Run) {
	if run.Text != nil {
		b.WriteString(run.Text.Text)
	}
}

// ReadFromFile reads the .docx file at filePath.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	return reader.ReadFile(r, filePath)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "DocxReader"
}

// SupportedExtensions returns the file extensions this reader supports.
func (r *Reader) SupportedExtensions() []string {
	return supportedExtensions
}
