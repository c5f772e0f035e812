//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package csv provides a CSV document reader. Each record becomes a block of
// "column: value" lines so that a row stays readable after chunking.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
	idocument "trpc.group/trpc-go/trpc-docqa-go/knowledge/internal/document"
)

var supportedExtensions = []string{".csv"}

func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// Reader reads CSV files.
type Reader struct {
	config *reader.Config
}

var _ reader.Reader = (*Reader)(nil)

// New creates a new CSV reader.
func New(opts ...reader.Option) reader.Reader {
	return &Reader{config: reader.NewConfig(opts...)}
}

// ReadFromReader reads CSV content from rd. The first record is the header.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var b strings.Builder
	rows := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record %d: %w", rows+1, err)
		}
		if rows > 0 {
			b.WriteString("\n\n")
		}
		writeRecord(&b, header, record)
		rows++
	}
	if rows == 0 {
		b.WriteString(strings.Join(header, ", "))
	}
	doc := idocument.CreateFileDocument(b.String(), name, document.ExtractionText)
	return r.config.Apply([]*document.Document{doc})
}

func writeRecord(b *strings.Builder, header, record []string) {
	for i, value := range record {
		if i > 0 {
			b.WriteByte('\n')
		}
		column := fmt.Sprintf("column_%d", i+1)
		if i < len(header) && header[i] != "" {
			column = header[i]
		}
		b.WriteString(column)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(value))
	}
}

// ReadFromFile reads the CSV file at filePath.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	return reader.ReadFile(r, filePath)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "CSVReader"
}

// SupportedExtensions returns the file extensions this reader supports.
func (r *Reader) SupportedExtensions() []string {
	return supportedExtensions
}
