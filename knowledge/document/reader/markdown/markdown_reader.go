//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package markdown provides the markdown document reader. Files are split at
// headings before chunking, and every section records its heading path.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
	idocument "trpc.group/trpc-go/trpc-docqa-go/knowledge/internal/document"
)

var supportedExtensions = []string{".md", ".markdown"}

func init() {
	reader.RegisterReader(supportedExtensions, New)
}

// headerPathSeparator joins nested heading titles in the header_path metadata.
const headerPathSeparator = " > "

// Reader reads markdown documents.
type Reader struct {
	config *reader.Config
	md     goldmark.Markdown
}

var _ reader.Reader = (*Reader)(nil)

// New creates a new markdown reader.
func New(opts ...reader.Option) reader.Reader {
	return &Reader{
		config: reader.NewConfig(opts...),
		md:     goldmark.New(),
	}
}

// Section is a heading-delimited slice of a markdown source.
type Section struct {
	HeaderPath string
	Content    string
}

type heading struct {
	level int
	title string
	start int
}

// ReadFromReader reads markdown content from rd.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	source, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}
	var docs []*document.Document
	for _, s := range r.Sections(source) {
		doc := idocument.CreateFileDocument(s.Content, name, document.ExtractionMDown)
		if s.HeaderPath != "" {
			doc.Metadata[document.MetaHeaderPath] = s.HeaderPath
		}
		docs = append(docs, doc)
	}
	return r.config.Apply(docs)
}

// Sections splits source at its headings. Text before the first heading forms
// a section with an empty header path. Blank sections are dropped.
func (r *Reader) Sections(source []byte) []Section {
	root := r.md.Parser().Parse(text.NewReader(source))

	var headings []heading
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		h, ok := node.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		headings = append(headings, heading{
			level: h.Level,
			title: headingTitle(h, source),
			start: lineStart(source, h.Lines().At(0).Start),
		})
	}

	var sections []Section
	add := func(path string, content []byte) {
		if c := strings.TrimSpace(string(content)); c != "" {
			sections = append(sections, Section{HeaderPath: path, Content: c})
		}
	}
	if len(headings) == 0 {
		add("", source)
		return sections
	}
	add("", source[:headings[0].start])

	var stack []heading
	for i, h := range headings {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, h)
		end := len(source)
		if i+1 < len(headings) {
			end = headings[i+1].start
		}
		add(headerPath(stack), source[h.start:end])
	}
	return sections
}

func headingTitle(h *ast.Heading, source []byte) string {
	var b bytes.Buffer
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimSpace(b.String())
}

// lineStart returns the offset of the beginning of the line containing pos.
func lineStart(source []byte, pos int) int {
	if i := bytes.LastIndexByte(source[:pos], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

func headerPath(stack []heading) string {
	titles := make([]string, len(stack))
	for i, h := range stack {
		titles[i] = h.title
	}
	return strings.Join(titles, headerPathSeparator)
}

// ReadFromFile reads the markdown file at filePath.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	return reader.ReadFile(r, filePath)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "MarkdownReader"
}

// SupportedExtensions returns the file extensions this reader supports.
func (r *Reader) SupportedExtensions() []string {
	return supportedExtensions
}
