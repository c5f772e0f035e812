//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
)

const guide = `Intro paragraph.

# Install

Run the installer.

## Linux

apt-get install thing

` + "```" + `
# not a heading
` + "```" + `

## macOS

brew install thing

# Usage

Call it.
`

func TestSections(t *testing.T) {
	r := New().(*Reader)
	sections := r.Sections([]byte(guide))
	require.Len(t, sections, 5)

	tests := []struct {
		path     string
		contains string
	}{
		{"", "Intro paragraph."},
		{"Install", "Run the installer."},
		{"Install > Linux", "# not a heading"},
		{"Install > macOS", "brew install thing"},
		{"Usage", "Call it."},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.path, sections[i].HeaderPath)
		assert.Contains(t, sections[i].Content, tt.contains)
	}
	assert.True(t, strings.HasPrefix(sections[1].Content, "# Install"))
	assert.NotContains(t, sections[1].Content, "apt-get")
}

func TestSections_NoHeadings(t *testing.T) {
	r := New().(*Reader)
	sections := r.Sections([]byte("just text\n\nmore text"))
	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].HeaderPath)
	assert.Equal(t, "just text\n\nmore text", sections[0].Content)
}

func TestSections_Setext(t *testing.T) {
	r := New().(*Reader)
	sections := r.Sections([]byte("Title\n=====\n\nbody\n"))
	require.Len(t, sections, 1)
	assert.Equal(t, "Title", sections[0].HeaderPath)
	assert.Equal(t, "Title\n=====\n\nbody", sections[0].Content)
}

func TestMarkdownReader_ReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(guide), 0o644))

	docs, err := New().ReadFromFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 5)
	for _, d := range docs {
		assert.Equal(t, path, d.Metadata[document.MetaSource])
		assert.Equal(t, document.ExtractionMDown, d.Metadata[document.MetaExtraction])
	}
	assert.Equal(t, "Install > macOS", docs[3].Metadata[document.MetaHeaderPath])
	_, hasPath := docs[0].Metadata[document.MetaHeaderPath]
	assert.False(t, hasPath)
}

func TestMarkdownReader_Registered(t *testing.T) {
	for _, ext := range []string{".md", ".MARKDOWN"} {
		r, ok := reader.GetReader(ext)
		require.True(t, ok, ext)
		assert.Equal(t, "MarkdownReader", r.Name())
	}
}
