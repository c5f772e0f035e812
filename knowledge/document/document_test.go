//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentIsEmpty(t *testing.T) {
	var nilDoc *Document
	assert.True(t, nilDoc.IsEmpty())
	assert.True(t, (&Document{}).IsEmpty())
	assert.False(t, (&Document{Content: "x"}).IsEmpty())
}

func TestDocumentCloneIsolatesMetadata(t *testing.T) {
	orig := &Document{ID: "a", Content: "body", Metadata: map[string]any{MetaSource: "a.pdf"}}
	c := orig.Clone()
	c.Metadata[MetaSource] = "b.pdf"
	assert.Equal(t, "a.pdf", orig.Metadata[MetaSource])
	assert.Equal(t, "body", c.Content)

	bare := (&Document{ID: "x"}).Clone()
	assert.NotNil(t, bare.Metadata)
}

func TestDocumentSource(t *testing.T) {
	assert.Equal(t, "", (*Document)(nil).Source())
	assert.Equal(t, "name", (&Document{Name: "name"}).Source())
	assert.Equal(t, "/tmp/a.txt", (&Document{Name: "a", Metadata: map[string]any{MetaSource: "/tmp/a.txt"}}).Source())
}
