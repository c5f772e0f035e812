//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package document provides helpers shared by the document readers.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
)

// CreateDocument creates a new document with the given content and name.
func CreateDocument(content string, name string) *document.Document {
	now := time.Now().UTC()
	return &document.Document{
		ID:        GenerateDocumentID(name, content),
		Name:      name,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateFileDocument creates a document for a file on disk and records the
// source path, base name and extension in its metadata.
func CreateFileDocument(content, path, extraction string) *document.Document {
	base := filepath.Base(path)
	doc := CreateDocument(content, strings.TrimSuffix(base, filepath.Ext(base)))
	doc.Metadata[document.MetaSource] = path
	doc.Metadata[document.MetaFileName] = base
	doc.Metadata[document.MetaFileType] = strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
	doc.Metadata[document.MetaExtraction] = extraction
	return doc
}

// GenerateDocumentID builds "<name>_<content hash>_<uuid>".
func GenerateDocumentID(name string, content string) string {
	hash := sha256.Sum256([]byte(content))
	contentHash := hex.EncodeToString(hash[:8])
	return strings.ReplaceAll(name, " ", "_") + "_" + contentHash + "_" + uuid.NewString()
}
