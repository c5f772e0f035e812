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
	"fmt"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Heuristic thresholds.
const (
	// SamplePages is the number of leading pages inspected.
	SamplePages = 5
	// MinCharsPerPageWithImages applies when a sampled page embeds an image.
	MinCharsPerPageWithImages = 100
	// MinCharsPerPage applies to every document.
	MinCharsPerPage = 50
)

// PageInspector exposes the per page facts the heuristic needs.
// *pdf.Document implements it.
type PageInspector interface {
	NumPages() int
	PageTextLength(page int) (int, error)
	PageImageCount(page int) (int, error)
}

// Inspection is the outcome of sampling a document.
type Inspection struct {
	// Pages is the number of pages sampled.
	Pages int
	// TextChars is the number of embedded text characters in the sample.
	TextChars int
	// HasImages reports whether any sampled page embeds an image.
	HasImages bool
	// NeedsOCR is the decision.
	NeedsOCR bool
	// Reason explains the decision.
	Reason string
}

// Inspect samples the first SamplePages pages of doc and applies the rules:
// images with fewer than 100 characters per page, or fewer than 50
// characters per page regardless of images, mean the document needs OCR.
func Inspect(doc PageInspector) (Inspection, error) {
	n := min(SamplePages, doc.NumPages())
	in := Inspection{Pages: n}
	for i := 0; i < n; i++ {
		chars, err := doc.PageTextLength(i)
		if err != nil {
			return in, fmt.Errorf("failed to read text of page %d: %w", i+1, err)
		}
		in.TextChars += chars

		images, err := doc.PageImageCount(i)
		if err != nil {
			return in, fmt.Errorf("failed to list images of page %d: %w", i+1, err)
		}
		if images > 0 {
			in.HasImages = true
		}
	}

	switch {
	case in.HasImages && in.TextChars < MinCharsPerPageWithImages*n:
		in.NeedsOCR = true
		in.Reason = fmt.Sprintf("images with %d text characters over %d pages", in.TextChars, n)
	case in.TextChars < MinCharsPerPage*n:
		in.NeedsOCR = true
		in.Reason = fmt.Sprintf("%d text characters over %d pages", in.TextChars, n)
	default:
		in.Reason = fmt.Sprintf("text layer present (%d characters over %d pages)", in.TextChars, n)
	}
	return in, nil
}

// NeedsOCRDocument reports whether doc needs OCR. Inspection failures are
// logged and answered with false.
func NeedsOCRDocument(doc PageInspector) (needs bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("Error checking if PDF needs OCR: %v", r)
			needs = false
		}
	}()
	in, err := Inspect(doc)
	if err != nil {
		log.Warnf("Error checking if PDF needs OCR: %v", err)
		return false
	}
	log.Debugf("OCR check: %s, needs OCR: %t", in.Reason, in.NeedsOCR)
	return in.NeedsOCR
}

// NeedsOCR opens the PDF at path and reports whether it needs OCR.
// It never fails: a file that cannot be opened or inspected is treated as
// not needing OCR, and a warning is logged.
func NeedsOCR(ctx context.Context, path string) bool {
	doc, err := pdf.Open(path)
	if err != nil {
		log.WarnfContext(ctx, "Error checking if PDF needs OCR: %v", err)
		return false
	}
	defer doc.Close()
	return NeedsOCRDocument(doc)
}
