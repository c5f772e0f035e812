//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"strings"
	"unicode/utf8"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveChunking splits on the coarsest separator that occurs in the text,
// recursing into pieces that are still too large, then merges neighbouring
// pieces up to the chunk size while carrying an overlap between chunks.
type RecursiveChunking struct {
	chunkSize  int
	overlap    int
	separators []string
}

var _ Strategy = (*RecursiveChunking)(nil)

// Option configures RecursiveChunking.
type Option func(*RecursiveChunking)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(rc *RecursiveChunking) {
		rc.chunkSize = size
	}
}

// WithOverlap sets how many characters consecutive chunks share.
func WithOverlap(overlap int) Option {
	return func(rc *RecursiveChunking) {
		rc.overlap = overlap
	}
}

// WithSeparators replaces DefaultSeparators.
func WithSeparators(separators ...string) Option {
	return func(rc *RecursiveChunking) {
		if len(separators) > 0 {
			rc.separators = separators
		}
	}
}

// NewRecursiveChunking creates the splitter. A non-positive size selects
// DefaultChunkSize; an overlap that is negative or not smaller than the size
// is clamped.
func NewRecursiveChunking(opts ...Option) *RecursiveChunking {
	rc := &RecursiveChunking{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(rc)
	}
	if rc.chunkSize <= 0 {
		rc.chunkSize = DefaultChunkSize
	}
	if rc.overlap < 0 {
		rc.overlap = 0
	}
	if rc.overlap >= rc.chunkSize {
		rc.overlap = min(DefaultOverlap, rc.chunkSize-1)
	}
	return rc
}

// Chunk splits doc. Every chunk keeps the parent's metadata plus its index.
func (rc *RecursiveChunking) Chunk(doc *document.Document) ([]*document.Document, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, ErrEmptyDocument
	}
	texts := rc.SplitText(doc.Content)
	chunks := make([]*document.Document, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, newChunk(doc, text, i))
	}
	return chunks, nil
}

// SplitText splits text into chunks of at most the chunk size, except where
// a single unbreakable piece is longer.
func (rc *RecursiveChunking) SplitText(text string) []string {
	return rc.split(text, rc.separators)
}

func (rc *RecursiveChunking) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			rest = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitOn(text, separator) {
		if runeLen(piece) < rc.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, rc.merge(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, rc.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, rc.merge(good, separator)...)
	}
	return final
}

// merge joins pieces with separator into chunks no longer than the chunk
// size, starting each new chunk with up to overlap characters of the
// previous one.
func (rc *RecursiveChunking) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)
	var (
		chunks  []string
		current []string
		total   int
	)
	joinLen := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}
	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n+joinLen() > rc.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > rc.overlap || (total+n+joinLen() > rc.chunkSize && total > 0) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func splitOn(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(text, separator)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
