//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package reader

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Builder constructs a Reader configured by opts.
type Builder func(opts ...Option) Reader

// registry maps lower-cased file extensions (".pdf") to builders.
type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

var readers = &registry{builders: map[string]Builder{}}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (r *registry) add(b Builder, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range exts {
		r.builders[normalizeExt(ext)] = b
	}
}

func (r *registry) remove(exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range exts {
		delete(r.builders, normalizeExt(ext))
	}
}

func (r *registry) lookup(ext string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[normalizeExt(ext)]
	return b, ok
}

func (r *registry) extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.builders))
}

// RegisterReader installs builder for each extension. Readers call it from
// init; a later registration for the same extension wins.
func RegisterReader(extensions []string, builder Builder) {
	readers.add(builder, extensions...)
}

// GetReader builds the reader registered for extension. The leading dot is
// optional and case is ignored.
func GetReader(extension string, opts ...Option) (Reader, bool) {
	b, ok := readers.lookup(extension)
	if !ok {
		return nil, false
	}
	return b(opts...), true
}

// ForPath is GetReader for the extension of path.
func ForPath(path string, opts ...Option) (Reader, bool) {
	return GetReader(filepath.Ext(path), opts...)
}

// GetRegisteredExtensions lists the registered extensions, sorted.
func GetRegisteredExtensions() []string {
	return readers.extensions()
}
