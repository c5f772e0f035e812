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
	"sort"
	"strings"
	"sync"
)

// Builder constructs an engine from a configuration.
type Builder func(ctx context.Context, cfg Config) (Engine, error)

var (
	mu       sync.RWMutex
	builders = make(map[string]Builder)
)

// Register makes an engine available under name. Names are case-insensitive.
// Registering the same name twice replaces the earlier builder.
func Register(name string, builder Builder) {
	mu.Lock()
	defer mu.Unlock()
	builders[normalizeName(name)] = builder
}

// Engines returns the registered engine names in sorted order.
func Engines() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEngine builds the engine selected by cfg.Engine.
// Unknown names fail with ErrUnsupportedEngine.
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	cfg = cfg.withDefaults()
	name := normalizeName(cfg.Engine)

	mu.RLock()
	builder, ok := builders[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedEngine, cfg.Engine, strings.Join(Engines(), ", "))
	}
	return builder(ctx, cfg)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
