//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package provider builds chat models and embedders from a provider name.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder"
	geminiembedder "trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder/gemini"
	ollamaembedder "trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder/ollama"
	openaiembedder "trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder/openai"
	"trpc.group/trpc-go/trpc-docqa-go/model"
	"trpc.group/trpc-go/trpc-docqa-go/model/gemini"
	"trpc.group/trpc-go/trpc-docqa-go/model/ollama"
	"trpc.group/trpc-go/trpc-docqa-go/model/openai"
)

// Provider names.
const (
	OpenAI = "openai"
	Ollama = "ollama"
	Gemini = "gemini"
)

func init() {
	Register(OpenAI, Provider{Model: openaiModel, Embedder: openaiEmbedder})
	Register(Ollama, Provider{Model: ollamaModel, Embedder: ollamaEmbedder})
	Register(Gemini, Provider{Model: geminiModel, Embedder: geminiEmbedder})
}

// Provider builds the chat model and the embedder of one backend.
type Provider struct {
	Model    func(ctx context.Context, opts *Options) (model.Model, error)
	Embedder func(ctx context.Context, opts *Options) (embedder.Embedder, error)
}

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

// Register registers a provider by name.
func Register(name string, provider Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = provider
}

// Get returns the provider by name.
func Get(name string) (Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	provider, ok := providers[name]
	return provider, ok
}

// Names returns the registered provider names, sorted.
func Names() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolve(providerName, modelName string, opt []Option) (Provider, *Options, error) {
	opts := &Options{ProviderName: providerName, ModelName: modelName}
	for _, o := range opt {
		o(opts)
	}
	provider, ok := Get(providerName)
	if !ok {
		return Provider{}, nil, fmt.Errorf("unknown provider: %s (supported: %v)", providerName, Names())
	}
	return provider, opts, nil
}

// Model constructs the chat model modelName of providerName.
func Model(ctx context.Context, providerName, modelName string, opt ...Option) (model.Model, error) {
	provider, opts, err := resolve(providerName, modelName, opt)
	if err != nil {
		return nil, err
	}
	return provider.Model(ctx, opts)
}

// Embedder constructs the embedding model modelName of providerName.
func Embedder(ctx context.Context, providerName, modelName string, opt ...Option) (embedder.Embedder, error) {
	provider, opts, err := resolve(providerName, modelName, opt)
	if err != nil {
		return nil, err
	}
	return provider.Embedder(ctx, opts)
}

func openaiModel(_ context.Context, opts *Options) (model.Model, error) {
	var res []openai.Option
	if opts.APIKey != "" {
		res = append(res, openai.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		res = append(res, openai.WithBaseURL(opts.BaseURL))
	}
	return openai.New(opts.ModelName, res...), nil
}

func openaiEmbedder(_ context.Context, opts *Options) (embedder.Embedder, error) {
	var res []openaiembedder.Option
	if opts.ModelName != "" {
		res = append(res, openaiembedder.WithModel(opts.ModelName))
	}
	if opts.APIKey != "" {
		res = append(res, openaiembedder.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		res = append(res, openaiembedder.WithBaseURL(opts.BaseURL))
	}
	if opts.Dimensions > 0 {
		res = append(res, openaiembedder.WithDimensions(opts.Dimensions))
	}
	return openaiembedder.New(res...), nil
}

func ollamaModel(_ context.Context, opts *Options) (model.Model, error) {
	var res []ollama.Option
	if opts.BaseURL != "" {
		res = append(res, ollama.WithHost(opts.BaseURL))
	}
	return ollama.New(opts.ModelName, res...), nil
}

func ollamaEmbedder(_ context.Context, opts *Options) (embedder.Embedder, error) {
	var res []ollamaembedder.Option
	if opts.ModelName != "" {
		res = append(res, ollamaembedder.WithModel(opts.ModelName))
	}
	if opts.BaseURL != "" {
		res = append(res, ollamaembedder.WithHost(opts.BaseURL))
	}
	if opts.Dimensions > 0 {
		res = append(res, ollamaembedder.WithDimensions(opts.Dimensions))
	}
	return ollamaembedder.New(res...), nil
}

func geminiModel(ctx context.Context, opts *Options) (model.Model, error) {
	var res []gemini.Option
	if opts.APIKey != "" {
		res = append(res, gemini.WithAPIKey(opts.APIKey))
	}
	return gemini.New(ctx, opts.ModelName, res...)
}

func geminiEmbedder(ctx context.Context, opts *Options) (embedder.Embedder, error) {
	var res []geminiembedder.Option
	if opts.ModelName != "" {
		res = append(res, geminiembedder.WithModel(opts.ModelName))
	}
	if opts.APIKey != "" {
		res = append(res, geminiembedder.WithAPIKey(opts.APIKey))
	}
	if opts.Dimensions > 0 {
		res = append(res, geminiembedder.WithDimensions(opts.Dimensions))
	}
	return geminiembedder.New(ctx, res...)
}
