//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package provider

// Option configures how a model instance should be constructed.
type Option func(*Options)

// Options contains resolved settings used when constructing provider-backed models.
type Options struct {
	ProviderName string // ProviderName is the provider identifier passed to Model.
	ModelName    string // ModelName is the concrete model identifier; empty selects the provider default.
	APIKey       string // APIKey holds the credential used for downstream SDK initialization.
	BaseURL      string // BaseURL overrides the default endpoint (the host for Ollama).
	Dimensions   int    // Dimensions sets the embedding size; zero keeps the provider default.
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithBaseURL sets the endpoint.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithDimensions sets the embedding size.
func WithDimensions(dimensions int) Option {
	return func(o *Options) {
		o.Dimensions = dimensions
	}
}
