//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides the Gemini embedder implementation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

var _ embedder.Embedder = (*Embedder)(nil)

const (
	// DefaultModel is the default Gemini embedding model.
	DefaultModel = "text-embedding-004"
	// DefaultDimensions is the output size of DefaultModel.
	DefaultDimensions = 768
	// EnvAPIKey holds the Gemini API key when WithAPIKey is not used.
	EnvAPIKey = "GEMINI_API_KEY"
)

// Models is the subset of genai.Models used here.
type Models interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder implements embedder.Embedder with the Gemini API.
type Embedder struct {
	model      string
	dimensions int
	apiKey     string
	taskType   string
	models     Models
}

// Option configures the Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions sets the output dimensionality.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(e *Embedder) {
		e.apiKey = apiKey
	}
}

// WithTaskType sets the embedding task type, e.g. RETRIEVAL_DOCUMENT.
func WithTaskType(taskType string) Option {
	return func(e *Embedder) {
		e.taskType = taskType
	}
}

// WithModels injects the models service, mainly for tests.
func WithModels(models Models) Option {
	return func(e *Embedder) {
		e.models = models
	}
}

// New creates a Gemini embedder.
func New(ctx context.Context, opts ...Option) (*Embedder, error) {
	e := &Embedder{
		model:      DefaultModel,
		dimensions: DefaultDimensions,
		apiKey:     os.Getenv(EnvAPIKey),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.models == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  e.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		e.models = client.Models
	}
	return e, nil
}

// GetEmbedding implements embedder.Embedder.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}
	config := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		dims := int32(e.dimensions)
		config.OutputDimensionality = &dims
	}
	rsp, err := e.models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if rsp == nil || len(rsp.Embeddings) == 0 || rsp.Embeddings[0] == nil {
		log.Warn("received empty embedding response from Gemini API")
		return []float64{}, nil
	}
	values := rsp.Embeddings[0].Values
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out, nil
}

// GetDimensions implements embedder.Embedder.
func (e *Embedder) GetDimensions() int {
	return e.dimensions
}
