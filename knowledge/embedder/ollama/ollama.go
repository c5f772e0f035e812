//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package ollama embeds text with a model served by an Ollama runtime.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/ollama/ollama/api"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trpc.group/trpc-go/trpc-docqa-go/internal/ollamahost"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

var _ embedder.BatchEmbedder = (*Embedder)(nil)

const (
	// DefaultModel is the embedding model used when none is set.
	DefaultModel = "nomic-embed-text"
	// DefaultDimensions is the vector size of DefaultModel.
	DefaultDimensions = 768
)

// Embedder calls the /api/embed endpoint.
type Embedder struct {
	client     *api.Client
	host       string
	model      string
	dimensions int

	httpClient *http.Client
	params     map[string]any
	keepAlive  time.Duration
	truncate   *bool
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithHost sets the runtime address. OLLAMA_HOST is used when it is empty.
func WithHost(host string) Option {
	return func(e *Embedder) {
		e.host = host
	}
}

func withHTTPClient(client *http.Client) Option {
	return func(e *Embedder) {
		e.httpClient = client
	}
}

// WithTruncate controls whether inputs longer than the context are cut.
func WithTruncate(truncate bool) Option {
	return func(e *Embedder) {
		e.truncate = &truncate
	}
}

// WithOptions passes model parameters such as num_ctx.
func WithOptions(params map[string]any) Option {
	return func(e *Embedder) {
		e.params = params
	}
}

// WithKeepAlive keeps the model loaded for d after each request.
func WithKeepAlive(d time.Duration) Option {
	return func(e *Embedder) {
		e.keepAlive = d
	}
}

// WithDimensions sets the vector size. Zero keeps the model's native size.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// New creates an Embedder.
func New(opts ...Option) *Embedder {
	e := &Embedder{model: DefaultModel, dimensions: DefaultDimensions}
	for _, opt := range opts {
		opt(e)
	}
	base := ollamahost.Resolve(e.host)
	e.host = base.Scheme + "://" + base.Host
	e.client = ollamahost.NewClient(base.String(), e.httpClient)
	return e
}

// GetDimensions implements embedder.Embedder.
func (e *Embedder) GetDimensions() int {
	return e.dimensions
}

// GetEmbedding implements embedder.Embedder. An empty response yields an
// empty vector and no error.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}
	vectors, err := e.embed(ctx, text, 1)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		log.WarnfContext(ctx, "received empty embedding response from %s", e.model)
		return []float64{}, nil
	}
	return vectors[0], nil
}

// GetEmbeddings implements embedder.BatchEmbedder with a single request.
func (e *Embedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	if slices.Contains(texts, "") {
		return nil, errors.New("texts cannot contain empty strings")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.embed(ctx, texts, len(texts))
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}

// embed sends input, a string or a []string, and widens the result.
func (e *Embedder) embed(ctx context.Context, input any, n int) (vectors [][]float64, err error) {
	ctx, span := trace.Tracer.Start(ctx, "embeddings "+e.model)
	defer func() {
		span.SetAttributes(
			attribute.String("gen_ai.request.model", e.model),
			attribute.Int("docqa.embeddings.inputs", n),
		)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req := &api.EmbedRequest{
		Model:      e.model,
		Input:      input,
		Options:    e.params,
		Truncate:   e.truncate,
		Dimensions: e.dimensions,
	}
	if e.keepAlive > 0 {
		req.KeepAlive = &api.Duration{Duration: e.keepAlive}
	}
	rsp, err := e.client.Embed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	vectors = make([][]float64, len(rsp.Embeddings))
	for i, emb := range rsp.Embeddings {
		vectors[i] = make([]float64, len(emb))
		for j, v := range emb {
			vectors[i][j] = float64(v)
		}
	}
	return vectors, nil
}
