//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package openai embeds text with the OpenAI embeddings endpoint or any API
// compatible with it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

var _ embedder.BatchEmbedder = (*Embedder)(nil)

const (
	// DefaultModel is the embedding model used when none is set.
	DefaultModel = "text-embedding-3-small"
	// DefaultDimensions is the vector size of DefaultModel.
	DefaultDimensions = 1536
	// DefaultMaxRetries is how often a failed request is repeated.
	DefaultMaxRetries = 2
	// DefaultBatchSize is the number of texts sent per request by GetEmbeddings.
	DefaultBatchSize = 64
)

// Only the text-embedding-3 family accepts a dimensions parameter.
const shortenablePrefix = "text-embedding-3"

var defaultRetryBackoff = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
}

// Embedder calls the embeddings endpoint.
type Embedder struct {
	client       openai.Client
	model        string
	dimensions   int
	batchSize    int
	maxRetries   int
	retryBackoff []time.Duration

	apiKey      string
	baseURL     string
	requestOpts []option.RequestOption
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions sets the vector size. It is sent to text-embedding-3 models
// only; other models always return their native size.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// WithAPIKey sets the API key. OPENAI_API_KEY is used when it is empty.
func WithAPIKey(apiKey string) Option {
	return func(e *Embedder) {
		e.apiKey = apiKey
	}
}

// WithBaseURL points the embedder at an OpenAI-compatible server.
func WithBaseURL(baseURL string) Option {
	return func(e *Embedder) {
		e.baseURL = baseURL
	}
}

// WithRequestOptions appends per-request SDK options.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(e *Embedder) {
		e.requestOpts = append(e.requestOpts, opts...)
	}
}

// WithBatchSize caps the texts per request. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithMaxRetries sets how often a failed request is repeated.
// Negative values are treated as 0.
func WithMaxRetries(maxRetries int) Option {
	return func(e *Embedder) {
		e.maxRetries = max(maxRetries, 0)
	}
}

// WithRetryBackoff sets the wait before each retry. The last duration is
// reused when retries outnumber the slice.
func WithRetryBackoff(backoff []time.Duration) Option {
	return func(e *Embedder) {
		e.retryBackoff = backoff
	}
}

// New creates an Embedder.
func New(opts ...Option) *Embedder {
	e := &Embedder{
		model:        DefaultModel,
		dimensions:   DefaultDimensions,
		batchSize:    DefaultBatchSize,
		maxRetries:   DefaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}

	// Retries are handled here so that they show up in logs and spans.
	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if e.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(e.apiKey))
	}
	if e.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(e.baseURL))
	}
	e.client = openai.NewClient(clientOpts...)
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
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		log.WarnfContext(ctx, "received empty embedding response from %s", e.model)
		return []float64{}, nil
	}
	return vectors[0], nil
}

// GetEmbeddings implements embedder.BatchEmbedder. Texts are sent in
// batches of at most the configured batch size; result i belongs to texts[i].
func (e *Embedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	if slices.Contains(texts, "") {
		return nil, errors.New("texts cannot contain empty strings")
	}
	out := make([][]float64, 0, len(texts))
	for batch := range slices.Chunk(texts, e.batchSize) {
		vectors, err := e.embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// embed sends one request, retrying failures, and returns the vectors in
// input order.
func (e *Embedder) embed(ctx context.Context, inputs []string) ([][]float64, error) {
	for attempt := 0; ; attempt++ {
		rsp, err := e.create(ctx, inputs)
		if err == nil {
			vectors := make([][]float64, len(rsp.Data))
			for i, d := range rsp.Data {
				idx := int(d.Index)
				if idx < 0 || idx >= len(vectors) {
					idx = i
				}
				vectors[idx] = d.Embedding
			}
			return vectors, nil
		}
		if attempt >= e.maxRetries {
			return nil, err
		}
		wait := e.backoff(attempt)
		log.InfofContext(ctx, "embedding request failed, retrying in %v (attempt %d/%d): %v",
			wait, attempt+1, e.maxRetries, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (e *Embedder) backoff(attempt int) time.Duration {
	n := len(e.retryBackoff)
	if n == 0 {
		return 0
	}
	return e.retryBackoff[min(attempt, n-1)]
}

func (e *Embedder) create(ctx context.Context, inputs []string) (rsp *openai.CreateEmbeddingResponse, err error) {
	ctx, span := trace.Tracer.Start(ctx, "embeddings "+e.model)
	defer func() {
		span.SetAttributes(
			attribute.String("gen_ai.request.model", e.model),
			attribute.Int("gen_ai.embeddings.dimension.count", e.dimensions),
			attribute.Int("docqa.embeddings.inputs", len(inputs)),
		)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	params := openai.EmbeddingNewParams{
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if len(inputs) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{OfString: openai.String(inputs[0])}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs}
	}
	if strings.HasPrefix(e.model, shortenablePrefix) && e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}
	return e.client.Embeddings.New(ctx, params, e.requestOpts...)
}
