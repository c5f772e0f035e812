//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package ollama provides the Ollama chat model.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ollama/ollama/api"

	"trpc.group/trpc-go/trpc-docqa-go/internal/ollamahost"
	"trpc.group/trpc-go/trpc-docqa-go/model"
)

var _ model.Model = (*Model)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "llama3.2"

// Model implements model.Model with /api/chat.
type Model struct {
	name       string
	host       string
	httpClient *http.Client
	options    map[string]any
	client     *api.Client
}

// Option configures the model.
type Option func(*Model)

// WithHost sets the Ollama host. OLLAMA_HOST is used otherwise.
func WithHost(host string) Option {
	return func(m *Model) {
		m.host = host
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Model) {
		m.httpClient = c
	}
}

// WithOptions sets model parameters such as num_ctx.
func WithOptions(options map[string]any) Option {
	return func(m *Model) {
		m.options = options
	}
}

// New creates a chat model.
func New(name string, opts ...Option) *Model {
	if name == "" {
		name = DefaultModel
	}
	m := &Model{name: name}
	for _, opt := range opts {
		opt(m)
	}
	m.client = ollamahost.NewClient(m.host, m.httpClient)
	return m
}

// Name implements model.Model.
func (m *Model) Name() string {
	return m.name
}

// GenerateContent implements model.Model.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (*model.Response, error) {
	if request == nil || len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}
	options := make(map[string]any, len(m.options)+2)
	for k, v := range m.options {
		options[k] = v
	}
	if request.Temperature != nil {
		options["temperature"] = *request.Temperature
	}
	if request.MaxTokens != nil {
		options["num_predict"] = *request.MaxTokens
	}
	messages := make([]api.Message, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, api.Message{Role: msg.Role.String(), Content: msg.Content})
	}
	stream := false
	req := &api.ChatRequest{
		Model:    m.name,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var (
		content strings.Builder
		last    api.ChatResponse
	)
	err := m.client.Chat(ctx, req, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		last = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to chat with ollama: %w", err)
	}
	return &model.Response{
		Model:   last.Model,
		Content: content.String(),
		Usage: &model.Usage{
			PromptTokens:     last.PromptEvalCount,
			CompletionTokens: last.EvalCount,
			TotalTokens:      last.PromptEvalCount + last.EvalCount,
		},
	}, nil
}
