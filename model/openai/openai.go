//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides the OpenAI-compatible chat model.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trpc.group/trpc-go/trpc-docqa-go/model"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

var _ model.Model = (*Model)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Model implements model.Model with the chat completions API.
type Model struct {
	name           string
	client         openai.Client
	apiKey         string
	baseURL        string
	requestOptions []option.RequestOption
}

// Option configures the model.
type Option func(*Model)

// WithAPIKey sets the API key. OPENAI_API_KEY is used otherwise.
func WithAPIKey(key string) Option {
	return func(m *Model) {
		m.apiKey = key
	}
}

// WithBaseURL sets the API endpoint, for OpenAI-compatible servers.
func WithBaseURL(url string) Option {
	return func(m *Model) {
		m.baseURL = url
	}
}

// WithRequestOptions appends raw client request options.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(m *Model) {
		m.requestOptions = append(m.requestOptions, opts...)
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
	var clientOpts []option.RequestOption
	if m.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(m.apiKey))
	}
	if m.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(m.baseURL))
	}
	clientOpts = append(clientOpts, m.requestOptions...)
	m.client = openai.NewClient(clientOpts...)
	return m
}

// Name implements model.Model.
func (m *Model) Name() string {
	return m.name
}

// GenerateContent implements model.Model.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (rsp *model.Response, err error) {
	if request == nil || len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}
	ctx, span := trace.Tracer.Start(ctx, "chat "+m.name)
	defer func() {
		span.SetAttributes(attribute.String("gen_ai.request.model", m.name))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	params := openai.ChatCompletionNewParams{
		Model:    m.name,
		Messages: convertMessages(request.Messages),
	}
	if request.Temperature != nil {
		params.Temperature = openai.Float(*request.Temperature)
	}
	if request.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*request.MaxTokens))
	}
	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	return &model.Response{
		Model:   completion.Model,
		Content: completion.Choices[0].Message.Content,
		Usage: &model.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
