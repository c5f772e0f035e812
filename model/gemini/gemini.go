//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides the Gemini chat model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-docqa-go/model"
)

var _ model.Model = (*Model)(nil)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gemini-2.0-flash"
	// EnvAPIKey holds the API key when WithAPIKey is not used.
	EnvAPIKey = "GEMINI_API_KEY"
)

// Models is the subset of genai.Models used here.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Model implements model.Model with the Gemini API.
type Model struct {
	name   string
	apiKey string
	models Models
}

// Option configures the model.
type Option func(*Model)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(m *Model) {
		m.apiKey = key
	}
}

// WithModels injects the models service, mainly for tests.
func WithModels(models Models) Option {
	return func(m *Model) {
		m.models = models
	}
}

// New creates a chat model.
func New(ctx context.Context, name string, opts ...Option) (*Model, error) {
	if name == "" {
		name = DefaultModel
	}
	m := &Model{name: name, apiKey: os.Getenv(EnvAPIKey)}
	for _, opt := range opts {
		opt(m)
	}
	if m.models == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  m.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		m.models = client.Models
	}
	return m, nil
}

// Name implements model.Model.
func (m *Model) Name() string {
	return m.name
}

// GenerateContent implements model.Model. System messages become the
// system instruction.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (*model.Response, error) {
	if request == nil || len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}
	config := &genai.GenerateContentConfig{}
	var (
		system   []string
		contents []*genai.Content
	)
	for _, msg := range request.Messages {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)
		case model.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if request.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*request.Temperature))
	}
	if request.MaxTokens != nil {
		config.MaxOutputTokens = int32(*request.MaxTokens)
	}

	rsp, err := m.models.GenerateContent(ctx, m.name, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	out := &model.Response{Model: m.name, Content: responseText(rsp)}
	if rsp != nil && rsp.UsageMetadata != nil {
		out.Usage = &model.Usage{
			PromptTokens:     int(rsp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(rsp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(rsp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func responseText(rsp *genai.GenerateContentResponse) string {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
