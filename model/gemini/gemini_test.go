//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-docqa-go/model"
)

type fakeModels struct {
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	rsp      *genai.GenerateContentResponse
	err      error
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contents = contents
	f.config = config
	return f.rsp, f.err
}

func TestGenerateContent(t *testing.T) {
	fake := &fakeModels{rsp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Bang"}, {Text: "kok"}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{TotalTokenCount: 9},
	}}
	m, err := New(context.Background(), "", WithModels(fake))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.Name())

	rsp, err := m.GenerateContent(context.Background(), &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage("context here"),
			model.NewUserMessage("capital of Thailand?"),
		},
		GenerationConfig: model.GenerationConfig{Temperature: model.Float64(0.5), MaxTokens: model.Int(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bangkok", rsp.Content)
	assert.Equal(t, 9, rsp.Usage.TotalTokens)

	require.Len(t, fake.contents, 1)
	assert.Equal(t, "capital of Thailand?", fake.contents[0].Parts[0].Text)
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "context here", fake.config.SystemInstruction.Parts[0].Text)
	assert.EqualValues(t, 10, fake.config.MaxOutputTokens)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.5, *fake.config.Temperature, 1e-6)
}

func TestGenerateContent_Errors(t *testing.T) {
	fake := &fakeModels{err: errors.New("quota exceeded")}
	m, err := New(context.Background(), "g", WithModels(fake))
	require.NoError(t, err)

	_, err = m.GenerateContent(context.Background(), &model.Request{Messages: []model.Message{model.NewUserMessage("q")}})
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = m.GenerateContent(context.Background(), &model.Request{})
	assert.Error(t, err)

	assert.Empty(t, responseText(nil))
}
