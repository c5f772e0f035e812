//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/model"
)

const systemPrompt = `You are a helpful assistant answering questions about the user's documents.
Answer using only the context provided. If the context does not contain the answer,
say that you don't know instead of making one up.`

// Answer is the result of a question.
type Answer struct {
	// Chunks are the retrieved chunks, best match first.
	Chunks []*vectorstore.ScoredDocument
	// Text is the generated answer. It is empty for raw queries.
	Text  string
	Usage *model.Usage
}

// Query retrieves the k chunks closest to question. Unless raw is set, a
// chat model then answers the question from those chunks.
func (s *Service) Query(ctx context.Context, question string, k int, raw bool) (*Answer, error) {
	if s.knowledge == nil {
		return nil, errors.New("rag: knowledge is required for queries")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("rag: question is empty")
	}
	if k <= 0 {
		k = DefaultNumChunks
	}
	if !raw && s.model == nil {
		return nil, ErrNoModel
	}

	log.Infof("searching for relevant documents")
	chunks, err := s.knowledge.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	answer := &Answer{Chunks: chunks}
	if raw {
		return answer, nil
	}

	log.Infof("generating response with %s", s.model.Name())
	rsp, err := s.model.GenerateContent(ctx, &model.Request{Messages: BuildMessages(chunks, question)})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	answer.Text = strings.TrimSpace(rsp.Content)
	answer.Usage = rsp.Usage
	return answer, nil
}

// BuildMessages renders the retrieved chunks and the question as a chat.
func BuildMessages(chunks []*vectorstore.ScoredDocument, question string) []model.Message {
	var b strings.Builder
	b.WriteString("Context:\n")
	if len(chunks) == 0 {
		b.WriteString("(no relevant documents found)\n")
	}
	for i, c := range chunks {
		if c == nil || c.Document == nil {
			continue
		}
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, c.Document.Source())
		b.WriteString(strings.TrimSpace(c.Document.Content))
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return []model.Message{
		model.NewSystemMessage(systemPrompt),
		model.NewUserMessage(b.String()),
	}
}
