//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package rag ingests documents into a knowledge base and answers
// questions over it.
package rag

import (
	"context"
	"errors"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-docqa-go/model"
)

// DefaultNumChunks is the number of chunks retrieved per question.
const DefaultNumChunks = 4

// ErrNoModel is returned by Query when an answer is requested without a chat model.
var ErrNoModel = errors.New("rag: chat model is required to generate answers")

// Loader turns one file into chunks.
type Loader interface {
	Load(ctx context.Context, path string) ([]*document.Document, error)
}

// Knowledge stores chunks and searches them.
type Knowledge interface {
	ReplaceSource(ctx context.Context, source string, docs []*document.Document) (int, error)
	Search(ctx context.Context, query string, limit int) ([]*vectorstore.ScoredDocument, error)
}

// Service runs ingestion and question answering.
type Service struct {
	loader    Loader
	knowledge Knowledge
	model     model.Model
	workers   int
	progress  func(done, total int, result FileResult)
}

// Option configures a Service.
type Option func(*Service)

// WithLoader sets the document loader.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithKnowledge sets the knowledge base.
func WithKnowledge(k Knowledge) Option {
	return func(s *Service) {
		s.knowledge = k
	}
}

// WithModel sets the chat model used to answer questions.
func WithModel(m model.Model) Option {
	return func(s *Service) {
		s.model = m
	}
}

// WithWorkers sets how many files are ingested at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress registers a callback invoked after each file is ingested.
// Calls are serialized.
func WithProgress(fn func(done, total int, result FileResult)) Option {
	return func(s *Service) {
		s.progress = fn
	}
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{workers: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
