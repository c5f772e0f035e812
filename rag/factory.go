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

	"trpc.group/trpc-go/trpc-docqa-go/config"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore/pgvector"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore/sqlite"
	"trpc.group/trpc-go/trpc-docqa-go/model"
	"trpc.group/trpc-go/trpc-docqa-go/model/provider"
)

// ErrNoDatabase is returned when querying before anything was ingested.
var ErrNoDatabase = errors.New("vector store not found; ingest documents first using the 'ingest' command")

// OpenStore opens the vector store selected by cfg. With create unset a
// missing sqlite database yields ErrNoDatabase.
func OpenStore(ctx context.Context, cfg *config.Config, dimensions int, create bool) (vectorstore.VectorStore, error) {
	switch cfg.VectorStore {
	case config.VectorStorePGVector:
		store, err := pgvector.New(ctx, cfg.PostgresDSN, pgvector.WithDimensions(dimensions))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.VectorStoreSQLite, "":
		path := sqlite.Path(cfg.DBDir)
		store, err := sqlite.Open(ctx, path, sqlite.WithCreateIfNotExists(create))
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w (looked at %s)", ErrNoDatabase, path)
		}
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore)
	}
}

func providerOptions(cfg *config.Config) []provider.Option {
	return []provider.Option{
		provider.WithAPIKey(cfg.APIKey),
		provider.WithBaseURL(cfg.BaseURL),
	}
}

// NewEmbedder builds the embedder of the configured provider.
func NewEmbedder(ctx context.Context, cfg *config.Config) (embedder.Embedder, error) {
	return provider.Embedder(ctx, cfg.Provider, cfg.EmbedModel, providerOptions(cfg)...)
}

// NewModel builds the chat model of the configured provider.
func NewModel(ctx context.Context, cfg *config.Config) (model.Model, error) {
	return provider.Model(ctx, cfg.Provider, cfg.ChatModel, providerOptions(cfg)...)
}
