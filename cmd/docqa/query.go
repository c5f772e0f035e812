//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docqa-go/config"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge"
	"trpc.group/trpc-go/trpc-docqa-go/rag"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query QUESTION",
		Short: "Answer a question from the ingested documents",
		Args:  cobra.ExactArgs(1),
		RunE:  runQueryCmd,
	}
	cmd.Flags().String("db-dir", config.DefaultDBDir, "directory of the vector database")
	cmd.Flags().Bool("raw-chunks", false, "print the retrieved chunks without calling the chat model")
	cmd.Flags().Int("num-chunks", rag.DefaultNumChunks, "number of chunks to retrieve")
	return cmd
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideString(cmd, "db-dir", &cfg.DBDir)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	raw, _ := cmd.Flags().GetBool("raw-chunks")
	k, _ := cmd.Flags().GetInt("num-chunks")

	ctx := cmd.Context()
	defer startTelemetry(ctx, cfg)()

	emb, err := rag.NewEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := rag.OpenStore(ctx, cfg, emb.GetDimensions(), false)
	if err != nil {
		return err
	}
	kb := knowledge.New(knowledge.WithEmbedder(emb), knowledge.WithVectorStore(store))
	defer kb.Close()

	opts := []rag.Option{rag.WithKnowledge(kb)}
	if !raw {
		m, err := rag.NewModel(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, rag.WithModel(m))
	}
	answer, err := rag.New(opts...).Query(ctx, args[0], k, raw)
	if err != nil {
		return err
	}
	printAnswer(cmd.OutOrStdout(), answer, raw)
	return nil
}

func printAnswer(w io.Writer, answer *rag.Answer, raw bool) {
	rule := strings.Repeat("-", 80)
	fmt.Fprintln(w, rule)
	if raw {
		fmt.Fprintf(w, "Top %d relevant chunks:\n", len(answer.Chunks))
		for i, c := range answer.Chunks {
			fmt.Fprintf(w, "\nChunk %d (score %.4f, %s):\n", i+1, c.Score, c.Document.Source())
			fmt.Fprintln(w, strings.Repeat("-", 40))
			fmt.Fprintln(w, c.Document.Content)
		}
	} else {
		fmt.Fprintln(w, "Answer:")
		fmt.Fprintln(w, answer.Text)
	}
	fmt.Fprintln(w, rule)
}
