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
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docqa-go/config"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

// version is set at build time via ldflags.
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Document Q&A over PDFs, Word, Markdown, CSV and text files",
		Long: `docqa ingests documents into a local vector store and answers questions
about them with a chat model. Scanned PDFs are converted with OCR
(tesseract or easyocr) when --ocr is set.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("env-file", "", "dotenv file to load (default: .env when present)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console, json")
	flags.String("provider", "", "chat and embedding provider: openai, ollama, gemini")
	flags.String("vector-store", "", "vector store backend: sqlite, pgvector")
	flags.String("postgres-dsn", "", "PostgreSQL connection string for the pgvector store")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewOCRCmd())
	cmd.AddCommand(NewNeedsOCRCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}
	overrideString(cmd, "log-level", &cfg.LogLevel)
	overrideString(cmd, "log-format", &cfg.LogFormat)
	overrideString(cmd, "provider", &cfg.Provider)
	overrideString(cmd, "vector-store", &cfg.VectorStore)
	overrideString(cmd, "postgres-dsn", &cfg.PostgresDSN)
	log.SetLevel(cfg.LogLevel)
	log.SetFormat(cfg.LogFormat)
	return cfg, nil
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

// startTelemetry installs the OTLP exporters when an endpoint is configured.
func startTelemetry(ctx context.Context, cfg *config.Config) func() {
	if cfg.Telemetry.OTLPEndpoint == "" {
		return func() {}
	}
	var cleanups []func() error
	cleanTrace, err := trace.Start(ctx,
		trace.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		trace.WithProtocol(cfg.Telemetry.OTLPProtocol),
	)
	if err != nil {
		log.Warnf("failed to start tracing: %v", err)
	} else {
		cleanups = append(cleanups, cleanTrace)
	}
	cleanMetric, err := metric.Start(ctx,
		metric.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		metric.WithProtocol(cfg.Telemetry.OTLPProtocol),
	)
	if err != nil {
		log.Warnf("failed to start metrics: %v", err)
	} else {
		cleanups = append(cleanups, cleanMetric)
	}
	return func() {
		var errs []error
		for _, clean := range cleanups {
			errs = append(errs, clean())
		}
		if err := errors.Join(errs...); err != nil {
			log.Warnf("failed to flush telemetry: %v", err)
		}
	}
}
