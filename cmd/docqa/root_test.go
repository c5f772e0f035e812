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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/config"
	"trpc.group/trpc-go/trpc-docqa-go/internal/pdftest"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore/sqlite"
	"trpc.group/trpc-go/trpc-docqa-go/rag"
)

type pageEngine struct {
	ocr.NopPreprocess
	n int
}

func (e *pageEngine) Name() string { return "cmdtest" }

func (e *pageEngine) ExtractText(_ context.Context, _ *raster.Image) string {
	e.n++
	return "recognized"
}

func (e *pageEngine) Close() error { return nil }

func init() {
	ocr.Register("cmdtest", func(_ context.Context, _ ocr.Config) (ocr.Engine, error) {
		return &pageEngine{}, nil
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ingest", "query", "ocr", "needs-ocr"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("provider"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("vector-store"))
}

func TestEnginesRegistered(t *testing.T) {
	engines := ocr.Engines()
	assert.Contains(t, engines, ocr.EngineTesseract)
	assert.Contains(t, engines, ocr.EngineEasyOCR)
}

func TestIngestFlagsOverrideConfig(t *testing.T) {
	cmd := NewIngestCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--db-dir", "store", "--ocr", "--ocr-engine", "easyocr", "--ocr-lang", "tha+eng",
		"--ocr-dpi", "200", "--tessdata-dir", "/td", "--no-gpu", "--workers", "3",
		"--no-recursive", "--include", "*.md,*.pdf",
	}))
	cfg := config.Default()
	applyIngestFlags(cmd, cfg)

	assert.Equal(t, "store", cfg.DBDir)
	assert.True(t, cfg.OCR.Enabled)
	assert.Equal(t, "easyocr", cfg.OCR.Engine)
	assert.Equal(t, "tha+eng", cfg.OCR.Lang)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, "/td", cfg.OCR.TessdataDir)
	assert.False(t, cfg.OCR.GPU)
	assert.Equal(t, 3, cfg.Workers)

	opts := ingestOptions(cmd)
	assert.False(t, opts.Recursive)
	assert.Equal(t, []string{"*.md", "*.pdf"}, opts.Include)
}

func TestIngestFlagsKeepConfigWhenUnset(t *testing.T) {
	cmd := NewIngestCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	cfg := config.Default()
	cfg.DBDir = "from-config"
	cfg.OCR.Lang = "deu"
	applyIngestFlags(cmd, cfg)
	assert.Equal(t, "from-config", cfg.DBDir)
	assert.Equal(t, "deu", cfg.OCR.Lang)
	assert.True(t, cfg.OCR.GPU)
	assert.True(t, ingestOptions(cmd).Recursive)
}

func TestQueryWithoutDatabase(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "query", "what?", "--raw-chunks", "--provider", "ollama",
		"--db-dir", filepath.Join(dir, "db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest documents first")
	_, statErr := os.Stat(sqlite.Path(filepath.Join(dir, "db")))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOCRToStdout(t *testing.T) {
	pdfPath := pdftest.Scanned(t, t.TempDir(), 2)
	out, err := run(t, "ocr", pdfPath, "-o", "-", "--engine", "cmdtest", "--dpi", "72")
	require.NoError(t, err)
	assert.Equal(t, "--- Page 1 ---\nrecognized\n\n--- Page 2 ---\nrecognized\n\n", out)
}

func TestOCRDefaultOutputPath(t *testing.T) {
	pdfPath := pdftest.Scanned(t, t.TempDir(), 1)
	out, err := run(t, "ocr", pdfPath, "--engine", "cmdtest", "--dpi", "72")
	require.NoError(t, err)

	want := strings.TrimSuffix(pdfPath, ".pdf") + ".txt"
	assert.Equal(t, want+"\n", out)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--- Page 1 ---")
}

func TestOCRUnknownEngine(t *testing.T) {
	pdfPath := pdftest.Scanned(t, t.TempDir(), 1)
	_, err := run(t, "ocr", pdfPath, "-o", "-", "--engine", "nope")
	assert.ErrorIs(t, err, ocr.ErrUnsupportedEngine)
}

func TestNeedsOCR(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"scanned", pdftest.Scanned(t, dir, 2), "true\n"},
		{"text", pdftest.Text(t, dir, pdftest.Repeat("The quick brown fox jumps over the lazy dog. ", 300)), "false\n"},
		{"missing", filepath.Join(dir, "missing.pdf"), "false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "needs-ocr", tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPrintAnswer(t *testing.T) {
	var buf bytes.Buffer
	printAnswer(&buf, &rag.Answer{Text: "42"}, false)
	assert.Contains(t, buf.String(), "Answer:\n42\n")
}
