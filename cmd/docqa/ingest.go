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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docqa-go/config"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/loader"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore/sqlite"
	"trpc.group/trpc-go/trpc-docqa-go/rag"
)

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest PATH...",
		Short: "Ingest documents into the vector store",
		Long: `Ingest loads files and directories, splits them into chunks, embeds the
chunks and stores them. Supported files: .pdf, .docx, .txt, .md, .csv.

Examples:
  docqa ingest report.pdf notes/
  docqa ingest --ocr --ocr-lang tha+eng scans/
  docqa ingest --include '**/*.md' --exclude 'drafts/**' docs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngestCmd,
	}

	f := cmd.Flags()
	f.String("db-dir", config.DefaultDBDir, "directory of the vector database")
	f.Bool("recursive", true, "recursively scan directories")
	f.Bool("no-recursive", false, "do not recursively scan directories")
	f.StringSlice("include", nil, "only ingest files matching these glob patterns")
	f.StringSlice("exclude", nil, "skip files matching these glob patterns")
	f.Int("workers", config.DefaultWorkers, "number of files ingested in parallel")
	f.Int("chunk-size", config.DefaultChunkSize, "chunk size in characters")
	f.Int("chunk-overlap", config.DefaultChunkOverlap, "overlap between chunks in characters")

	f.Bool("ocr", false, "enable OCR for PDFs with images")
	f.String("ocr-engine", ocr.DefaultEngine, "OCR engine: tesseract, easyocr")
	f.String("ocr-lang", ocr.DefaultLanguage, "OCR language codes, e.g. 'eng' or 'tha+eng'")
	f.Int("ocr-dpi", ocr.DefaultDPI, "rendering resolution for OCR")
	f.String("tesseract-cmd", "", "path to the tesseract executable (if not in PATH)")
	f.String("tessdata-dir", "", "directory containing tesseract language data files")
	f.Bool("gpu", true, "use a GPU for OCR (easyocr only)")
	f.Bool("no-gpu", false, "do not use a GPU for OCR")
	f.String("renderer", pdf.DefaultRasterizer, "PDF page renderer: fitz, gs")
	return cmd
}

func applyIngestFlags(cmd *cobra.Command, cfg *config.Config) {
	overrideString(cmd, "db-dir", &cfg.DBDir)
	overrideInt(cmd, "workers", &cfg.Workers)
	overrideInt(cmd, "chunk-size", &cfg.ChunkSize)
	overrideInt(cmd, "chunk-overlap", &cfg.ChunkOverlap)
	overrideBool(cmd, "ocr", &cfg.OCR.Enabled)
	overrideString(cmd, "ocr-engine", &cfg.OCR.Engine)
	overrideString(cmd, "ocr-lang", &cfg.OCR.Lang)
	overrideInt(cmd, "ocr-dpi", &cfg.OCR.DPI)
	overrideString(cmd, "tesseract-cmd", &cfg.OCR.TesseractCmd)
	overrideString(cmd, "tessdata-dir", &cfg.OCR.TessdataDir)
	overrideString(cmd, "renderer", &cfg.OCR.Renderer)
	overrideBool(cmd, "gpu", &cfg.OCR.GPU)
	if noGPU, _ := cmd.Flags().GetBool("no-gpu"); noGPU {
		cfg.OCR.GPU = false
	}
}

func ingestOptions(cmd *cobra.Command) rag.IngestOptions {
	recursive, _ := cmd.Flags().GetBool("recursive")
	if noRecursive, _ := cmd.Flags().GetBool("no-recursive"); noRecursive {
		recursive = false
	}
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	return rag.IngestOptions{Recursive: recursive, Include: include, Exclude: exclude}
}

func runIngestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyIngestFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer startTelemetry(ctx, cfg)()

	emb, err := rag.NewEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := rag.OpenStore(ctx, cfg, emb.GetDimensions(), true)
	if err != nil {
		return err
	}
	kb := knowledge.New(knowledge.WithEmbedder(emb), knowledge.WithVectorStore(store))
	defer kb.Close()

	out := cmd.OutOrStdout()
	svc := rag.New(
		rag.WithLoader(loader.New(
			loader.WithOCR(cfg.OCR.Enabled),
			loader.WithOCRConfig(cfg.OCRConfig()),
			loader.WithChunking(cfg.ChunkSize, cfg.ChunkOverlap),
		)),
		rag.WithKnowledge(kb),
		rag.WithWorkers(cfg.Workers),
		rag.WithProgress(func(done, total int, r rag.FileResult) {
			if r.Err != nil {
				fmt.Fprintf(out, "[%d/%d] Error processing %s: %v\n", done, total, r.Path, r.Err)
				return
			}
			fmt.Fprintf(out, "[%d/%d] Loaded and added %d chunks from %s\n", done, total, r.Chunks, r.Path)
		}),
	)

	summary, err := svc.Ingest(ctx, args, ingestOptions(cmd))
	if err != nil {
		return err
	}
	for _, p := range summary.Skipped {
		fmt.Fprintf(out, "Skipping unsupported file: %s\n", p)
	}
	for _, p := range summary.Missing {
		fmt.Fprintf(out, "Path not found: %s\n", p)
	}
	for _, e := range summary.ScanErrors {
		fmt.Fprintf(out, "Error: %v\n", e)
	}
	fmt.Fprintf(out, "\nIngestion complete: %d/%d files processed successfully\n",
		summary.Succeeded(), len(summary.Files))
	fmt.Fprintf(out, "Vector store location: %s\n", storeLocation(cfg))
	return nil
}

func storeLocation(cfg *config.Config) string {
	if cfg.VectorStore == config.VectorStorePGVector {
		return "pgvector"
	}
	return sqlite.Path(cfg.DBDir)
}
