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
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/loader"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

// IngestOptions selects the files of an ingestion run.
type IngestOptions struct {
	// Recursive descends into subdirectories of directory arguments.
	Recursive bool
	// Include keeps only files matching one of these patterns.
	Include []string
	// Exclude drops files matching one of these patterns.
	Exclude []string
}

// FileResult is the outcome of ingesting one file.
type FileResult struct {
	Path string
	// Chunks is the number of chunks stored.
	Chunks int
	// Replaced is the number of chunks of a previous ingestion removed first.
	Replaced int
	Err      error
}

// IngestSummary reports an ingestion run.
type IngestSummary struct {
	// Files holds one result per selected file, in selection order.
	Files []FileResult
	// Skipped lists file arguments with unsupported extensions.
	Skipped []string
	// Missing lists arguments that do not exist.
	Missing []string
	// ScanErrors holds directories that could not be scanned.
	ScanErrors []error
}

// Succeeded returns the number of files ingested without error.
func (s *IngestSummary) Succeeded() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Chunks returns the total number of chunks stored.
func (s *IngestSummary) Chunks() int {
	n := 0
	for _, f := range s.Files {
		n += f.Chunks
	}
	return n
}

// CollectFiles expands paths into the supported files to ingest.
// Directories are scanned, unsupported files are skipped and missing paths
// are reported. Each file appears once.
func CollectFiles(paths []string, opts IngestOptions) *IngestSummary {
	summary := &IngestSummary{}
	seen := make(map[string]bool)
	add := func(path string) {
		key := filepath.Clean(path)
		if seen[key] {
			return
		}
		seen[key] = true
		summary.Files = append(summary.Files, FileResult{Path: path})
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			summary.Missing = append(summary.Missing, path)
		case info.IsDir():
			files, err := loader.ScanDirectory(path, opts.Recursive, opts.Include, opts.Exclude)
			if err != nil {
				summary.ScanErrors = append(summary.ScanErrors, fmt.Errorf("failed to scan directory %s: %w", path, err))
				continue
			}
			log.Infof("found %d supported files in %s", len(files), path)
			for _, f := range files {
				add(f)
			}
		case loader.IsSupported(path):
			add(path)
		default:
			summary.Skipped = append(summary.Skipped, path)
		}
	}
	return summary
}

// ingestParam carries one file through the worker pool.
type ingestParam struct {
	ctx context.Context
	idx int
	svc *Service
	res []FileResult
	wg  *sync.WaitGroup
	mu  *sync.Mutex
	n   *int
}

// Ingest loads every file selected by paths and stores its chunks. A file
// that fails is recorded in the summary and does not stop the others.
// Re-ingesting a file replaces its previous chunks.
func (s *Service) Ingest(ctx context.Context, paths []string, opts IngestOptions) (*IngestSummary, error) {
	if s.loader == nil || s.knowledge == nil {
		return nil, errors.New("rag: loader and knowledge are required for ingestion")
	}
	summary := CollectFiles(paths, opts)
	for _, p := range summary.Skipped {
		log.Warnf("skipping unsupported file: %s", p)
	}
	for _, p := range summary.Missing {
		log.Warnf("path not found: %s", p)
	}
	if len(summary.Files) == 0 {
		return summary, nil
	}

	workers := min(s.workers, len(summary.Files))
	pool, err := ants.NewPoolWithFunc(workers, func(args any) {
		p, ok := args.(*ingestParam)
		if !ok {
			panic("ingest pool args type error")
		}
		defer p.wg.Done()
		p.res[p.idx] = p.svc.ingestFile(p.ctx, p.res[p.idx].Path)
		p.svc.report(p, len(p.res))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest pool: %w", err)
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i := range summary.Files {
		if err := ctx.Err(); err != nil {
			summary.Files[i].Err = err
			continue
		}
		wg.Add(1)
		param := &ingestParam{ctx: ctx, idx: i, svc: s, res: summary.Files, wg: &wg, mu: &mu, n: &done}
		if err := pool.Invoke(param); err != nil {
			wg.Done()
			summary.Files[i].Err = fmt.Errorf("failed to schedule %s: %w", summary.Files[i].Path, err)
		}
	}
	wg.Wait()
	return summary, nil
}

func (s *Service) report(p *ingestParam, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.n++
	if s.progress != nil {
		s.progress(*p.n, total, p.res[p.idx])
	}
}

func (s *Service) ingestFile(ctx context.Context, path string) (result FileResult) {
	result.Path = path
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	ctx, span := trace.Tracer.Start(ctx, "ingest "+filepath.Base(path))
	defer func() {
		span.SetAttributes(
			attribute.String("docqa.file.path", path),
			attribute.Int("docqa.file.chunks", result.Chunks),
		)
		if result.Err != nil {
			span.SetStatus(codes.Error, result.Err.Error())
		}
		span.End()
		metric.RecordIngestedFile(ctx, fileType, result.Err == nil, result.Chunks)
	}()

	log.Debugf("loading %s", path)
	docs, err := s.loader.Load(ctx, path)
	if err != nil {
		result.Err = fmt.Errorf("failed to load %s: %w", path, err)
		return result
	}
	replaced, err := s.knowledge.ReplaceSource(ctx, path, docs)
	if err != nil {
		result.Err = fmt.Errorf("failed to store %s: %w", path, err)
		return result
	}
	result.Chunks = len(docs)
	result.Replaced = replaced
	return result
}
