//go:build gosseract

//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package gosseract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/internal/tessdata"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

func init() {
	ocr.Register(Name, func(ctx context.Context, cfg ocr.Config) (ocr.Engine, error) {
		return New(cfg)
	})
}

// Engine keeps a pool of libtesseract clients so pages can be recognized
// concurrently. Every client it creates is tracked until it is closed.
type Engine struct {
	ocr.NopPreprocess

	lang    string
	dataDir string

	mu      sync.Mutex
	idle    []*gosseract.Client
	clients map[*gosseract.Client]struct{}
	closed  bool
}

var _ ocr.Engine = (*Engine)(nil)

// New validates the language configuration with a first client and prepares
// the pool. Missing languages fail with ocr.ErrLanguageNotInstalled.
func New(cfg ocr.Config) (*Engine, error) {
	lang := cfg.Lang
	if lang == "" {
		lang = ocr.DefaultLanguage
	}
	dataDir := cfg.LanguageDataDir
	if dataDir == "" {
		dataDir = tessdata.Find(lang, tessdata.Candidates)
	}
	e := &Engine{lang: lang, dataDir: dataDir, clients: map[*gosseract.Client]struct{}{}}

	first, err := e.newClient()
	if err != nil {
		return nil, err
	}
	available, err := first.GetAvailableLanguages()
	first.Close()
	if err != nil {
		log.Warnf("Could not verify Tesseract languages: %v", err)
	} else if missing := tessdata.Missing(lang, available); len(missing) > 0 {
		return nil, fmt.Errorf("%w\n%s", ocr.ErrLanguageNotInstalled,
			tessdata.InstallHint(missing, "libtesseract "+gosseract.Version(), dataDir))
	}

	log.Infof("Using libtesseract %s with language: %s", gosseract.Version(), lang)
	return e, nil
}

func (e *Engine) newClient() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if e.dataDir != "" {
		if err := client.SetTessdataPrefix(e.dataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: invalid tessdata directory %q: %v", ocr.ErrConfig, e.dataDir, err)
		}
	}
	if err := client.SetLanguage(tessdata.SplitLanguages(e.lang)...); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to set language %q: %v", ocr.ErrConfig, e.lang, err)
	}
	return client, nil
}

// Name returns "gosseract".
func (e *Engine) Name() string {
	return Name
}

// acquire hands out an idle client or creates one.
func (e *Engine) acquire() (*gosseract.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("engine is closed")
	}
	if n := len(e.idle); n > 0 {
		client := e.idle[n-1]
		e.idle = e.idle[:n-1]
		return client, nil
	}
	client, err := e.newClient()
	if err != nil {
		return nil, err
	}
	e.clients[client] = struct{}{}
	return client, nil
}

// release returns a client that is no longer running to the pool.
func (e *Engine) release(client *gosseract.Client) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		delete(e.clients, client)
		client.Close()
		return
	}
	e.idle = append(e.idle, client)
}

// discard closes a client that must not be reused.
func (e *Engine) discard(client *gosseract.Client) {
	e.mu.Lock()
	delete(e.clients, client)
	e.mu.Unlock()
	client.Close()
}

// ExtractText recognizes img with a pooled client. Failures are logged and
// yield "". A client abandoned on cancellation is closed once libtesseract
// returns and is never reused.
func (e *Engine) ExtractText(ctx context.Context, img *raster.Image) string {
	data, err := img.EncodePNG()
	if err != nil {
		log.ErrorfContext(ctx, "Error extracting text with libtesseract: %v", err)
		return ""
	}
	client, err := e.acquire()
	if err != nil {
		log.ErrorfContext(ctx, "Error extracting text with libtesseract: %v", err)
		return ""
	}

	type result struct {
		text string
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		if err := client.SetImageFromBytes(data); err != nil {
			resultCh <- result{err: fmt.Errorf("failed to set image: %w", err)}
			return
		}
		text, err := client.Text()
		resultCh <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			<-resultCh
			e.discard(client)
		}()
		log.ErrorfContext(ctx, "Error extracting text with libtesseract: %v", ctx.Err())
		return ""
	case res := <-resultCh:
		e.release(client)
		if res.err != nil {
			log.ErrorfContext(ctx, "Error extracting text with libtesseract: %v", res.err)
			return ""
		}
		return strings.TrimSpace(res.text)
	}
}

// Close frees the idle clients. Clients still recognizing are freed when
// they finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for _, client := range e.idle {
		delete(e.clients, client)
		client.Close()
	}
	e.idle = nil
	return nil
}
