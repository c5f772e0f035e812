//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package easyocr recognizes page images with a multimodal neural model
// served by an Ollama runtime. It registers itself as the "easyocr" engine.
//
// Languages are given as Tesseract style codes ("tha+eng") and translated to
// the two letter codes the model is prompted with ("th", "en").
package easyocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"trpc.group/trpc-go/trpc-docqa-go/internal/ollamahost"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

const (
	// DefaultModel is the vision model used when none is configured.
	DefaultModel = "qwen2.5vl:7b"
	// DefaultKeepAlive keeps the model loaded between pages.
	DefaultKeepAlive = 10 * time.Minute
)

func init() {
	ocr.Register(ocr.EngineEasyOCR, func(ctx context.Context, cfg ocr.Config) (ocr.Engine, error) {
		return New(ctx, cfg)
	})
}

// languageTable holds the combined codes with a fixed translation.
var languageTable = map[string][]string{
	"tha":     {"th"},
	"eng":     {"en"},
	"tha+eng": {"th", "en"},
	"eng+tha": {"en", "th"},
}

// codeTable translates single codes; anything else passes through.
var codeTable = map[string]string{
	"tha": "th",
	"eng": "en",
}

var languageNames = map[string]string{
	"th": "Thai",
	"en": "English",
}

// TranslateLanguages maps a "+" joined Tesseract language string to the
// neural engine's language codes.
func TranslateLanguages(lang string) []string {
	if codes, ok := languageTable[lang]; ok {
		return append([]string(nil), codes...)
	}
	var codes []string
	for _, code := range strings.Split(lang, "+") {
		if mapped, ok := codeTable[code]; ok {
			code = mapped
		}
		codes = append(codes, code)
	}
	return codes
}

// options holds the settings that are not part of ocr.Config.
type options struct {
	client    *api.Client
	keepAlive time.Duration
}

// Option configures the engine.
type Option func(*options)

// WithClient injects an API client.
func WithClient(client *api.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithKeepAlive sets how long the runtime keeps the model loaded.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) {
		o.keepAlive = d
	}
}

// Engine prompts a vision model to transcribe each page.
type Engine struct {
	ocr.NopPreprocess

	client    *api.Client
	model     string
	languages []string
	useGPU    bool
	keepAlive time.Duration
	prompt    string
}

var _ ocr.Engine = (*Engine)(nil)

// New connects to the runtime and loads the model. An unreachable runtime,
// an unknown model or a model without vision support fails with
// ocr.ErrBackendUnavailable.
func New(ctx context.Context, cfg ocr.Config, opts ...Option) (*Engine, error) {
	o := &options{keepAlive: DefaultKeepAlive}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = ollamahost.NewClient(cfg.Host, nil)
	}
	lang := cfg.Lang
	if lang == "" {
		lang = ocr.DefaultLanguage
	}
	e := &Engine{
		client:    o.client,
		model:     cfg.Model,
		languages: TranslateLanguages(lang),
		useGPU:    cfg.UseGPU,
		keepAlive: o.keepAlive,
	}
	if e.model == "" {
		e.model = DefaultModel
	}
	e.prompt = buildPrompt(e.languages)

	if err := e.client.Heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("%w: neural OCR runtime not reachable: %v", ocr.ErrBackendUnavailable, err)
	}
	show, err := e.client.Show(ctx, &api.ShowRequest{Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("%w: model %q not available (pull it with `ollama pull %s`): %v",
			ocr.ErrBackendUnavailable, e.model, e.model, err)
	}
	if len(show.Capabilities) > 0 && !hasCapability(show, "vision") {
		return nil, fmt.Errorf("%w: model %q does not accept images", ocr.ErrBackendUnavailable, e.model)
	}
	// An empty prompt loads the model without generating.
	if err := e.client.Generate(ctx, e.request(""), func(api.GenerateResponse) error { return nil }); err != nil {
		return nil, fmt.Errorf("%w: failed to load model %q: %v", ocr.ErrBackendUnavailable, e.model, err)
	}

	log.Infof("Using neural OCR model %s with languages: %v (gpu: %t)", e.model, e.languages, e.useGPU)
	return e, nil
}

func hasCapability(show *api.ShowResponse, want string) bool {
	for _, c := range show.Capabilities {
		if string(c) == want {
			return true
		}
	}
	return false
}

func buildPrompt(codes []string) string {
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		if name, ok := languageNames[code]; ok {
			names = append(names, name)
		} else {
			names = append(names, code)
		}
	}
	return "Transcribe all text in this page image exactly as written, in reading order. " +
		"The text is in: " + strings.Join(names, ", ") + ". " +
		"Output only the transcribed text, one line of the page per line, with no commentary."
}

func (e *Engine) request(prompt string) *api.GenerateRequest {
	stream := false
	req := &api.GenerateRequest{
		Model:     e.model,
		Prompt:    prompt,
		Stream:    &stream,
		KeepAlive: &api.Duration{Duration: e.keepAlive},
		Options:   map[string]any{"temperature": 0},
	}
	if !e.useGPU {
		req.Options["num_gpu"] = 0
	}
	return req
}

// Name returns "easyocr".
func (e *Engine) Name() string {
	return ocr.EngineEasyOCR
}

// Languages returns the translated language codes.
func (e *Engine) Languages() []string {
	return append([]string(nil), e.languages...)
}

// ExtractText sends img to the model. Failures are logged and yield "".
func (e *Engine) ExtractText(ctx context.Context, img *raster.Image) string {
	data, err := img.EncodePNG()
	if err != nil {
		log.ErrorfContext(ctx, "Error extracting text with neural OCR: %v", err)
		return ""
	}
	req := e.request(e.prompt)
	req.Images = []api.ImageData{data}

	var sb strings.Builder
	err = e.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		log.ErrorfContext(ctx, "Error extracting text with neural OCR: %v", err)
		return ""
	}
	return strings.TrimSpace(sb.String())
}

// Close is a no-op; the runtime unloads the model after the keep-alive.
func (e *Engine) Close() error {
	return nil
}
