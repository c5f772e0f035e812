//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package tesseract recognizes page images with the tesseract command line
// program. It registers itself as the "tesseract" engine.
//
// Install Tesseract first: apt-get install tesseract-ocr (Debian/Ubuntu) or
// brew install tesseract (macOS).
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/internal/tessdata"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// DefaultBinary is looked up on PATH when no executable is configured.
const DefaultBinary = "tesseract"

func init() {
	ocr.Register(ocr.EngineTesseract, func(ctx context.Context, cfg ocr.Config) (ocr.Engine, error) {
		return New(ctx, cfg)
	})
}

// options holds the settings that are not part of ocr.Config.
type options struct {
	pageSegMode   int
	dataDirSearch []string
}

// Option configures the engine.
type Option func(*options)

// WithPageSegMode sets the Tesseract page segmentation mode (0-13).
// Invalid modes are ignored and Tesseract's default (3) applies.
func WithPageSegMode(mode int) Option {
	return func(o *options) {
		if mode < 0 || mode > 13 {
			return
		}
		o.pageSegMode = mode
	}
}

// WithDataDirCandidates replaces the directories searched for language data.
func WithDataDirCandidates(dirs ...string) Option {
	return func(o *options) {
		o.dataDirSearch = dirs
	}
}

// Engine runs one tesseract process per page.
type Engine struct {
	ocr.NopPreprocess

	binary      string
	dataDir     string
	lang        string
	dpi         int
	pageSegMode int
}

var _ ocr.Engine = (*Engine)(nil)

// New resolves the executable and language data and verifies the requested
// languages are installed.
//
// A missing executable fails with ocr.ErrBinaryNotFound. Languages that the
// executable reports as absent fail with ocr.ErrLanguageNotInstalled. When
// the language listing itself fails only a warning is logged.
func New(ctx context.Context, cfg ocr.Config, opts ...Option) (*Engine, error) {
	o := &options{pageSegMode: -1, dataDirSearch: tessdata.Candidates}
	for _, opt := range opts {
		opt(o)
	}

	binary, err := resolveBinary(ctx, cfg.BinaryPath)
	if err != nil {
		return nil, err
	}

	lang := cfg.Lang
	if lang == "" {
		lang = ocr.DefaultLanguage
	}
	dataDir := cfg.LanguageDataDir
	if dataDir == "" {
		dataDir = tessdata.Find(lang, o.dataDirSearch)
	}
	if dataDir != "" {
		log.Debugf("Using tessdata directory: %s", dataDir)
	}

	e := &Engine{
		binary:      binary,
		dataDir:     dataDir,
		lang:        lang,
		dpi:         cfg.DPI,
		pageSegMode: o.pageSegMode,
	}
	if e.dpi <= 0 {
		e.dpi = ocr.DefaultDPI
	}

	available, err := e.Languages(ctx)
	if err != nil {
		log.Warnf("Could not verify Tesseract languages: %v", err)
	} else if missing := tessdata.Missing(lang, available); len(missing) > 0 {
		return nil, fmt.Errorf("%w\n%s", ocr.ErrLanguageNotInstalled, tessdata.InstallHint(missing, binary, dataDir))
	}

	log.Infof("Using Tesseract OCR with language: %s", lang)
	return e, nil
}

func resolveBinary(ctx context.Context, configured string) (string, error) {
	name := configured
	if name == "" {
		name = DefaultBinary
	}
	binary, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: could not find Tesseract executable %q; install Tesseract or set its path: %v",
			ocr.ErrBinaryNotFound, name, err)
	}
	out, err := exec.CommandContext(ctx, binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s --version failed: %v: %s",
			ocr.ErrBinaryNotFound, binary, err, strings.TrimSpace(string(out)))
	}
	if first, _, _ := strings.Cut(string(out), "\n"); first != "" {
		log.Debugf("Found %s", strings.TrimSpace(first))
	}
	return binary, nil
}

// Name returns "tesseract".
func (e *Engine) Name() string {
	return ocr.EngineTesseract
}

// Binary returns the resolved executable.
func (e *Engine) Binary() string {
	return e.binary
}

// DataDir returns the language data directory, or "" for tesseract's default.
func (e *Engine) DataDir() string {
	return e.dataDir
}

// Languages lists the languages the executable can load.
func (e *Engine) Languages(ctx context.Context) ([]string, error) {
	args := append([]string{"--list-langs"}, e.dataDirArgs()...)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s --list-langs: %w: %s", e.binary, err, strings.TrimSpace(stderr.String()))
	}
	// Some builds print the listing on stderr.
	langs := tessdata.ParseList(stdout.String())
	if len(langs) == 0 {
		langs = tessdata.ParseList(stderr.String())
	}
	if len(langs) == 0 {
		return nil, errors.New("empty language list")
	}
	return langs, nil
}

// ExtractText pipes img as PNG through tesseract. Failures are logged and
// yield "".
func (e *Engine) ExtractText(ctx context.Context, img *raster.Image) string {
	data, err := img.EncodePNG()
	if err != nil {
		log.ErrorfContext(ctx, "Error extracting text with Tesseract: %v", err)
		return ""
	}

	args := []string{"stdin", "stdout", "-l", e.lang, "--dpi", strconv.Itoa(e.dpi)}
	if e.pageSegMode >= 0 {
		args = append(args, "--psm", strconv.Itoa(e.pageSegMode))
	}
	args = append(args, e.dataDirArgs()...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		log.ErrorfContext(ctx, "Error extracting text with Tesseract: %v: %s", err, strings.TrimSpace(stderr.String()))
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

// Close is a no-op; every page runs in its own process.
func (e *Engine) Close() error {
	return nil
}

func (e *Engine) dataDirArgs() []string {
	if e.dataDir == "" {
		return nil
	}
	return []string{"--tessdata-dir", e.dataDir}
}
