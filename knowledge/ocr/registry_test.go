//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCaseInsensitive(t *testing.T) {
	var got Config
	Register("Stub-Engine", func(_ context.Context, cfg Config) (Engine, error) {
		got = cfg
		return &stubEngine{}, nil
	})
	t.Cleanup(func() {
		mu.Lock()
		delete(builders, "stub-engine")
		mu.Unlock()
	})

	for _, name := range []string{"stub-engine", "STUB-ENGINE", "  Stub-Engine "} {
		e, err := NewEngine(context.Background(), NewConfig(WithEngine(name), WithLanguage("tha+eng")))
		require.NoError(t, err, name)
		assert.Equal(t, "stub", e.Name())
	}
	assert.Equal(t, "tha+eng", got.Lang)
	assert.Contains(t, Engines(), "stub-engine")
}

func TestNewEngineUnknown(t *testing.T) {
	_, err := NewEngine(context.Background(), NewConfig(WithEngine("paddleocr")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedEngine)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "paddleocr")
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithEngine("easyocr"),
		WithLanguage("tha"),
		WithDPI(-1),
		WithGPU(false),
		WithBinaryPath("/opt/bin/tesseract"),
		WithLanguageDataDir("/data/tessdata"),
		WithRasterizer("gs"),
		WithModel("m"),
		WithHost("http://gpu:11434"),
	)
	assert.Equal(t, "easyocr", cfg.Engine)
	assert.Equal(t, "tha", cfg.Lang)
	assert.Equal(t, DefaultDPI, cfg.DPI)
	assert.False(t, cfg.UseGPU)
	assert.Equal(t, "/opt/bin/tesseract", cfg.BinaryPath)
	assert.Equal(t, "/data/tessdata", cfg.LanguageDataDir)
	assert.Equal(t, "gs", cfg.Rasterizer)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, "http://gpu:11434", cfg.Host)

	def := DefaultConfig()
	assert.True(t, def.UseGPU)
	assert.Equal(t, 300, def.DPI)
}

func TestNopPreprocessIsIdentity(t *testing.T) {
	var p NopPreprocess
	assert.Nil(t, p.Preprocess(nil))
}

func TestErrorsWrapConfig(t *testing.T) {
	for _, err := range []error{ErrUnsupportedEngine, ErrBinaryNotFound, ErrLanguageNotInstalled, ErrBackendUnavailable} {
		assert.ErrorIs(t, err, ErrConfig)
	}
	assert.NotErrorIs(t, ErrPDFNotFound, ErrConfig)
}
