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
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/internal/pdftest"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/raster"
)

// fakeDocument renders blank pages and records calls.
type fakeDocument struct {
	pages     int
	failPage  int
	rendered  []int
	dpis      []int
	closed    bool
	closeErrs error
}

func (d *fakeDocument) NumPages() int { return d.pages }

func (d *fakeDocument) RenderPage(_ context.Context, page, dpi int) (image.Image, error) {
	if d.closed {
		panic("render after close")
	}
	if page == d.failPage {
		return nil, errors.New("corrupt page")
	}
	d.rendered = append(d.rendered, page)
	d.dpis = append(d.dpis, dpi)
	return image.NewGray(image.Rect(0, 0, 10, 10)), nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return d.closeErrs
}

// stubEngine returns a scripted text per call and panics on panicCall.
type stubEngine struct {
	NopPreprocess
	texts     map[int]string
	panicCall int
	calls     int
	closed    bool
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) ExtractText(_ context.Context, img *raster.Image) string {
	e.calls++
	if e.calls == e.panicCall {
		panic("recognizer crashed")
	}
	if img == nil {
		return ""
	}
	return e.texts[e.calls]
}

func (e *stubEngine) Close() error {
	e.closed = true
	return nil
}

func newTestConverter(doc *fakeDocument, engine *stubEngine, cfg Config) *Converter {
	return NewConverter(cfg,
		WithDocumentOpener(func(string, Config) (Document, error) { return doc, nil }),
		WithEngineFactory(func(context.Context, Config) (Engine, error) { return engine, nil }),
	)
}

func touch(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestConvertAssemblesPageMarkers(t *testing.T) {
	doc := &fakeDocument{pages: 3, failPage: -1}
	engine := &stubEngine{texts: map[int]string{1: "alpha", 2: "", 3: "gamma"}}

	text, err := newTestConverter(doc, engine, NewConfig(WithDPI(150))).Convert(context.Background(), touch(t), "")
	require.NoError(t, err)

	want := "--- Page 1 ---\nalpha\n\n--- Page 2 ---\n\n\n--- Page 3 ---\ngamma\n\n"
	assert.Equal(t, want, text)
	assert.Equal(t, []int{0, 1, 2}, doc.rendered)
	assert.Equal(t, []int{150, 150, 150}, doc.dpis)
	assert.True(t, doc.closed)
	assert.True(t, engine.closed)
}

func TestConvertMarkerCountMatchesPages(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			doc := &fakeDocument{pages: n, failPage: -1}
			text, err := newTestConverter(doc, &stubEngine{}, DefaultConfig()).Convert(context.Background(), touch(t), "")
			require.NoError(t, err)
			assert.Equal(t, n, strings.Count(text, "--- Page "))
			for i := 1; i <= n; i++ {
				assert.Contains(t, text, PageMarker(i))
			}
		})
	}
}

func TestConvertWritesOutput(t *testing.T) {
	doc := &fakeDocument{pages: 1, failPage: -1}
	engine := &stubEngine{texts: map[int]string{1: "สวัสดี hello"}}
	out := filepath.Join(t.TempDir(), "nested", "deeper", "out.txt")

	text, err := newTestConverter(doc, engine, DefaultConfig()).Convert(context.Background(), touch(t), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))

	// A second conversion overwrites the file.
	doc2 := &fakeDocument{pages: 1, failPage: -1}
	_, err = newTestConverter(doc2, &stubEngine{texts: map[int]string{1: "x"}}, DefaultConfig()).
		Convert(context.Background(), touch(t), out)
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "--- Page 1 ---\nx\n\n", string(data))
}

func TestConvertEnginePanicLeavesPageEmpty(t *testing.T) {
	doc := &fakeDocument{pages: 3, failPage: -1}
	engine := &stubEngine{texts: map[int]string{1: "alpha", 3: "gamma"}, panicCall: 2}

	text, err := newTestConverter(doc, engine, DefaultConfig()).Convert(context.Background(), touch(t), "")
	require.NoError(t, err)
	assert.Equal(t, "--- Page 1 ---\nalpha\n\n--- Page 2 ---\n\n\n--- Page 3 ---\ngamma\n\n", text)
	assert.Equal(t, 3, engine.calls)
	assert.True(t, doc.closed)
	assert.True(t, engine.closed)
}

func TestConvertIdempotent(t *testing.T) {
	texts := map[int]string{1: "หน้าแรก", 2: "second", 3: "third"}
	path := touch(t)
	convert := func() string {
		doc := &fakeDocument{pages: 3, failPage: -1}
		text, err := newTestConverter(doc, &stubEngine{texts: texts}, DefaultConfig()).
			Convert(context.Background(), path, "")
		require.NoError(t, err)
		return text
	}
	first := convert()
	assert.Equal(t, first, convert())
	assert.Equal(t, 3, strings.Count(first, "--- Page "))
}

func TestConvertMissingInput(t *testing.T) {
	engineBuilt := false
	c := NewConverter(DefaultConfig(),
		WithEngineFactory(func(context.Context, Config) (Engine, error) {
			engineBuilt = true
			return &stubEngine{}, nil
		}),
	)
	out := filepath.Join(t.TempDir(), "out.txt")
	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPDFNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, engineBuilt)
	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestConvertEngineConfigError(t *testing.T) {
	opened := false
	c := NewConverter(DefaultConfig(),
		WithDocumentOpener(func(string, Config) (Document, error) {
			opened = true
			return &fakeDocument{}, nil
		}),
		WithEngineFactory(func(context.Context, Config) (Engine, error) {
			return nil, fmt.Errorf("%w: nope", ErrBinaryNotFound)
		}),
	)
	_, err := c.Convert(context.Background(), touch(t), "")
	assert.ErrorIs(t, err, ErrConfig)
	assert.False(t, opened)
}

func TestConvertUnknownEngine(t *testing.T) {
	_, err := ConvertPDFToText(context.Background(), touch(t), "", WithEngine("paddle"))
	assert.ErrorIs(t, err, ErrUnsupportedEngine)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConvertRenderErrorAborts(t *testing.T) {
	doc := &fakeDocument{pages: 3, failPage: 1}
	engine := &stubEngine{texts: map[int]string{1: "first"}}
	out := filepath.Join(t.TempDir(), "out.txt")

	_, err := newTestConverter(doc, engine, DefaultConfig()).Convert(context.Background(), touch(t), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.True(t, doc.closed)
	assert.True(t, engine.closed)
	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestConvertOpenError(t *testing.T) {
	engine := &stubEngine{}
	c := NewConverter(DefaultConfig(),
		WithDocumentOpener(func(string, Config) (Document, error) { return nil, errors.New("bad pdf") }),
		WithEngineFactory(func(context.Context, Config) (Engine, error) { return engine, nil }),
	)
	_, err := c.Convert(context.Background(), touch(t), "")
	require.Error(t, err)
	assert.True(t, engine.closed)
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := &fakeDocument{pages: 2, failPage: -1}
	_, err := newTestConverter(doc, &stubEngine{}, DefaultConfig()).Convert(ctx, touch(t), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertRealPDFWithStubEngine(t *testing.T) {
	path := pdftest.Scanned(t, t.TempDir(), 2)
	engine := &stubEngine{texts: map[int]string{1: "one", 2: "two"}}
	c := NewConverter(NewConfig(WithDPI(50)),
		WithEngineFactory(func(context.Context, Config) (Engine, error) { return engine, nil }),
	)
	text, err := c.Convert(context.Background(), path, "")
	if err != nil {
		t.Skipf("rasterizer unavailable: %v", err)
	}
	assert.Equal(t, "--- Page 1 ---\none\n\n--- Page 2 ---\ntwo\n\n", text)
}

func TestConverterConfigDefaults(t *testing.T) {
	c := NewConverter(Config{})
	cfg := c.Config()
	assert.Equal(t, DefaultEngine, cfg.Engine)
	assert.Equal(t, DefaultLanguage, cfg.Lang)
	assert.Equal(t, DefaultDPI, cfg.DPI)
	assert.False(t, cfg.UseGPU)

	assert.True(t, NewConverter(NewConfig()).Config().UseGPU)
	assert.False(t, NewConverter(NewConfig(WithGPU(false))).Config().UseGPU)
}
