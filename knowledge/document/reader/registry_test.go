//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package reader

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
)

type echoReader struct {
	config *Config
}

func (r *echoReader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return r.config.Apply([]*document.Document{{ID: "id", Name: name, Content: string(data)}})
}

func (r *echoReader) ReadFromFile(path string) ([]*document.Document, error) {
	return ReadFile(r, path)
}

func (r *echoReader) Name() string                  { return "EchoReader" }
func (r *echoReader) SupportedExtensions() []string { return []string{".foo"} }

func newEcho(opts ...Option) Reader { return &echoReader{config: NewConfig(opts...)} }

func TestRegistryRegisterAndLookup(t *testing.T) {
	RegisterReader([]string{".FOO"}, newEcho)
	t.Cleanup(func() { readers.remove(".foo") })

	_, ok := readers.lookup("foo")
	assert.True(t, ok)
	readers.mu.RLock()
	_, okUpper := readers.builders[".FOO"]
	readers.mu.RUnlock()
	assert.False(t, okUpper)

	assert.Contains(t, GetRegisteredExtensions(), ".foo")

	r, ok := ForPath("/data/File.Foo")
	require.True(t, ok)
	assert.Equal(t, "EchoReader", r.Name())

	_, ok = GetReader(".bar")
	assert.False(t, ok)
}

func TestConfigApplyChunks(t *testing.T) {
	r := newEcho(WithChunkSize(10), WithChunkOverlap(0))
	docs, err := r.ReadFromReader("x", strings.NewReader("alpha beta gamma delta"))
	require.NoError(t, err)
	assert.Greater(t, len(docs), 1)

	r = newEcho(WithChunk(false))
	docs, err = r.ReadFromReader("x", strings.NewReader("alpha beta gamma delta"))
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	r = newEcho()
	docs, err = r.ReadFromReader("x", strings.NewReader("   "))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.True(t, c.Chunk)
	assert.Equal(t, 200, c.chunkOverlap())
	assert.NotNil(t, c.ChunkingStrategy())

	c = NewConfig(WithChunkSize(500))
	assert.Equal(t, 0, c.chunkOverlap())
}

type fixedStrategy struct{}

func (fixedStrategy) Chunk(doc *document.Document) ([]*document.Document, error) {
	return []*document.Document{doc, doc}, nil
}

func TestCustomStrategy(t *testing.T) {
	r := newEcho(WithCustomChunkingStrategy(fixedStrategy{}))
	docs, err := r.ReadFromReader("x", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestReadFileMissing(t *testing.T) {
	_, err := newEcho().ReadFromFile("/definitely/not/here.foo")
	assert.Error(t, err)
}
