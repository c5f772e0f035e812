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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/config"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-docqa-go/model"
)

func fileDoc(content, source string) *document.Document {
	return &document.Document{
		ID:       source + "#" + content,
		Name:     filepath.Base(source),
		Content:  content,
		Metadata: map[string]any{document.MetaSource: source},
	}
}

type fakeLoader struct {
	fail map[string]bool
}

func (l *fakeLoader) Load(_ context.Context, path string) ([]*document.Document, error) {
	if l.fail[filepath.Base(path)] {
		return nil, errors.New("boom")
	}
	return []*document.Document{
		fileDoc("first chunk of "+path, path),
		fileDoc("second chunk of "+path, path),
	}, nil
}

type fakeKnowledge struct {
	mu      sync.Mutex
	sources map[string]int
	results []*vectorstore.ScoredDocument
	queries []string
}

func (k *fakeKnowledge) ReplaceSource(_ context.Context, source string, docs []*document.Document) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sources == nil {
		k.sources = make(map[string]int)
	}
	removed := k.sources[source]
	k.sources[source] = len(docs)
	return removed, nil
}

func (k *fakeKnowledge) Search(_ context.Context, query string, limit int) ([]*vectorstore.ScoredDocument, error) {
	k.queries = append(k.queries, query)
	if limit < len(k.results) {
		return k.results[:limit], nil
	}
	return k.results, nil
}

type fakeModel struct {
	request *model.Request
}

func (m *fakeModel) Name() string { return "fake" }

func (m *fakeModel) GenerateContent(_ context.Context, req *model.Request) (*model.Response, error) {
	m.request = req
	return &model.Response{Content: "  forty-two \n", Usage: &model.Usage{TotalTokens: 7}}, nil
}

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return dir
}

func TestCollectFiles(t *testing.T) {
	dir := makeTree(t, "a.txt", "b.md", "image.png", "sub/c.pdf")

	summary := CollectFiles([]string{
		dir,
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "image.png"),
		filepath.Join(dir, "missing.txt"),
	}, IngestOptions{Recursive: true})

	var got []string
	for _, f := range summary.Files {
		got = append(got, filepath.Base(f.Path))
	}
	assert.Equal(t, []string{"a.txt", "b.md", "c.pdf"}, got)
	assert.Equal(t, []string{filepath.Join(dir, "image.png")}, summary.Skipped)
	assert.Equal(t, []string{filepath.Join(dir, "missing.txt")}, summary.Missing)
}

func TestCollectFilesNotRecursive(t *testing.T) {
	dir := makeTree(t, "a.txt", "sub/c.pdf")
	summary := CollectFiles([]string{dir}, IngestOptions{})
	require.Len(t, summary.Files, 1)
	assert.Equal(t, "a.txt", filepath.Base(summary.Files[0].Path))
}

func TestCollectFilesBadPattern(t *testing.T) {
	dir := makeTree(t, "a.txt")
	summary := CollectFiles([]string{dir}, IngestOptions{Include: []string{"["}})
	assert.Empty(t, summary.Files)
	require.Len(t, summary.ScanErrors, 1)
}

func TestIngestIsolatesFailures(t *testing.T) {
	dir := makeTree(t, "a.txt", "b.txt", "c.txt", "d.md")
	kb := &fakeKnowledge{}
	var (
		mu       sync.Mutex
		progress []int
	)
	svc := New(
		WithLoader(&fakeLoader{fail: map[string]bool{"b.txt": true}}),
		WithKnowledge(kb),
		WithWorkers(3),
		WithProgress(func(done, total int, _ FileResult) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 4, total)
			progress = append(progress, done)
		}),
	)

	summary, err := svc.Ingest(context.Background(), []string{dir}, IngestOptions{Recursive: true})
	require.NoError(t, err)
	require.Len(t, summary.Files, 4)
	assert.Equal(t, 3, summary.Succeeded())
	assert.Equal(t, 6, summary.Chunks())
	for _, f := range summary.Files {
		if filepath.Base(f.Path) == "b.txt" {
			assert.ErrorContains(t, f.Err, "failed to load")
			assert.Zero(t, f.Chunks)
		} else {
			assert.NoError(t, f.Err)
		}
	}
	sort.Ints(progress)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)
	assert.Len(t, kb.sources, 3)
}

func TestIngestReplacesPreviousChunks(t *testing.T) {
	dir := makeTree(t, "a.txt")
	kb := &fakeKnowledge{}
	svc := New(WithLoader(&fakeLoader{}), WithKnowledge(kb))

	_, err := svc.Ingest(context.Background(), []string{dir}, IngestOptions{})
	require.NoError(t, err)
	summary, err := svc.Ingest(context.Background(), []string{dir}, IngestOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, 2, summary.Files[0].Replaced)
}

func TestIngestCancelled(t *testing.T) {
	dir := makeTree(t, "a.txt", "b.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := New(WithLoader(&fakeLoader{}), WithKnowledge(&fakeKnowledge{}))

	summary, err := svc.Ingest(ctx, []string{dir}, IngestOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Succeeded())
	for _, f := range summary.Files {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
}

func TestIngestRequiresDependencies(t *testing.T) {
	_, err := New().Ingest(context.Background(), []string{"x"}, IngestOptions{})
	assert.Error(t, err)
}

func scored(content, source string, score float64) *vectorstore.ScoredDocument {
	return &vectorstore.ScoredDocument{
		Document: fileDoc(content, source),
		Score:    score,
	}
}

func TestQueryRaw(t *testing.T) {
	kb := &fakeKnowledge{results: []*vectorstore.ScoredDocument{
		scored("alpha", "a.txt", 0.9),
		scored("beta", "b.txt", 0.8),
	}}
	svc := New(WithKnowledge(kb))

	answer, err := svc.Query(context.Background(), "  what?  ", 0, true)
	require.NoError(t, err)
	assert.Len(t, answer.Chunks, 2)
	assert.Empty(t, answer.Text)
	assert.Equal(t, []string{"what?"}, kb.queries)
}

func TestQueryAnswer(t *testing.T) {
	kb := &fakeKnowledge{results: []*vectorstore.ScoredDocument{scored("the answer is 42", "a.txt", 0.9)}}
	m := &fakeModel{}
	svc := New(WithKnowledge(kb), WithModel(m))

	answer, err := svc.Query(context.Background(), "what is the answer?", 4, false)
	require.NoError(t, err)
	assert.Equal(t, "forty-two", answer.Text)
	assert.Equal(t, 7, answer.Usage.TotalTokens)

	require.NotNil(t, m.request)
	require.Len(t, m.request.Messages, 2)
	assert.Equal(t, model.RoleSystem, m.request.Messages[0].Role)
	assert.Contains(t, m.request.Messages[0].Content, "don't know")
	user := m.request.Messages[1].Content
	assert.Contains(t, user, "the answer is 42")
	assert.Contains(t, user, "a.txt")
	assert.True(t, strings.HasSuffix(user, "Question: what is the answer?"))
}

func TestQueryErrors(t *testing.T) {
	svc := New(WithKnowledge(&fakeKnowledge{}))
	_, err := svc.Query(context.Background(), "q", 4, false)
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = svc.Query(context.Background(), "   ", 4, true)
	assert.Error(t, err)

	_, err = New().Query(context.Background(), "q", 4, true)
	assert.Error(t, err)
}

func TestBuildMessagesWithoutChunks(t *testing.T) {
	msgs := BuildMessages(nil, "q")
	assert.Contains(t, msgs[1].Content, "no relevant documents found")
}

func TestOpenStoreMissingDatabase(t *testing.T) {
	cfg := config.Default()
	cfg.DBDir = filepath.Join(t.TempDir(), "db")

	_, err := OpenStore(context.Background(), cfg, 0, false)
	assert.ErrorIs(t, err, ErrNoDatabase)

	store, err := OpenStore(context.Background(), cfg, 0, true)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenStore(context.Background(), cfg, 0, false)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpenStoreUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.VectorStore = "faiss"
	_, err := OpenStore(context.Background(), cfg, 0, true)
	assert.Error(t, err)
}

func TestNewModelAndEmbedder(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderOllama
	cfg.BaseURL = "http://localhost:11434"

	m, err := NewModel(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, m.Name())

	e, err := NewEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	assert.Positive(t, e.GetDimensions())
}
