//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package csv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/document/reader"
)

func TestCSVReader_Rows(t *testing.T) {
	input := "name, city\nAlice,Bangkok\nBob,\"Chiang Mai\",extra\n"
	docs, err := New(reader.WithChunk(false)).ReadFromReader("people.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	want := "name: Alice\ncity: Bangkok\n\nname: Bob\ncity: Chiang Mai\ncolumn_3: extra"
	assert.Equal(t, want, docs[0].Content)
	assert.Equal(t, "csv", docs[0].Metadata[document.MetaFileType])
}

func TestCSVReader_HeaderOnly(t *testing.T) {
	docs, err := New().ReadFromReader("h.csv", strings.NewReader("a,b,c\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a, b, c", docs[0].Content)
}

func TestCSVReader_Empty(t *testing.T) {
	docs, err := New().ReadFromReader("e.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCSVReader_Registered(t *testing.T) {
	r, ok := reader.ForPath("/tmp/data.CSV")
	require.True(t, ok)
	assert.Equal(t, "CSVReader", r.Name())
}
