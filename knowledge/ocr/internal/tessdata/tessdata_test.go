//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package tessdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLanguages(t *testing.T) {
	assert.Equal(t, []string{"tha", "eng"}, SplitLanguages("tha+eng"))
	assert.Equal(t, []string{"eng"}, SplitLanguages(" eng "))
	assert.Nil(t, SplitLanguages(""))
	assert.Equal(t, []string{"a", "b"}, SplitLanguages("a++b+"))
}

func TestFind(t *testing.T) {
	empty := t.TempDir()
	withTha := t.TempDir()
	withEng := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(withTha, "tha.traineddata"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(withEng, "eng.traineddata"), []byte("x"), 0o644))
	candidates := []string{filepath.Join(empty, "missing"), empty, withTha, withEng}

	assert.Equal(t, withTha, Find("tha+eng", candidates))
	assert.Equal(t, withEng, Find("eng+tha", candidates))
	assert.Equal(t, "", Find("jpn", candidates))
	assert.Equal(t, "", Find("", candidates))
}

func TestParseList(t *testing.T) {
	out := "List of available languages in \"/usr/share/tessdata/\" (3):\neng\nosd\ntha\n"
	assert.Equal(t, []string{"eng", "osd", "tha"}, ParseList(out))
	assert.Nil(t, ParseList(""))
}

func TestMissing(t *testing.T) {
	assert.Nil(t, Missing("eng+tha", []string{"eng", "tha"}))
	assert.Equal(t, []string{"tha"}, Missing("eng+tha", []string{"eng"}))
}

func TestInstallHint(t *testing.T) {
	hint := InstallHint([]string{"tha"}, "/usr/bin/tesseract", "")
	assert.Contains(t, hint, "brew install tesseract-lang")
	assert.Contains(t, hint, "apt-get install tesseract-ocr-tha")
	assert.Contains(t, hint, "github.com/tesseract-ocr/tessdata")
	assert.Contains(t, hint, "/usr/bin/tesseract")
	assert.Contains(t, hint, "(tesseract default)")
}
