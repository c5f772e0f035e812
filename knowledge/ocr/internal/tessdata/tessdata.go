//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package tessdata locates Tesseract language data and explains how to
// install what is missing.
package tessdata

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Candidates are the directories searched when no data directory is configured.
var Candidates = []string{
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
	"/opt/tesseract/share/tessdata",
	"/usr/share/tesseract-ocr/tessdata",
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	`C:\Program Files\Tesseract-OCR\tessdata`,
}

// SplitLanguages splits a "+" joined language string into codes.
func SplitLanguages(lang string) []string {
	var codes []string
	for _, code := range strings.Split(lang, "+") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Find returns the first directory in candidates that holds
// <lang>.traineddata for the first language of lang, or "".
func Find(lang string, candidates []string) string {
	codes := SplitLanguages(lang)
	if len(codes) == 0 {
		return ""
	}
	for _, dir := range candidates {
		if info, err := os.Stat(filepath.Join(dir, codes[0]+".traineddata")); err == nil && !info.IsDir() {
			return dir
		}
	}
	return ""
}

// ParseList parses the output of `tesseract --list-langs`. The first line is
// a header such as `List of available languages in "/usr/share/tessdata/" (3):`.
func ParseList(output string) []string {
	var langs []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of available languages") {
			continue
		}
		langs = append(langs, line)
	}
	return langs
}

// Missing returns the codes of lang that are not in available.
func Missing(lang string, available []string) []string {
	var missing []string
	for _, code := range SplitLanguages(lang) {
		if !slices.Contains(available, code) {
			missing = append(missing, code)
		}
	}
	return missing
}

// InstallHint describes how to install the missing language packs.
func InstallHint(missing []string, binary, dataDir string) string {
	if dataDir == "" {
		dataDir = "(tesseract default)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tesseract language data not installed: %s\n", strings.Join(missing, ", "))
	sb.WriteString("Install the language packs:\n")
	sb.WriteString("  macOS:         brew install tesseract-lang\n")
	for _, code := range missing {
		fmt.Fprintf(&sb, "  Debian/Ubuntu: sudo apt-get install tesseract-ocr-%s\n", code)
	}
	sb.WriteString("  Windows:       download <code>.traineddata from https://github.com/tesseract-ocr/tessdata ")
	sb.WriteString("into the tessdata directory\n")
	fmt.Fprintf(&sb, "Current Tesseract executable: %s\n", binary)
	fmt.Fprintf(&sb, "Current tessdata directory: %s", dataDir)
	return sb.String()
}
