//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func restore(t *testing.T) {
	t.Helper()
	oldDefault, oldContext, oldOutput, oldFormat := Default, ContextDefault, output, format
	t.Cleanup(func() {
		Default, ContextDefault, output, format = oldDefault, oldContext, oldOutput, oldFormat
		SetLevel(LevelInfo)
	})
}

func TestSetLevel(t *testing.T) {
	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"DEBUG", zapcore.DebugLevel},
		{" warn ", zapcore.WarnLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	t.Cleanup(func() { SetLevel(LevelInfo) })

	for _, c := range cases {
		SetLevel(c.in)
		if got := level.Level(); got != c.expected {
			t.Fatalf("SetLevel(%q) = %v; want %v", c.in, got, c.expected)
		}
	}
}

func TestSetOutputRespectsLevel(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelError)
	Infof("hidden")
	Errorf("page %d rendered blank", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at error level: %q", out)
	}
	if !strings.Contains(out, "page 3 rendered blank") {
		t.Fatalf("error line missing: %q", out)
	}
}

func TestSetFormatJSON(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat("JSON")
	Warnf("skipping %s", "a.png")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "skipping a.png" || line["lvl"] != "warn" {
		t.Fatalf("unexpected JSON line: %v", line)
	}

	buf.Reset()
	SetFormat("anything")
	Warnf("plain")
	if json.Valid(buf.Bytes()) {
		t.Fatalf("console format should not emit JSON: %q", buf.String())
	}
}

func TestCallerIsTheLoggingSite(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(FormatJSON)
	Infof("plain helper")
	InfofContext(context.Background(), "context helper")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	for _, l := range lines {
		var line map[string]any
		if err := json.Unmarshal([]byte(l), &line); err != nil {
			t.Fatalf("invalid JSON line %q: %v", l, err)
		}
		caller, _ := line["caller"].(string)
		if !strings.HasPrefix(caller, "log/level_test.go:") {
			t.Fatalf("%v: caller = %q; want the test file", line["message"], caller)
		}
	}
}
