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
	"errors"
	"fmt"
)

// ErrConfig is the root of every engine configuration failure.
var ErrConfig = errors.New("ocr configuration error")

// Configuration failures. All of them match ErrConfig with errors.Is.
var (
	ErrUnsupportedEngine    = fmt.Errorf("%w: unsupported OCR engine", ErrConfig)
	ErrBinaryNotFound       = fmt.Errorf("%w: OCR executable not found", ErrConfig)
	ErrLanguageNotInstalled = fmt.Errorf("%w: OCR language data not installed", ErrConfig)
	ErrBackendUnavailable   = fmt.Errorf("%w: OCR backend unavailable", ErrConfig)
)

// ErrPDFNotFound is returned when the input PDF does not exist.
var ErrPDFNotFound = errors.New("PDF file not found")
