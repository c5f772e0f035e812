//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package main

// Recognition engines selectable with --engine and --ocr-engine.
import (
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/easyocr"
	_ "trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr/tesseract"
)
