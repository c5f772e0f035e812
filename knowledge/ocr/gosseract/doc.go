//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package gosseract recognizes page images with libtesseract linked into the
// process through cgo. It registers itself as the "gosseract" engine when
// built with the gosseract tag:
//
//	go build -tags gosseract ./cmd/docqa
//
// Building with the tag requires libtesseract and leptonica headers, e.g.
// apt-get install libtesseract-dev libleptonica-dev.
package gosseract

// Name is the registered engine name.
const Name = "gosseract"
