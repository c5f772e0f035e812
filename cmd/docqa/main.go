//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package main is the docqa command: ingest documents, OCR scanned PDFs
// and ask questions about them.
package main

func main() {
	Execute()
}
