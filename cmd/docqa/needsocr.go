//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// NewNeedsOCRCmd creates the needs-ocr command.
func NewNeedsOCRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "needs-ocr PDF",
		Short: "Report whether a PDF needs OCR",
		Long: `needs-ocr samples the first pages of a PDF and prints "true" when they
carry too little embedded text to index without OCR. A PDF that cannot be
read prints "false".`,
		Args: cobra.ExactArgs(1),
		RunE: runNeedsOCRCmd,
	}
}

func runNeedsOCRCmd(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	doc, err := pdf.Open(args[0])
	if err != nil {
		log.Warnf("Error checking if PDF needs OCR: %v", err)
		fmt.Fprintln(out, false)
		return nil
	}
	defer doc.Close()

	in, err := ocr.Inspect(doc)
	if err != nil {
		log.Warnf("Error checking if PDF needs OCR: %v", err)
		fmt.Fprintln(out, false)
		return nil
	}
	log.Infof("%s: %s", args[0], in.Reason)
	fmt.Fprintln(out, in.NeedsOCR)
	return nil
}
