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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// NewOCRCmd creates the ocr command.
func NewOCRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr PDF",
		Short: "Convert a scanned PDF to text",
		Long: `OCR renders every page of a PDF, recognizes its text and writes the pages
separated by "--- Page N ---" markers. Without -o the output is written
next to the PDF with a .txt extension; use -o - to print it instead.`,
		Args: cobra.ExactArgs(1),
		RunE: runOCRCmd,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output text file, or - for stdout")
	f.String("engine", ocr.DefaultEngine, "OCR engine: "+strings.Join(ocr.Engines(), ", "))
	f.String("lang", ocr.DefaultLanguage, "language codes, e.g. 'eng' or 'tha+eng'")
	f.Int("dpi", ocr.DefaultDPI, "rendering resolution")
	f.String("tesseract-cmd", "", "path to the tesseract executable (if not in PATH)")
	f.String("tessdata-dir", "", "directory containing tesseract language data files")
	f.Bool("gpu", true, "use a GPU (easyocr only)")
	f.String("renderer", pdf.DefaultRasterizer, "PDF page renderer: fitz, gs")
	f.String("model", "", "neural recognition model (easyocr only)")
	return cmd
}

func runOCRCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideString(cmd, "engine", &cfg.OCR.Engine)
	overrideString(cmd, "lang", &cfg.OCR.Lang)
	overrideInt(cmd, "dpi", &cfg.OCR.DPI)
	overrideString(cmd, "tesseract-cmd", &cfg.OCR.TesseractCmd)
	overrideString(cmd, "tessdata-dir", &cfg.OCR.TessdataDir)
	overrideBool(cmd, "gpu", &cfg.OCR.GPU)
	overrideString(cmd, "renderer", &cfg.OCR.Renderer)
	overrideString(cmd, "model", &cfg.OCR.Model)

	ctx := cmd.Context()
	defer startTelemetry(ctx, cfg)()

	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	toStdout := output == "-"
	switch {
	case toStdout:
		output = ""
	case output == "":
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".txt"
	}

	text, err := ocr.NewConverter(cfg.OCRConfig()).Convert(ctx, input, output)
	if err != nil {
		return err
	}
	if toStdout {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	log.Infof("OCR complete: %s", output)
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
