//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package ocr

// Engine names.
const (
	EngineTesseract = "tesseract"
	EngineEasyOCR   = "easyocr"
)

// Defaults.
const (
	DefaultEngine   = EngineTesseract
	DefaultLanguage = "eng"
	DefaultDPI      = 300
)

// Config selects and configures a recognition engine.
type Config struct {
	// Engine is the engine name, matched case-insensitively.
	Engine string
	// Lang is a "+" joined list of three letter language codes, e.g. "tha+eng".
	Lang string
	// DPI is the rendering resolution.
	DPI int
	// UseGPU lets the neural engine use a GPU. It is not a defaulted field:
	// a Config literal leaves it off, DefaultConfig and NewConfig turn it on.
	UseGPU bool
	// BinaryPath is the tesseract executable. Empty means PATH lookup.
	BinaryPath string
	// LanguageDataDir is the tessdata directory. Empty means auto-discovery.
	LanguageDataDir string
	// Rasterizer names the PDF page rasterizer. Empty means the default.
	Rasterizer string
	// Model is the neural recognition model.
	Model string
	// Host is the neural runtime address. Empty means OLLAMA_HOST or its default.
	Host string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Engine: DefaultEngine,
		Lang:   DefaultLanguage,
		DPI:    DefaultDPI,
		UseGPU: true,
	}
}

// NewConfig applies opts on top of DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// withDefaults fills the zero string and numeric fields. UseGPU is kept.
func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.Lang == "" {
		c.Lang = DefaultLanguage
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	return c
}

// Option configures a Config.
type Option func(*Config)

// WithEngine selects the engine by name.
func WithEngine(name string) Option {
	return func(c *Config) {
		c.Engine = name
	}
}

// WithLanguage sets the recognition languages, e.g. "eng" or "tha+eng".
func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.Lang = lang
	}
}

// WithDPI sets the rendering resolution. Non-positive values are ignored.
func WithDPI(dpi int) Option {
	return func(c *Config) {
		if dpi > 0 {
			c.DPI = dpi
		}
	}
}

// WithGPU enables or disables GPU use by the neural engine.
func WithGPU(enabled bool) Option {
	return func(c *Config) {
		c.UseGPU = enabled
	}
}

// WithBinaryPath sets the tesseract executable.
func WithBinaryPath(path string) Option {
	return func(c *Config) {
		c.BinaryPath = path
	}
}

// WithLanguageDataDir sets the tessdata directory.
func WithLanguageDataDir(dir string) Option {
	return func(c *Config) {
		c.LanguageDataDir = dir
	}
}

// WithRasterizer selects the PDF page rasterizer.
func WithRasterizer(name string) Option {
	return func(c *Config) {
		c.Rasterizer = name
	}
}

// WithModel sets the neural recognition model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithHost sets the neural runtime address.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}
