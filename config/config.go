//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads docqa settings from defaults, a YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-docqa-go/knowledge/ocr"
	"trpc.group/trpc-go/trpc-docqa-go/knowledge/pdf"
)

// Vector store backends.
const (
	VectorStoreSQLite   = "sqlite"
	VectorStorePGVector = "pgvector"
)

// Chat and embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Defaults.
const (
	DefaultDBDir        = "db"
	DefaultVectorStore  = VectorStoreSQLite
	DefaultProvider     = ProviderOpenAI
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultWorkers      = 1
	DefaultLogLevel     = "info"
	DefaultEnvFile      = ".env"
)

// ErrConfigNotFound is returned when an explicitly named config file is missing.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config is the full docqa configuration.
type Config struct {
	DBDir        string    `yaml:"db_dir"`
	VectorStore  string    `yaml:"vector_store"`
	PostgresDSN  string    `yaml:"postgres_dsn"`
	Provider     string    `yaml:"provider"`
	EmbedModel   string    `yaml:"embed_model"`
	ChatModel    string    `yaml:"chat_model"`
	APIKey       string    `yaml:"api_key"`
	BaseURL      string    `yaml:"base_url"`
	ChunkSize    int       `yaml:"chunk_size"`
	ChunkOverlap int       `yaml:"chunk_overlap"`
	Workers      int       `yaml:"workers"`
	LogLevel     string    `yaml:"log_level"`
	LogFormat    string    `yaml:"log_format"`
	OCR          OCR       `yaml:"ocr"`
	Telemetry    Telemetry `yaml:"telemetry"`
}

// OCR holds the recognition settings used during ingestion.
type OCR struct {
	Enabled      bool   `yaml:"enabled"`
	Engine       string `yaml:"engine"`
	Lang         string `yaml:"lang"`
	DPI          int    `yaml:"dpi"`
	GPU          bool   `yaml:"gpu"`
	TesseractCmd string `yaml:"tesseract_cmd"`
	TessdataDir  string `yaml:"tessdata_dir"`
	Renderer     string `yaml:"renderer"`
	Model        string `yaml:"model"`
	Host         string `yaml:"host"`
}

// Telemetry configures OTLP export. An empty endpoint disables it.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPProtocol string `yaml:"otlp_protocol"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBDir:        DefaultDBDir,
		VectorStore:  DefaultVectorStore,
		Provider:     DefaultProvider,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Workers:      DefaultWorkers,
		LogLevel:     DefaultLogLevel,
		LogFormat:    "console",
		OCR: OCR{
			Engine:   ocr.DefaultEngine,
			Lang:     ocr.DefaultLanguage,
			DPI:      ocr.DefaultDPI,
			GPU:      true,
			Renderer: pdf.DefaultRasterizer,
		},
		Telemetry: Telemetry{OTLPProtocol: "grpc"},
	}
}

// Load builds a Config. path names an optional YAML file; when it is empty
// no file is read. envFile names a dotenv file; empty means DefaultEnvFile,
// which may be absent. Variables already set in the environment are never
// overridden by the dotenv file.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func loadEnvFile(envFile string) error {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	if _, err := os.Stat(envFile); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DBDir, "DOCQA_DB_DIR")
	setString(&c.VectorStore, "DOCQA_VECTOR_STORE")
	setString(&c.PostgresDSN, "DOCQA_POSTGRES_DSN")
	setString(&c.Provider, "DOCQA_PROVIDER")
	setString(&c.EmbedModel, "DOCQA_EMBED_MODEL")
	setString(&c.ChatModel, "DOCQA_CHAT_MODEL")
	setString(&c.LogLevel, "DOCQA_LOG_LEVEL")
	setString(&c.LogFormat, "DOCQA_LOG_FORMAT")
	setString(&c.OCR.Engine, "DOCQA_OCR_ENGINE")
	setString(&c.OCR.Lang, "DOCQA_OCR_LANG")
	setString(&c.OCR.TesseractCmd, "DOCQA_TESSERACT_CMD")
	setString(&c.OCR.TessdataDir, "DOCQA_TESSDATA_DIR")
	setString(&c.OCR.Renderer, "DOCQA_OCR_RENDERER")
	setString(&c.OCR.Model, "DOCQA_OCR_MODEL")
	setString(&c.Telemetry.OTLPEndpoint, "DOCQA_OTLP_ENDPOINT")
	setString(&c.Telemetry.OTLPProtocol, "DOCQA_OTLP_PROTOCOL")
	setString(&c.OCR.Host, "OLLAMA_HOST")

	switch c.Provider {
	case ProviderOpenAI:
		setString(&c.APIKey, "OPENAI_API_KEY")
		setString(&c.BaseURL, "OPENAI_BASE_URL")
	case ProviderGemini:
		setString(&c.APIKey, "GEMINI_API_KEY")
	case ProviderOllama:
		setString(&c.BaseURL, "OLLAMA_HOST")
	}
	setString(&c.APIKey, "DOCQA_API_KEY")
	setString(&c.BaseURL, "DOCQA_BASE_URL")

	for key, dst := range map[string]*int{
		"DOCQA_CHUNK_SIZE":    &c.ChunkSize,
		"DOCQA_CHUNK_OVERLAP": &c.ChunkOverlap,
		"DOCQA_WORKERS":       &c.Workers,
		"DOCQA_OCR_DPI":       &c.OCR.DPI,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"DOCQA_OCR":     &c.OCR.Enabled,
		"DOCQA_OCR_GPU": &c.OCR.GPU,
	} {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	*dst = b
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.VectorStore {
	case VectorStoreSQLite:
		if c.DBDir == "" {
			errs = append(errs, errors.New("db_dir is required for the sqlite vector store"))
		}
	case VectorStorePGVector:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres_dsn is required for the pgvector vector store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vector_store %q (supported: %s, %s)",
			c.VectorStore, VectorStoreSQLite, VectorStorePGVector))
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (supported: %s, %s, %s)",
			c.Provider, ProviderOpenAI, ProviderOllama, ProviderGemini))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.OCR.DPI <= 0 {
		errs = append(errs, fmt.Errorf("ocr.dpi must be positive, got %d", c.OCR.DPI))
	}
	switch c.Telemetry.OTLPProtocol {
	case "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("unknown telemetry.otlp_protocol %q", c.Telemetry.OTLPProtocol))
	}
	return errors.Join(errs...)
}

// OCRConfig converts the OCR section into an ocr.Config.
func (c *Config) OCRConfig() ocr.Config {
	return ocr.NewConfig(
		ocr.WithEngine(c.OCR.Engine),
		ocr.WithLanguage(c.OCR.Lang),
		ocr.WithDPI(c.OCR.DPI),
		ocr.WithGPU(c.OCR.GPU),
		ocr.WithBinaryPath(c.OCR.TesseractCmd),
		ocr.WithLanguageDataDir(c.OCR.TessdataDir),
		ocr.WithRasterizer(c.OCR.Renderer),
		ocr.WithModel(c.OCR.Model),
		ocr.WithHost(c.OCR.Host),
	)
}
