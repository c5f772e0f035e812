//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package metric exports OCR and ingestion counters over OTLP.
package metric

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	itelemetry "trpc.group/trpc-go/trpc-docqa-go/internal/telemetry"
)

// Metric names.
const (
	MetricOCRPages        = "docqa.ocr.pages"
	MetricOCRPageDuration = "docqa.ocr.page.duration"
	MetricIngestFiles     = "docqa.ingest.files"
	MetricIngestChunks    = "docqa.ingest.chunks"
	AttrEngine            = "ocr.engine"
	AttrRecognized        = "ocr.recognized"
	AttrFileType          = "file.type"
	AttrSuccess           = "success"
)

var (
	ocrPages        metric.Int64Counter     = noop.Int64Counter{}
	ocrPageDuration metric.Float64Histogram = noop.Float64Histogram{}
	ingestFiles     metric.Int64Counter     = noop.Int64Counter{}
	ingestChunks    metric.Int64Counter     = noop.Int64Counter{}
)

// InitMeterProvider creates the instruments on mp.
func InitMeterProvider(mp metric.MeterProvider) error {
	if mp == nil {
		return fmt.Errorf("meter provider is nil")
	}
	meter := mp.Meter(itelemetry.InstrumentName)
	var err error
	if ocrPages, err = meter.Int64Counter(MetricOCRPages,
		metric.WithDescription("Pages sent to a recognition engine"),
		metric.WithUnit("{page}"),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", MetricOCRPages, err)
	}
	if ocrPageDuration, err = meter.Float64Histogram(MetricOCRPageDuration,
		metric.WithDescription("Render plus recognition time per page"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", MetricOCRPageDuration, err)
	}
	if ingestFiles, err = meter.Int64Counter(MetricIngestFiles,
		metric.WithDescription("Files processed by ingestion"),
		metric.WithUnit("{file}"),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", MetricIngestFiles, err)
	}
	if ingestChunks, err = meter.Int64Counter(MetricIngestChunks,
		metric.WithDescription("Chunks stored by ingestion"),
		metric.WithUnit("{chunk}"),
	); err != nil {
		return fmt.Errorf("failed to create metric %s: %w", MetricIngestChunks, err)
	}
	return nil
}

// RecordOCRPage counts one page handled by engine.
func RecordOCRPage(ctx context.Context, engine string, recognized bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrEngine, engine),
		attribute.Bool(AttrRecognized, recognized),
	)
	ocrPages.Add(ctx, 1, attrs)
	ocrPageDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordIngestedFile counts one file and the chunks it produced.
func RecordIngestedFile(ctx context.Context, fileType string, success bool, chunks int) {
	attrs := metric.WithAttributes(
		attribute.String(AttrFileType, fileType),
		attribute.Bool(AttrSuccess, success),
	)
	ingestFiles.Add(ctx, 1, attrs)
	if chunks > 0 {
		ingestChunks.Add(ctx, int64(chunks), metric.WithAttributes(attribute.String(AttrFileType, fileType)))
	}
}

// Start installs an OTLP meter provider and creates the instruments on it.
// The returned function flushes and shuts the provider down.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	o := &options{protocol: itelemetry.ProtocolGRPC}
	for _, opt := range opts {
		opt(o)
	}
	if o.metricsEndpoint == "" {
		o.metricsEndpoint = metricsEndpoint(o.protocol)
	}

	res, err := itelemetry.NewResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch o.protocol {
	case itelemetry.ProtocolHTTP:
		exporter, err = otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(o.metricsEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		conn, cerr := itelemetry.NewGRPCConn(o.metricsEndpoint)
		if cerr != nil {
			return nil, cerr
		}
		exporter, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	if err := InitMeterProvider(provider); err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	otel.SetMeterProvider(provider)

	return func() error {
		return provider.Shutdown(context.Background())
	}, nil
}

func metricsEndpoint(protocol string) string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if protocol == itelemetry.ProtocolHTTP {
		return "localhost:4318"
	}
	return "localhost:4317"
}

// Option configures Start.
type Option func(*options)

type options struct {
	metricsEndpoint string
	protocol        string
}

// WithEndpoint sets the collector address as host:port.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.metricsEndpoint = endpoint
	}
}

// WithProtocol selects "grpc" (default) or "http".
func WithProtocol(protocol string) Option {
	return func(o *options) {
		if protocol != "" {
			o.protocol = protocol
		}
	}
}
