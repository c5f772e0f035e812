//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds constants and helpers shared by the trace and
// metric packages.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Service identity reported on every span and metric.
const (
	ServiceName      = "docqa"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-docqa-go"
	InstrumentName   = "trpc.group/trpc-go/trpc-docqa-go"
)

// OTLP transport protocols.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// grpcDial is swapped in tests.
var grpcDial = grpc.NewClient

// NewGRPCConn creates a plaintext gRPC connection to an OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpcDial(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}

// NewResource describes this process for exporters.
func NewResource(ctx context.Context, attrs ...attribute.KeyValue) (*resource.Resource, error) {
	opts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceNamespace(ServiceNamespace),
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	}
	if len(attrs) > 0 {
		opts = append(opts, resource.WithAttributes(attrs...))
	}
	return resource.New(ctx, opts...)
}
