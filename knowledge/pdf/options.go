//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package pdf

// options holds the configuration for Open.
type options struct {
	rasterizer string
}

// Option configures Open.
type Option func(*options)

// WithRasterizer selects the page rasterizer by name (see RasterizerNames).
// Unknown names surface as an error on the first RenderPage call.
func WithRasterizer(name string) Option {
	return func(o *options) {
		if name != "" {
			o.rasterizer = name
		}
	}
}
