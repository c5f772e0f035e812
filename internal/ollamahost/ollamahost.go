//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package ollamahost resolves the address of an Ollama runtime and builds
// API clients for it.
package ollamahost

import (
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/ollama/ollama/api"
)

// EnvHost is the environment variable holding the Ollama address.
const EnvHost = "OLLAMA_HOST"

// DefaultHost is used when neither an explicit host nor EnvHost is set.
const DefaultHost = "http://localhost:11434"

// Resolve turns host (or $OLLAMA_HOST, or DefaultHost) into a base URL.
// Bare host names default to http, missing ports to 11434 for bare hosts
// and to the scheme port otherwise.
func Resolve(host string) *url.URL {
	if host == "" {
		host = os.Getenv(EnvHost)
	}
	if host == "" {
		host = DefaultHost
	}

	defaultPort := "11434"
	s := strings.TrimSpace(host)
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
		if s == "ollama.com" {
			scheme, hostport = "https", "ollama.com:443"
		}
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	h, port, err := net.SplitHostPort(hostport)
	if err != nil {
		h, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			h = ip.String()
		} else if hostport != "" {
			h = hostport
		}
	}
	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(h, port),
		Path:   path,
	}
}

// NewClient returns an API client for host. A nil httpClient means
// http.DefaultClient.
func NewClient(host string, httpClient *http.Client) *api.Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return api.NewClient(Resolve(host), httpClient)
}
