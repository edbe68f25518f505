// Copyright (c) Weftworks. All rights reserved.

package oai

import (
	"net/http"
	"os"

	"github.com/weftworks/loom"
)

// Environment variables consulted when no explicit option is given.
const (
	envAPIKey  = "OPENAI_API_KEY"
	envBaseURL = "OPENAI_BASE_URL"
)

// clientConfig holds resolved configuration for a [Client].
type clientConfig struct {
	apiKey       string
	baseURL      string
	organization string
	httpClient   *http.Client
	headers      map[string]string
	model        string
	middleware   []loom.Middleware
}

// Option configures a [Client] via [New].
type Option func(*clientConfig)

// WithAPIKey sets the API key explicitly, overriding OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithBaseURL overrides the API base URL (e.g., for a local server or
// proxy), overriding OPENAI_BASE_URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithOrganization sets the OpenAI organization header.
func WithOrganization(org string) Option {
	return func(c *clientConfig) { c.organization = org }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.headers = headers }
}

// WithModel sets the default model used when a request leaves Model empty.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithMiddleware adds middleware to the completion pipeline.
// Middleware is applied in the order provided (first = outermost).
func WithMiddleware(mw ...loom.Middleware) Option {
	return func(c *clientConfig) { c.middleware = append(c.middleware, mw...) }
}

// resolve applies options over environment defaults.
func resolve(opts []Option) *clientConfig {
	cfg := &clientConfig{
		apiKey:  os.Getenv(envAPIKey),
		baseURL: os.Getenv(envBaseURL),
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
