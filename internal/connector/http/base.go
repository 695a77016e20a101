package http

import (
	"log/slog"

	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
)

// =============================================================================
// BASE HTTP ENDPOINT
// Shared plumbing for REST connectors: one client, one logger, identity.
// =============================================================================

// Base is embedded by REST connectors.
type Base struct {
	Client *Client
	Logger *slog.Logger

	// Version is filled in once the server has reported it.
	Version string

	id     string
	title  string
	vendor string
}

// NewBase builds the client from config. A nil logger becomes slog.Default().
func NewBase(id, title, vendor string, config *ClientConfig, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		Client: NewClient(config),
		Logger: logger.With(slog.String("source", id)),
		id:     id,
		title:  title,
		vendor: vendor,
	}
}

// ID returns the template identifier.
func (b *Base) ID() string {
	return b.id
}

// Close is a no-op; the underlying transport keeps no per-source state.
func (b *Base) Close() error {
	return nil
}

// GetDescriptor returns the minimal descriptor. Connectors override it.
func (b *Base) GetDescriptor() *endpoint.Descriptor {
	return &endpoint.Descriptor{
		ID:     b.id,
		Family: "http.rest",
		Title:  b.title,
		Vendor: b.vendor,
	}
}
