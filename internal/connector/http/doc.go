// Package http provides a generic HTTP base connector for REST API sources.
// The Power BI Report Server connector builds on it.
//
// Structure:
//
//	client.go     - HTTP client with rate limiting and optional retry
//	auth.go       - Authentication strategies (none, NTLM)
//	collection.go - OData collection envelopes ({"value": [...]})
//	base.go       - Shared endpoint plumbing embedded by connectors
package http
