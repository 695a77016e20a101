package http

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingValue is returned when a collection response has no "value" array.
var ErrMissingValue = errors.New(`collection response has no "value" array`)

// Collection is an OData collection envelope as returned by REST v2.0 APIs.
// Only a single page is decoded; NextLink reports whether the server had more.
type Collection[T any] struct {
	Context  string
	NextLink string
	Value    []T
}

// HasMore returns true if the server indicated further pages.
func (c *Collection[T]) HasMore() bool {
	return c.NextLink != ""
}

// DecodeCollection parses a {"value": [...]} body into typed items.
func DecodeCollection[T any](body []byte) (*Collection[T], error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	raw, ok := envelope["value"]
	if !ok {
		return nil, ErrMissingValue
	}

	out := &Collection[T]{}
	if err := json.Unmarshal(raw, &out.Value); err != nil {
		return nil, fmt.Errorf("decode collection value: %w", err)
	}
	if ctx, ok := envelope["@odata.context"]; ok {
		_ = json.Unmarshal(ctx, &out.Context)
	}
	if next, ok := envelope["@odata.nextLink"]; ok {
		_ = json.Unmarshal(next, &out.NextLink)
	}
	return out, nil
}
