package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
)

// JSONLSink writes one JSON object per work unit, newline separated.
type JSONLSink struct {
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLSink writes to w. The caller keeps ownership of w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	buf := bufio.NewWriter(w)
	return &JSONLSink{buf: buf, enc: json.NewEncoder(buf)}
}

// OpenFileSink creates (or truncates) path and writes to it.
func OpenFileSink(path string) (*JSONLSink, error) {
	if path == "" {
		return nil, fmt.Errorf("file sink: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrapError(CodePermissionDenied, false, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, wrapError(CodePermissionDenied, false, err)
	}
	s := NewJSONLSink(f)
	s.closer = f
	return s, nil
}

func (s *JSONLSink) Write(ctx context.Context, wu *cdm.WorkUnit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.enc.Encode(wu); err != nil {
		return wrapError(CodeSinkWriteFailed, false, fmt.Errorf("encode %s: %w", wu.ID, err))
	}
	return nil
}

func (s *JSONLSink) Close(ctx context.Context) error {
	if err := s.buf.Flush(); err != nil {
		return wrapError(CodeSinkWriteFailed, true, err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
