// Package extract recovers JSON payloads from free-form model output.
//
// Generated text is rarely clean JSON: it arrives wrapped in prose, code
// fences or trailing remarks. The extractor takes the span from the first
// opening delimiter to the LAST closing delimiter of the requested shape,
// falls back to the whole string, and otherwise yields the shape's empty
// value. It never returns an error.
package extract

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"hiredly/internal/errors"
)

// Shape is the top-level JSON kind a task is expected to produce.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

func (s Shape) delimiters() (open, close byte) {
	if s == ShapeArray {
		return '[', ']'
	}
	return '{', '}'
}

// Empty returns the identity-empty value: {} or [].
func (s Shape) Empty() any {
	if s == ShapeArray {
		return []any{}
	}
	return map[string]any{}
}

// accepts reports whether text is valid JSON whose top level is this shape.
func (s Shape) accepts(text string) bool {
	open, _ := s.delimiters()
	trimmed := strings.TrimSpace(text)
	return len(trimmed) > 0 && trimmed[0] == open && json.Valid([]byte(trimmed))
}

// FailureHook is notified whenever extraction degrades.
type FailureHook func(shape Shape, reason string)

// Extractor holds the diagnostic sinks; it is safe for concurrent use.
type Extractor struct {
	logger    *errors.Logger
	onFailure FailureHook
}

// Option configures an Extractor
type Option func(*Extractor)

// WithFailureHook registers a callback for degraded extractions.
func WithFailureHook(hook FailureHook) Option {
	return func(x *Extractor) {
		x.onFailure = hook
	}
}

// New creates an extractor. A nil logger discards diagnostics.
func New(logger *errors.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = errors.Discard()
	}
	x := &Extractor{logger: logger}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Payload returns the JSON bytes for shape found in raw.
func (x *Extractor) Payload(raw string, shape Shape) ([]byte, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	open, close := shape.delimiters()
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start != -1 && end > start {
		if candidate := raw[start : end+1]; shape.accepts(candidate) {
			return []byte(candidate), true
		}
	}

	if shape.accepts(raw) {
		return []byte(strings.TrimSpace(raw)), true
	}

	x.degrade(shape, "no parseable "+shape.String()+" in response", "raw_length", len(raw))
	return nil, false
}

// Extract returns the parsed payload as map[string]any or []any, or the
// shape's empty value.
func (x *Extractor) Extract(raw string, shape Shape) any {
	payload, ok := x.Payload(raw, shape)
	if !ok {
		return shape.Empty()
	}

	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		x.degrade(shape, "payload decode failed", "error", err.Error())
		return shape.Empty()
	}
	return out
}

// Decode extracts the payload for shape and decodes it into T. Fields whose
// JSON type does not match T are left zero and reported, the rest are kept.
// The boolean is false when nothing usable was found.
func Decode[T any](x *Extractor, raw string, shape Shape) (T, bool) {
	payload, ok := x.Payload(raw, shape)
	if !ok {
		var zero T
		return zero, false
	}
	return Unmarshal[T](x, payload, shape)
}

// Unmarshal decodes a payload returned by Payload with the same tolerance as Decode.
func Unmarshal[T any](x *Extractor, payload []byte, shape Shape) (T, bool) {
	var out T
	err := json.Unmarshal(payload, &out)
	if err == nil {
		return out, true
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		x.logger.Warn("Extracted payload has mismatched field types",
			"shape", shape.String(),
			"field", typeErr.Field,
			"got", typeErr.Value)
		return out, true
	}

	var zero T
	x.degrade(shape, "payload decode failed", "error", err.Error())
	return zero, false
}

func (x *Extractor) degrade(shape Shape, reason string, args ...any) {
	x.logger.Warn("Structured extraction fell back to empty value",
		append([]any{"shape", shape.String(), "reason", reason}, args...)...)
	if x.onFailure != nil {
		x.onFailure(shape, reason)
	}
}
