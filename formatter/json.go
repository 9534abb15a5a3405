package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponseBuilder renders arrival boards in the supported output formats.
type ResponseBuilder struct{}

// NewResponseBuilder returns a ResponseBuilder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// BuildJSON encodes ab as one JSON document without a trailing newline.
// Station names keep '&' and '<' unescaped.
func (rb *ResponseBuilder) BuildJSON(ab ArrivalBoard) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ab); err != nil {
		return nil, fmt.Errorf("failed to encode arrival board: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
