package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"collatzgraph/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported data
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports a run from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Run, error) {
	var run domain.Run
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&run); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", domain.ErrInvalidArgument, err)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	return finishImport(&run)
}

// Export exports a run to JSON
func (c *JSONCodec) Export(run *domain.Run, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(run); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// ExportGraph writes g as vis-network JSON
func (c *JSONCodec) ExportGraph(g *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
