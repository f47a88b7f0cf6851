package codec

import (
	"fmt"
	"io"

	"collatzgraph/internal/domain"
)

// Importer interface for importing runs from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Run, error)
	Format() string
}

// Exporter interface for exporting runs to various formats
type Exporter interface {
	Export(run *domain.Run, w io.Writer) error
	Format() string
	ContentType() string
}

// GraphExporter writes an expansion graph for external renderers
type GraphExporter interface {
	ExportGraph(g *domain.Graph, w io.Writer) error
	Format() string
	ContentType() string
}

// ExporterFor returns the run exporter for format (json, yaml or text)
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "text", "txt":
		return NewTextCodec(), nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidArgument, format)
	}
}

// ImporterFor returns the run importer for format (json or yaml)
func ImporterFor(format string) (Importer, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: unknown import format %q", domain.ErrInvalidArgument, format)
	}
}

// finishImport fills in what a hand-written file may omit and checks the
// rest against the table
func finishImport(run *domain.Run) (*domain.Run, error) {
	if len(run.Seeds) == 0 {
		return nil, fmt.Errorf("%w: run has no seeds", domain.ErrInvalidArgument)
	}
	if _, err := domain.ParseValues(run.Seeds); err != nil {
		return nil, err
	}
	if run.BitBound < 0 {
		return nil, fmt.Errorf("%w: negative bit bound %d", domain.ErrInvalidArgument, run.BitBound)
	}
	if run.Total == 0 {
		run.Total = run.Table.Total()
	}
	if run.Digest == "" {
		run.Digest = domain.TableDigest(run.Table)
	}
	if err := run.Verify(); err != nil {
		return nil, err
	}
	return run, nil
}
