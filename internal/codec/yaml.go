package codec

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"collatzgraph/internal/domain"
)

// YAMLCodec handles YAML import/export of runs
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exported data
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlRun represents the YAML structure for a run
type yamlRun struct {
	ID            string              `yaml:"id,omitempty"`
	Seeds         []string            `yaml:"seeds"`
	BitBound      int                 `yaml:"bit_bound"`
	Total         uint64              `yaml:"total,omitempty"`
	PreviousTotal uint64              `yaml:"previous_total,omitempty"`
	Partitions    int                 `yaml:"partitions,omitempty"`
	Duration      string              `yaml:"duration,omitempty"`
	CreatedAt     time.Time           `yaml:"created_at,omitempty"`
	Digest        string              `yaml:"digest,omitempty"`
	Counts        []domain.TableEntry `yaml:"counts"`
}

// Parse imports a run from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Run, error) {
	var yr yamlRun
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yr); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", domain.ErrInvalidArgument, err)
	}

	table, err := domain.TableFromEntries(yr.Counts)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:            yr.ID,
		Seeds:         yr.Seeds,
		BitBound:      yr.BitBound,
		Total:         yr.Total,
		PreviousTotal: yr.PreviousTotal,
		Partitions:    yr.Partitions,
		CreatedAt:     yr.CreatedAt,
		Digest:        yr.Digest,
		Table:         table,
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if yr.Duration != "" {
		d, err := time.ParseDuration(yr.Duration)
		if err != nil {
			return nil, fmt.Errorf("%w: duration %q: %v", domain.ErrInvalidArgument, yr.Duration, err)
		}
		run.Duration = d
	}

	return finishImport(run)
}

// Export exports a run to YAML
func (c *YAMLCodec) Export(run *domain.Run, w io.Writer) error {
	yr := yamlRun{
		ID:            run.ID,
		Seeds:         run.Seeds,
		BitBound:      run.BitBound,
		Total:         run.Total,
		PreviousTotal: run.PreviousTotal,
		Partitions:    run.Partitions,
		CreatedAt:     run.CreatedAt,
		Digest:        run.Digest,
		Counts:        run.Table.Entries(),
	}
	if run.Duration > 0 {
		yr.Duration = run.Duration.String()
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(&yr); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}
