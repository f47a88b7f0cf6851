package domain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Run is the tabulated bounded reverse-reachable set of a seed list under
// one bit bound
type Run struct {
	ID            string         `json:"id"`
	Seeds         []string       `json:"seeds"`
	BitBound      int            `json:"bit_bound"`
	Total         uint64         `json:"total"`
	PreviousTotal uint64         `json:"previous_total"`
	Partitions    int            `json:"partitions"`
	Duration      time.Duration  `json:"duration"`
	CreatedAt     time.Time      `json:"created_at"`
	Digest        string         `json:"digest"`
	Table         FrequencyTable `json:"table"`
}

// NewRun creates a run with a fresh ID and the table's digest
func NewRun(seeds []string, bitBound int, table FrequencyTable) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Seeds:     seeds,
		BitBound:  bitBound,
		Total:     table.Total(),
		CreatedAt: time.Now().UTC(),
		Digest:    TableDigest(table),
		Table:     table,
	}
}

// SeedKey is the canonical seed list used to look runs up
func (r *Run) SeedKey() string {
	return SeedKey(r.Seeds)
}

// SeedKey joins seeds with commas
func SeedKey(seeds []string) string {
	return strings.Join(seeds, ",")
}

// NewNodes is the number of values not present at the previous bound
func (r *Run) NewNodes() uint64 {
	if r.PreviousTotal > r.Total {
		return 0
	}
	return r.Total - r.PreviousTotal
}

// Verify checks that the stored total and digest match the table
func (r *Run) Verify() error {
	if r.Total != r.Table.Total() {
		return fmt.Errorf("%w: run %s total %d does not match table total %d",
			ErrInvalidArgument, r.ID, r.Total, r.Table.Total())
	}
	if want := TableDigest(r.Table); r.Digest != want {
		return fmt.Errorf("%w: run %s digest mismatch", ErrInvalidArgument, r.ID)
	}
	return nil
}

// MergeRuns combines partial runs computed under the same bound into one run
// over the union of their seeds
func MergeRuns(runs ...*Run) (*Run, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no runs to merge", ErrInvalidArgument)
	}

	bound := runs[0].BitBound
	var seeds []string
	tables := make([]FrequencyTable, 0, len(runs))
	partitions := 0
	var elapsed time.Duration
	for _, r := range runs {
		if r.BitBound != bound {
			return nil, fmt.Errorf("%w: run %s has bound %d, want %d",
				ErrInvalidArgument, r.ID, r.BitBound, bound)
		}
		seeds = append(seeds, r.Seeds...)
		tables = append(tables, r.Table)
		partitions += max(r.Partitions, 1)
		elapsed += r.Duration
	}

	merged := NewRun(seeds, bound, MergeAll(tables...))
	merged.Partitions = partitions
	merged.Duration = elapsed
	return merged, nil
}

// TableDigest hashes the canonical encoding of t with BLAKE2b-256
func TableDigest(t FrequencyTable) string {
	buf := make([]byte, 0, 16*t.Len())
	for _, e := range t.Entries() {
		buf = binary.AppendUvarint(buf, uint64(e.Mod3))
		buf = binary.AppendUvarint(buf, uint64(e.Length))
		buf = binary.AppendVarint(buf, int64(e.Color))
		buf = binary.AppendVarint(buf, int64(e.Parity))
		buf = binary.AppendUvarint(buf, e.Count)
	}
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Sweep is the series of runs of one seed over a range of bit bounds
type Sweep struct {
	Seeds    []string `json:"seeds"`
	MinBound int      `json:"min_bound"`
	MaxBound int      `json:"max_bound"`
	Runs     []*Run   `json:"runs"`
}
