package sqlite

import (
	"strings"
	"time"

	"collatzgraph/internal/domain"
)

// ============================================================================
// Conversion Helpers
// ============================================================================

// timeToNanos stores times as UTC unix nanoseconds
func timeToNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

// nanosToTime is the inverse of timeToNanos
func nanosToTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// splitSeeds reverses domain.SeedKey
func splitSeeds(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the runs table:
// 1. Add field to runRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update runColumns constant - APPEND to end
// 4. Update toDomain() and runInsertArgs()
// 5. Add the column in migrate()
//
// CRITICAL: Column order must match between runColumns, scanArgs() and
// runInsertArgs().

// ============================================================================
// Run Row Scanner
// ============================================================================

const runColumns = `id, seeds, bit_bound, total, previous_total, partitions, duration_ns, digest, created_at`

// runRow holds all columns from a run query for scanning
type runRow struct {
	ID            string
	Seeds         string
	BitBound      int
	Total         int64
	PreviousTotal int64
	Partitions    int
	DurationNS    int64
	Digest        string
	CreatedAt     int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match runColumns order exactly
func (r *runRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Seeds,
		&r.BitBound,
		&r.Total,
		&r.PreviousTotal,
		&r.Partitions,
		&r.DurationNS,
		&r.Digest,
		&r.CreatedAt,
	}
}

// toDomain converts the row to a run header with an empty table
func (r *runRow) toDomain() *domain.Run {
	return &domain.Run{
		ID:            r.ID,
		Seeds:         splitSeeds(r.Seeds),
		BitBound:      r.BitBound,
		Total:         uint64(r.Total),
		PreviousTotal: uint64(r.PreviousTotal),
		Partitions:    r.Partitions,
		Duration:      time.Duration(r.DurationNS),
		Digest:        r.Digest,
		CreatedAt:     nanosToTime(r.CreatedAt),
	}
}

// runInsertArgs returns the values for an INSERT in runColumns order
func runInsertArgs(run *domain.Run) []interface{} {
	return []interface{}{
		run.ID,
		run.SeedKey(),
		run.BitBound,
		int64(run.Total),
		int64(run.PreviousTotal),
		run.Partitions,
		int64(run.Duration),
		run.Digest,
		timeToNanos(run.CreatedAt),
	}
}
