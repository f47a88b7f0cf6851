package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TableEntry is one (key, count) pair of a FrequencyTable
type TableEntry struct {
	Tuple `yaml:",inline"`
	Count uint64 `json:"count" yaml:"count"`
}

// FrequencyTable counts classified values per Tuple.
//
// A table is an immutable value: it is produced by a TableBuilder or by
// Merge, and no method modifies the receiver. The zero value is an empty
// table. Zero counts are never stored, so two tables are equal exactly when
// they hold the same keys with the same counts.
type FrequencyTable struct {
	counts map[Tuple]uint64
	total  uint64
}

// EmptyTable returns a table with no entries
func EmptyTable() FrequencyTable {
	return FrequencyTable{}
}

// Count returns the count stored for k (0 when absent)
func (t FrequencyTable) Count(k Tuple) uint64 {
	return t.counts[k]
}

// Total returns the sum of all counts, i.e. the number of values classified
func (t FrequencyTable) Total() uint64 {
	return t.total
}

// Len returns the number of distinct keys
func (t FrequencyTable) Len() int {
	return len(t.counts)
}

// IsEmpty reports whether nothing was tabulated
func (t FrequencyTable) IsEmpty() bool {
	return len(t.counts) == 0
}

// Keys returns the keys in Tuple.Less order
func (t FrequencyTable) Keys() []Tuple {
	keys := make([]Tuple, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Entries returns the (key, count) pairs in Tuple.Less order
func (t FrequencyTable) Entries() []TableEntry {
	keys := t.Keys()
	entries := make([]TableEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, TableEntry{Tuple: k, Count: t.counts[k]})
	}
	return entries
}

// Sum adds up the counts of every key matching pred
func (t FrequencyTable) Sum(pred func(Tuple) bool) uint64 {
	var n uint64
	for k, c := range t.counts {
		if pred(k) {
			n += c
		}
	}
	return n
}

// Equal reports whether both tables hold the same counts
func (t FrequencyTable) Equal(o FrequencyTable) bool {
	if len(t.counts) != len(o.counts) || t.total != o.total {
		return false
	}
	for k, c := range t.counts {
		if o.counts[k] != c {
			return false
		}
	}
	return true
}

// Merge returns the pointwise sum of t and o. Neither input is modified.
func (t FrequencyTable) Merge(o FrequencyTable) FrequencyTable {
	return Merge(t, o)
}

// Merge returns a new table holding the pointwise sum of a and b over the
// union of their keys
func Merge(a, b FrequencyTable) FrequencyTable {
	counts := make(map[Tuple]uint64, max(len(a.counts), len(b.counts)))
	for k, c := range a.counts {
		counts[k] = c
	}
	for k, c := range b.counts {
		counts[k] += c
	}
	return FrequencyTable{counts: counts, total: a.total + b.total}
}

// MergeAll reduces tables pairwise, tree-wise, into a single table
func MergeAll(tables ...FrequencyTable) FrequencyTable {
	switch len(tables) {
	case 0:
		return EmptyTable()
	case 1:
		return Merge(tables[0], EmptyTable())
	}

	level := tables
	for len(level) > 1 {
		next := make([]FrequencyTable, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, Merge(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}

// TableFromEntries rebuilds a table from decoded entries. Repeated keys are
// summed, zero counts are dropped and out-of-range keys are rejected.
func TableFromEntries(entries []TableEntry) (FrequencyTable, error) {
	b := NewTableBuilder()
	for _, e := range entries {
		if err := e.Tuple.Validate(); err != nil {
			return FrequencyTable{}, fmt.Errorf("entry %s: %w", e.Tuple, err)
		}
		b.AddN(e.Tuple, e.Count)
	}
	return b.Build(), nil
}

// MarshalJSON encodes the table as a sorted list of entries
func (t FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}

// UnmarshalJSON decodes a list of entries
func (t *FrequencyTable) UnmarshalJSON(data []byte) error {
	var entries []TableEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	table, err := TableFromEntries(entries)
	if err != nil {
		return err
	}
	*t = table
	return nil
}

// TableBuilder accumulates counts for a single table. It is not safe for
// concurrent use; parallel workers build their own tables and Merge them.
type TableBuilder struct {
	counts map[Tuple]uint64
	total  uint64
}

// NewTableBuilder creates an empty builder
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{counts: make(map[Tuple]uint64)}
}

// Add counts one occurrence of k
func (b *TableBuilder) Add(k Tuple) {
	b.AddN(k, 1)
}

// AddN counts n occurrences of k
func (b *TableBuilder) AddN(k Tuple, n uint64) {
	if n == 0 {
		return
	}
	if b.counts == nil {
		b.counts = make(map[Tuple]uint64)
	}
	b.counts[k] += n
	b.total += n
}

// AddTable folds every count of t into the builder
func (b *TableBuilder) AddTable(t FrequencyTable) {
	for k, c := range t.counts {
		b.AddN(k, c)
	}
}

// Total returns the number of values counted so far
func (b *TableBuilder) Total() uint64 {
	return b.total
}

// Build freezes the accumulated counts into a table and resets the builder
func (b *TableBuilder) Build() FrequencyTable {
	t := FrequencyTable{counts: b.counts, total: b.total}
	b.counts = nil
	b.total = 0
	return t
}
