package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(counts map[Tuple]uint64) FrequencyTable {
	b := NewTableBuilder()
	for k, c := range counts {
		b.AddN(k, c)
	}
	return b.Build()
}

var (
	keyA = Tuple{Mod3: 1, Length: 0, Color: ColorRed, Parity: ParityEven}
	keyB = Tuple{Mod3: 2, Length: 2, Color: ColorGreen, Parity: ParityOdd}
	keyC = Tuple{Mod3: 0, Length: 1, Color: ColorBlue, Parity: ParityNone}
	keyD = Tuple{Mod3: 1, Length: 4, Color: ColorBlue, Parity: ParityOdd}
)

func TestTableBuilder(t *testing.T) {
	t.Run("counts occurrences", func(t *testing.T) {
		b := NewTableBuilder()
		b.Add(keyA)
		b.Add(keyA)
		b.Add(keyB)
		table := b.Build()

		assert.Equal(t, uint64(2), table.Count(keyA))
		assert.Equal(t, uint64(1), table.Count(keyB))
		assert.Equal(t, uint64(0), table.Count(keyC))
		assert.Equal(t, uint64(3), table.Total())
		assert.Equal(t, 2, table.Len())
	})

	t.Run("zero counts are not stored", func(t *testing.T) {
		b := NewTableBuilder()
		b.AddN(keyA, 0)
		table := b.Build()
		assert.True(t, table.IsEmpty())
		assert.True(t, table.Equal(EmptyTable()))
	})

	t.Run("build resets the builder", func(t *testing.T) {
		b := NewTableBuilder()
		b.Add(keyA)
		first := b.Build()
		b.Add(keyB)
		second := b.Build()

		assert.Equal(t, uint64(1), first.Count(keyA))
		assert.Equal(t, uint64(0), first.Count(keyB))
		assert.Equal(t, uint64(0), second.Count(keyA))
		assert.Equal(t, uint64(1), second.Count(keyB))
	})

	t.Run("add table folds counts", func(t *testing.T) {
		b := NewTableBuilder()
		b.Add(keyA)
		b.AddTable(tableOf(map[Tuple]uint64{keyA: 2, keyC: 5}))
		table := b.Build()
		assert.Equal(t, uint64(3), table.Count(keyA))
		assert.Equal(t, uint64(5), table.Count(keyC))
		assert.Equal(t, uint64(8), table.Total())
	})
}

func TestMerge(t *testing.T) {
	a := tableOf(map[Tuple]uint64{keyA: 1, keyB: 2})
	b := tableOf(map[Tuple]uint64{keyB: 3, keyC: 4})
	c := tableOf(map[Tuple]uint64{keyA: 7, keyD: 1})

	t.Run("pointwise sum over key union", func(t *testing.T) {
		m := Merge(a, b)
		assert.Equal(t, uint64(1), m.Count(keyA))
		assert.Equal(t, uint64(5), m.Count(keyB))
		assert.Equal(t, uint64(4), m.Count(keyC))
		assert.Equal(t, a.Total()+b.Total(), m.Total())
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		before := a.Entries()
		_ = Merge(a, b)
		_ = a.Merge(c)
		if diff := cmp.Diff(before, a.Entries()); diff != "" {
			t.Errorf("merge mutated input (-before +after):\n%s", diff)
		}
	})

	t.Run("commutative", func(t *testing.T) {
		assert.True(t, Merge(a, b).Equal(Merge(b, a)))
	})

	t.Run("associative", func(t *testing.T) {
		left := Merge(Merge(a, b), c)
		right := Merge(a, Merge(b, c))
		assert.True(t, left.Equal(right))
	})

	t.Run("empty is the identity", func(t *testing.T) {
		assert.True(t, Merge(a, EmptyTable()).Equal(a))
		assert.True(t, Merge(FrequencyTable{}, a).Equal(a))
	})

	t.Run("merge all matches sequential merges", func(t *testing.T) {
		tables := []FrequencyTable{a, b, c, a, b}
		seq := EmptyTable()
		for _, tt := range tables {
			seq = Merge(seq, tt)
		}
		assert.True(t, MergeAll(tables...).Equal(seq))
		assert.True(t, MergeAll().Equal(EmptyTable()))
		assert.True(t, MergeAll(a).Equal(a))
	})
}

func TestTableEqual(t *testing.T) {
	a := tableOf(map[Tuple]uint64{keyA: 1, keyB: 2})

	assert.True(t, a.Equal(tableOf(map[Tuple]uint64{keyB: 2, keyA: 1})))
	assert.False(t, a.Equal(tableOf(map[Tuple]uint64{keyA: 1, keyB: 3})))
	assert.False(t, a.Equal(tableOf(map[Tuple]uint64{keyA: 1, keyC: 2})))
	assert.False(t, a.Equal(tableOf(map[Tuple]uint64{keyA: 1})))
}

func TestTableEntriesSorted(t *testing.T) {
	table := tableOf(map[Tuple]uint64{keyD: 1, keyB: 1, keyC: 1, keyA: 1})
	keys := table.Keys()
	require.Len(t, keys, 4)
	for i := 1; i < len(keys); i++ {
		assert.True(t, keys[i-1].Less(keys[i]), "keys not sorted at %d: %v", i, keys)
	}
}

func TestTableSum(t *testing.T) {
	table := tableOf(map[Tuple]uint64{keyA: 1, keyB: 2, keyC: 4, keyD: 8})
	assert.Equal(t, uint64(9), table.Sum(func(k Tuple) bool { return k.Mod3 == 1 }))
	assert.Equal(t, uint64(15), table.Sum(func(Tuple) bool { return true }))
}

func TestTableJSON(t *testing.T) {
	table := tableOf(map[Tuple]uint64{keyA: 3, keyC: 1})

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"mod3":1,"length":0,"color":-1,"parity":0,"count":3},
		{"mod3":0,"length":1,"color":1,"parity":-1,"count":1}
	]`, string(data))

	var decoded FrequencyTable
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(table))
}

func TestTableFromEntries(t *testing.T) {
	t.Run("sums repeated keys", func(t *testing.T) {
		table, err := TableFromEntries([]TableEntry{
			{Tuple: keyA, Count: 1},
			{Tuple: keyA, Count: 2},
			{Tuple: keyB, Count: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), table.Count(keyA))
		assert.Equal(t, 1, table.Len())
	})

	t.Run("rejects out of range keys", func(t *testing.T) {
		bad := []Tuple{
			{Mod3: 3},
			{Mod3: 1, Length: -1},
			{Mod3: 1, Color: 2},
			{Mod3: 1, Parity: -2},
		}
		for _, k := range bad {
			_, err := TableFromEntries([]TableEntry{{Tuple: k, Count: 1}})
			assert.True(t, errors.Is(err, ErrInvalidArgument), "key %v: %v", k, err)
		}
	})
}
