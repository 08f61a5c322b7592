package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store used by tests and local runs. It mirrors
// the Dynamo implementation's semantics: unconditional overwrites, no
// cross-row atomicity, reverse lookups by indexed attribute equality.
type Memory struct {
	mu     sync.RWMutex
	config Config
	rows   map[string]map[string]Row // pk -> sk -> row
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return NewMemoryWithConfig(DefaultConfig())
}

// NewMemoryWithConfig creates an in-memory Store with explicit index
// configuration.
func NewMemoryWithConfig(config Config) *Memory {
	config.validate()
	return &Memory{
		config: config,
		rows:   make(map[string]map[string]Row),
	}
}

// Get returns the row at (pk, sk), or ErrNotFound.
func (m *Memory) Get(ctx context.Context, pk, sk string) (Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[pk][sk]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRow(row), nil
}

// Put writes a row, unconditionally overwriting any existing row.
func (m *Memory) Put(ctx context.Context, row Row) error {
	pk, sk := Key(row)
	if pk == "" || sk == "" {
		return fmt.Errorf("put: row missing pk or sk")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rows[pk] == nil {
		m.rows[pk] = make(map[string]Row)
	}
	m.rows[pk][sk] = copyRow(row)
	return nil
}

// Delete removes the row at (pk, sk); absent rows are not an error.
func (m *Memory) Delete(ctx context.Context, pk, sk string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if partition, ok := m.rows[pk]; ok {
		delete(partition, sk)
		if len(partition) == 0 {
			delete(m.rows, pk)
		}
	}
	return nil
}

// BatchPut writes up to MaxBatchItems rows.
func (m *Memory) BatchPut(ctx context.Context, rows []Row) error {
	if len(rows) > MaxBatchItems {
		return ErrBatchTooLarge
	}
	for _, row := range rows {
		if err := m.Put(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// QueryPartition returns every row under a partition key, ordered by
// sort key as the real table would be.
func (m *Memory) QueryPartition(ctx context.Context, pk string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	partition := m.rows[pk]
	sks := make([]string, 0, len(partition))
	for sk := range partition {
		sks = append(sks, sk)
	}
	sort.Strings(sks)

	rows := make([]Row, 0, len(sks))
	for _, sk := range sks {
		rows = append(rows, copyRow(partition[sk]))
	}
	return rows, nil
}

// QueryIndex performs a reverse lookup on a named secondary index.
func (m *Memory) QueryIndex(ctx context.Context, index, key string) ([]Row, error) {
	attr, ok := m.config.indexAttr(index)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndex, index)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []Row
	m.walk(func(row Row) {
		if StringAttr(row, attr) == key {
			rows = append(rows, copyRow(row))
		}
	})
	return rows, nil
}

// Scan walks the whole table and returns rows matching the filter.
func (m *Memory) Scan(ctx context.Context, filter Filter) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []Row
	m.walk(func(row Row) {
		if matchFilter(row, filter) {
			rows = append(rows, copyRow(row))
		}
	})
	return rows, nil
}

// Len reports the total number of stored rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, partition := range m.rows {
		n += len(partition)
	}
	return n
}

// walk visits all rows in deterministic pk/sk order. Callers hold mu.
func (m *Memory) walk(fn func(Row)) {
	pks := make([]string, 0, len(m.rows))
	for pk := range m.rows {
		pks = append(pks, pk)
	}
	sort.Strings(pks)

	for _, pk := range pks {
		partition := m.rows[pk]
		sks := make([]string, 0, len(partition))
		for sk := range partition {
			sks = append(sks, sk)
		}
		sort.Strings(sks)
		for _, sk := range sks {
			fn(partition[sk])
		}
	}
}

// matchFilter evaluates a Filter against a row, mirroring the filter
// expression compileFilter produces for DynamoDB.
func matchFilter(row Row, f Filter) bool {
	if f.Kind != "" && StringAttr(row, AttrKind) != f.Kind {
		return false
	}

	if f.Match != "" && len(f.MatchAttrs) > 0 {
		hit := false
		for _, attr := range f.MatchAttrs {
			if strings.Contains(StringAttr(row, attr), f.Match) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if f.AnyOf != nil && len(f.AnyOf.Values) > 0 {
		set := StringSetAttr(row, f.AnyOf.Attr)
		hit := false
		for _, want := range f.AnyOf.Values {
			for _, have := range set {
				if have == want {
					hit = true
					break
				}
			}
		}
		if !hit {
			return false
		}
	}

	if f.Range != nil {
		n := Int64Attr(row, f.Range.Attr)
		if f.Range.Min != nil && n < *f.Range.Min {
			return false
		}
		if f.Range.Max != nil && n > *f.Range.Max {
			return false
		}
	}

	return true
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
