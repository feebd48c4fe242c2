package provider

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/value"
)

// MemoryTable is one named table of an in-memory provider: a schema plus
// rows aligned with the schema's field order.
type MemoryTable struct {
	Schema Schema
	Rows   [][]value.Value
}

// MemoryProvider serves fixed tables from memory. It backs tests and
// embedders that want to query non-git data.
type MemoryProvider struct {
	tables map[string]MemoryTable
}

// NewMemoryProvider creates a provider over the given tables.
func NewMemoryProvider(tables map[string]MemoryTable) *MemoryProvider {
	return &MemoryProvider{tables: tables}
}

// Fetch implements Provider.
func (p *MemoryProvider) Fetch(table string, fields []string, aliases map[string]string) ([]string, []object.Row, error) {
	t, ok := p.tables[table]
	if !ok {
		return nil, nil, errors.Errorf("unknown table %q", table)
	}

	if len(fields) == 0 {
		fields = t.Schema.Fields
	}

	indexes := make([]int, len(fields))
	for i, field := range fields {
		indexes[i] = -1
		for j, name := range t.Schema.Fields {
			if name == field {
				indexes[i] = j
				break
			}
		}
		if indexes[i] < 0 {
			return nil, nil, errors.Errorf("unknown field %q in table %q", field, table)
		}
	}

	rows := make([]object.Row, 0, len(t.Rows))
	for _, source := range t.Rows {
		values := make([]value.Value, len(fields))
		for i, idx := range indexes {
			values[i] = source[idx]
		}
		rows = append(rows, object.Row{Values: values})
	}
	return OutputTitles(fields, aliases), rows, nil
}

// Schema implements Provider.
func (p *MemoryProvider) Schema(table string) (*Schema, bool) {
	t, ok := p.tables[table]
	if !ok {
		return nil, false
	}
	return &t.Schema, true
}

// TableNames implements Provider.
func (p *MemoryProvider) TableNames() []string {
	names := make([]string, 0, len(p.tables))
	for name := range p.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
