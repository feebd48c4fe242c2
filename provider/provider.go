// Package provider defines the contract for materializing rows for named
// virtual tables, and an in-memory implementation for embedding and tests.
package provider

import (
	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/types"
)

// Schema describes one table: field names in declaration order plus their
// types.
type Schema struct {
	Fields []string
	Types  map[string]types.DataType
}

// Provider materializes rows for named virtual tables. Implementations
// must key returned columns by output names: when a requested field has an
// alias, the returned title is the alias.
//
// An empty fields slice requests all fields in schema order.
type Provider interface {
	// Fetch returns the titles and rows for the requested fields of a
	// table. Row values are positionally aligned with the titles.
	Fetch(table string, fields []string, aliases map[string]string) ([]string, []object.Row, error)

	// Schema returns the schema of a table, or false for unknown tables.
	Schema(table string) (*Schema, bool)

	// TableNames returns the provider's table names in a stable order.
	TableNames() []string
}

// OutputTitles maps raw field names through an alias table.
func OutputTitles(fields []string, aliases map[string]string) []string {
	titles := make([]string, len(fields))
	for i, field := range fields {
		if alias, ok := aliases[field]; ok {
			titles[i] = alias
		} else {
			titles[i] = field
		}
	}
	return titles
}
