// Package object defines the tabular result returned to callers.
package object

import "github.com/gitql-go/gitql/value"

// Row is an ordered vector of values, positionally aligned with the
// enclosing object's titles.
type Row struct {
	Values []value.Value
}

// Clone returns a copy of the row with its own backing slice.
func (r Row) Clone() Row {
	values := make([]value.Value, len(r.Values))
	copy(values, r.Values)
	return Row{Values: values}
}

// Group is an ordered list of rows sharing a group key, or the single
// group of a non-grouped query.
type Group struct {
	Rows []Row
}

// IsEmpty reports whether the group has no rows.
func (g *Group) IsEmpty() bool { return len(g.Rows) == 0 }

// Len returns the number of rows in the group.
func (g *Group) Len() int { return len(g.Rows) }

// GitQLObject is the evaluated result: titles in selection order plus row
// groups. A non-grouped query holds exactly one group; a grouped query
// holds one group per distinct key.
type GitQLObject struct {
	Titles []string
	Groups []Group
}

// IsEmpty reports whether the object has no groups.
func (o *GitQLObject) IsEmpty() bool { return len(o.Groups) == 0 }

// Len returns the total number of rows across groups.
func (o *GitQLObject) Len() int {
	n := 0
	for i := range o.Groups {
		n += len(o.Groups[i].Rows)
	}
	return n
}

// Flat returns all rows across groups in order.
func (o *GitQLObject) Flat() []Row {
	rows := make([]Row, 0, o.Len())
	for i := range o.Groups {
		rows = append(rows, o.Groups[i].Rows...)
	}
	return rows
}

// Equals reports whether two results carry the same titles and the same
// rows in the same order, comparing values by type then payload.
func (o *GitQLObject) Equals(other *GitQLObject) bool {
	if len(o.Titles) != len(other.Titles) {
		return false
	}
	for i := range o.Titles {
		if o.Titles[i] != other.Titles[i] {
			return false
		}
	}
	a, b := o.Flat(), other.Flat()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].Values) != len(b[i].Values) {
			return false
		}
		for j := range a[i].Values {
			if !a[i].Values[j].Equals(b[i].Values[j]) {
				return false
			}
		}
	}
	return true
}
