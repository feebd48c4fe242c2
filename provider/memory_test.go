package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

func tagsProvider() *MemoryProvider {
	return NewMemoryProvider(map[string]MemoryTable{
		"tags": {
			Schema: Schema{
				Fields: []string{"name", "repo"},
				Types: map[string]types.DataType{
					"name": types.Text,
					"repo": types.Text,
				},
			},
			Rows: [][]value.Value{
				{value.Text("v1"), value.Text(".")},
				{value.Text("v2"), value.Text(".")},
			},
		},
	})
}

func TestFetchSelectedFields(t *testing.T) {
	p := tagsProvider()
	titles, rows, err := p.Fetch("tags", []string{"name"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, titles)
	require.Len(t, rows, 2)
	assert.Equal(t, "v1", rows[0].Values[0].Literal())
}

func TestFetchAllFieldsWhenEmpty(t *testing.T) {
	p := tagsProvider()
	titles, rows, err := p.Fetch("tags", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "repo"}, titles)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].Values, 2)
}

func TestFetchAppliesAliases(t *testing.T) {
	p := tagsProvider()
	titles, _, err := p.Fetch("tags", []string{"name"}, map[string]string{"name": "tag_name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tag_name"}, titles)
}

func TestFetchUnknownTableAndField(t *testing.T) {
	p := tagsProvider()
	_, _, err := p.Fetch("nowhere", nil, nil)
	assert.Error(t, err)
	_, _, err = p.Fetch("tags", []string{"nope"}, nil)
	assert.Error(t, err)
}

func TestTableNamesStableOrder(t *testing.T) {
	p := tagsProvider()
	assert.Equal(t, []string{"tags"}, p.TableNames())
}
