package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStructured_KeepsIndexes(t *testing.T) {
	fields := UpdatedFields{
		"rates[0].min_rate": {Old: 20.0, New: 21.0},
		"rates[1].min_rate": {Old: 30.0, New: 31.0},
		"title":             {Old: "a", New: "b"},
	}

	tree := BuildStructured(fields)

	rates := tree["rates"].(map[string]any)
	first := rates["0"].(map[string]any)["min_rate"].(map[string]any)
	second := rates["1"].(map[string]any)["min_rate"].(map[string]any)
	assert.Equal(t, 21.0, first["new_value"])
	assert.Equal(t, 31.0, second["new_value"])
	assert.Equal(t, "Min Rate", first["key"])

	title := tree["title"].(map[string]any)
	assert.Equal(t, map[string]any{"key": "Title", "slug": "title", "new_value": "b", "old_value": "a"}, title)
}

func TestBuildStructured_CollapseIndexes(t *testing.T) {
	fields := UpdatedFields{
		"rates[0].min_rate": {Old: 20.0, New: 21.0},
		"rates[1].min_rate": {Old: 30.0, New: 31.0},
	}

	tree := BuildStructured(fields, CollapseIndexes())

	leaf := tree["rates"].(map[string]any)["min_rate"].(map[string]any)
	assert.Equal(t, 31.0, leaf["new_value"], "last index in path order wins")
}

func TestBuildStructured_IndexLeafUsesParentName(t *testing.T) {
	tree := BuildStructured(UpdatedFields{"pay_rates[2]": {Old: nil, New: map[string]any{"amount": 5}}})

	leaf := tree["pay_rates"].(map[string]any)["2"].(map[string]any)
	assert.Equal(t, "Pay Rates", leaf["key"])
	assert.Equal(t, "pay_rates", leaf["slug"])
}

func TestLeavesAndIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(ChangeTree{}))
	assert.True(t, IsEmpty(map[string]any{"rates": map[string]any{}}))

	tree := BuildStructured(UpdatedFields{
		"b":     {Old: 1, New: 2},
		"a.c.d": {Old: 1, New: 2},
	})
	leaves := Leaves(tree)
	require.Len(t, leaves, 2)
	assert.Equal(t, []string{"a", "c", "d"}, leaves[0].Path)
	assert.Equal(t, []string{"b"}, leaves[1].Path)
	assert.False(t, IsEmpty(tree))
}

func TestMerge(t *testing.T) {
	status := BuildStructured(UpdatedFields{"status": {Old: "OPEN", New: "SOURCING"}})
	vendors := ChangeTree{"vendors": NewChangeRecord("vendors", FieldChange{New: []any{"Acme"}}).AsMap()}

	merged, err := Merge(status, vendors)

	require.NoError(t, err)
	assert.Contains(t, merged, "status")
	assert.Contains(t, merged, "vendors")
	assert.Equal(t, "SOURCING", merged["status"].(map[string]any)["new_value"])
}

func TestTitleCaseAndSlug(t *testing.T) {
	tests := []struct {
		field, title, slug string
	}{
		{"job_manager_id", "Job Manager Id", "job_manager"},
		{"hierarchy_ids", "Hierarchy Ids", "hierarchy"},
		{"rateType", "Rate Type", "rate_type"},
		{"status", "Status", "status"},
		{"id", "Id", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.title, TitleCase(tt.field))
			assert.Equal(t, tt.slug, Slug(tt.field))
		})
	}
}

func TestCompareThenBuild_RoundTrip(t *testing.T) {
	newer := sampleJob()
	newer["status"] = "SOURCING"

	tree := BuildStructured(Compare(sampleJob(), newer))

	leaves := Leaves(tree)
	require.Len(t, leaves, 1)
	assert.Equal(t, "OPEN", leaves[0].Node["old_value"])
}
