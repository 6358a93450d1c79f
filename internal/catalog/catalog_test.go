package catalog

import (
	"strings"
	"testing"

	"github.com/mansoorceksport/circuitbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	for _, c := range domain.Categories {
		assert.NotEmpty(t, cat[c], "category %s", c)
		for _, ex := range cat[c] {
			assert.Equal(t, c, ex.Category)
			assert.NotEmpty(t, ex.Description)
		}
	}
	assert.Len(t, cat[domain.CategoryCore], 24)
	assert.Len(t, cat[domain.CategoryFullBody], 2)
}

func TestParse(t *testing.T) {
	doc := `{"core": [{"description": " V-ups ", "reps": 30}], "cardio": [{"description": "run", "duration_seconds": 180}]}`

	cat, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, cat[domain.CategoryCore], 1)
	core := cat[domain.CategoryCore][0]
	assert.Equal(t, "V-ups", core.Description)
	require.NotNil(t, core.Reps)
	assert.Equal(t, 30, *core.Reps)
	assert.True(t, cat[domain.CategoryCardio][0].HasDuration())

	all := cat.Exercises()
	require.Len(t, all, 2)
	assert.Equal(t, domain.CategoryCardio, all[0].Category)
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown category", doc: `{"arms": [{"description": "curl"}]}`},
		{name: "missing description", doc: `{"core": [{"reps": 3}]}`},
		{name: "not json", doc: `core: plank`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}
