package parser

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	plan := Parse("Programación  Avanzada")
	assert.False(t, plan.Empty())
	assert.Equal(t, []string{"programa", "avanzada"}, plan.Terms)
	assert.Equal(t, "Programación  Avanzada", plan.RawQuery)

	empty := Parse("")
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Terms)

	noTerms := Parse("¿ a ?")
	assert.False(t, noTerms.Empty())
	assert.Empty(t, noTerms.Terms)
}

func TestParseFilters(t *testing.T) {
	values := url.Values{
		"category": {"justicia,sanidad", " hacienda "},
		"duration": {"short"},
		"level":    {""},
		"q":        {"ignored"},
	}
	f := ParseFilters(values)
	assert.Equal(t, []string{"justicia", "sanidad", "hacienda"}, f.Categories)
	assert.Equal(t, []string{"short"}, f.Durations)
	assert.Empty(t, f.Levels)
	assert.True(t, f.Active())

	assert.False(t, ParseFilters(url.Values{}).Active())
}
