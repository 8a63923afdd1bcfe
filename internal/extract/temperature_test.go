package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "Accent folding", raw: "Séjour", expected: "sejour"},
		{name: "Spaces", raw: "Chambre parents", expected: "chambre_parents"},
		{name: "HTML entity", raw: "S&eacute;jour", expected: "sejour"},
		{name: "Surrounding whitespace", raw: "  Cuisine ", expected: "cuisine"},
		{name: "Already lowercase", raw: "garage", expected: "garage"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slug(tc.raw))
		})
	}
}

func TestTemperatures(t *testing.T) {
	t.Run("parses rooms and strips units", func(t *testing.T) {
		html := `<table class="table table-striped"><tbody>
			<tr><td>Séjour</td><td>21.5<sup>°C</sup></td></tr>
			<tr><td>Chambre parents</td><td>19°C</td></tr>
			<tr><td>Garage</td><td>12.0°</td></tr>
		</tbody></table>`

		readings, notes := Temperatures(html)
		require.Empty(t, notes)
		require.Len(t, readings, 3)

		sejour := readings["sejour"]
		assert.Equal(t, "Séjour", sejour.Name)
		assert.Equal(t, 21.5, sejour.Value)
		assert.Equal(t, "°C", sejour.Unit)
		assert.Equal(t, "sejour", sejour.SensorID)

		assert.Equal(t, 19.0, readings["chambre_parents"].Value)
		assert.Equal(t, 12.0, readings["garage"].Value)
	})

	t.Run("slug is deterministic across polls", func(t *testing.T) {
		html := `<table class="table"><tbody><tr><td>Séjour</td><td>20.1°C</td></tr></tbody></table>`
		first, _ := Temperatures(html)
		second, _ := Temperatures(html)
		assert.Equal(t, first, second)
	})

	t.Run("skips unparseable value with a note", func(t *testing.T) {
		html := `<table class="table"><tbody>
			<tr><td>Séjour</td><td>n/a</td></tr>
			<tr><td>Cuisine</td><td>18.2°C</td></tr>
		</tbody></table>`

		readings, notes := Temperatures(html)
		assert.Len(t, readings, 1)
		assert.Contains(t, readings, "cuisine")
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "could not parse temperature")
	})

	t.Run("skips rows with fewer than two cells", func(t *testing.T) {
		html := `<table class="table"><tbody>
			<tr><td>orphan</td></tr>
			<tr><td>Cuisine</td><td>18.2°C</td></tr>
		</tbody></table>`

		readings, notes := Temperatures(html)
		assert.Len(t, readings, 1)
		assert.Empty(t, notes)
	})

	t.Run("missing table yields empty result and note", func(t *testing.T) {
		readings, notes := Temperatures(`<div>nothing here</div>`)
		assert.Empty(t, readings)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "table not found")
	})

	t.Run("empty table yields empty result and note", func(t *testing.T) {
		readings, notes := Temperatures(`<table class="table"></table>`)
		assert.Empty(t, readings)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "tbody")
	})
}
