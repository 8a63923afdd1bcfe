package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarm-status-backend/internal/model"
)

func TestEvents(t *testing.T) {
	t.Run("parses kinds, dates and messages in server order", func(t *testing.T) {
		html := `<table class="table"><tbody>
			<tr><td><i class="icon-control icon-control-arm"></i></td><td>12/01/2026 à 14h30</td><td>Alarme activée par Jean</td></tr>
			<tr><td><i class="icon-control icon-control-disarm"></i></td><td>12/01/2026 à 08h05</td><td>Alarme désactivée par Marie</td></tr>
			<tr><td><i class="icon-warning"></i></td><td>11/01/2026 à 23h59</td><td>Défaut batterie</td></tr>
		</tbody></table>`

		events, notes := Events(html)
		require.Empty(t, notes)
		require.Len(t, events, 3)

		assert.Equal(t, model.EventArm, events[0].Kind)
		assert.Equal(t, model.EventDisarm, events[1].Kind)
		assert.Equal(t, model.EventUnknown, events[2].Kind)

		require.NotNil(t, events[0].Timestamp)
		assert.Equal(t, time.Date(2026, 1, 12, 14, 30, 0, 0, time.UTC), *events[0].Timestamp)
		assert.Equal(t, "12/01/2026 à 14h30", events[0].RawDate)
		assert.Equal(t, "Alarme activée par Jean", events[0].Message)
	})

	t.Run("unparseable date keeps raw text and position", func(t *testing.T) {
		html := `<table class="table"><tbody>
			<tr><td><i class="icon-control icon-control-arm"></i></td><td>hier soir</td><td>Alarme activée</td></tr>
			<tr><td><i class="icon-control icon-control-disarm"></i></td><td>10/01/2026 à 09h00</td><td>Alarme désactivée</td></tr>
		</tbody></table>`

		events, notes := Events(html)
		require.Len(t, events, 2)

		// The bad row stays first: server order is never rearranged by
		// parsed timestamps.
		assert.Nil(t, events[0].Timestamp)
		assert.Equal(t, "hier soir", events[0].RawDate)
		assert.NotNil(t, events[1].Timestamp)

		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "could not parse event date")
	})

	t.Run("rows with fewer than three cells are skipped", func(t *testing.T) {
		html := `<table class="table"><tbody>
			<tr><td>short</td><td>row</td></tr>
			<tr><td><i></i></td><td>10/01/2026 à 09h00</td><td>ok</td></tr>
		</tbody></table>`

		events, _ := Events(html)
		require.Len(t, events, 1)
		assert.Equal(t, model.EventUnknown, events[0].Kind)
	})

	t.Run("missing table yields empty result and note", func(t *testing.T) {
		events, notes := Events(`<p>rien</p>`)
		assert.Empty(t, events)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "table not found")
	})
}
