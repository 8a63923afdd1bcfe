package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"alarm-status-backend/internal/model"
)

// eventDateLayout matches the portal's localized log dates once the
// "à"/"h" separators have been normalized, e.g. "12/01/2026 à 14h30".
const eventDateLayout = "02/01/2006 15:04"

// Events parses the portal's log table, preserving the server's newest-first
// ordering. Rows whose date fails to parse keep the raw text with a nil
// timestamp; they are never dropped or reordered.
func Events(html string) ([]model.EventRecord, []string) {
	var events []model.EventRecord

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return events, []string{fmt.Sprintf("unparseable markup: %v", err)}
	}

	table := doc.Find("table.table").First()
	if table.Length() == 0 {
		return events, []string{"event table not found"}
	}

	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return events, []string{"event table has no tbody"}
	}

	var notes []string
	tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		kind := model.EventUnknown
		if icon := cells.Eq(0).Find("i").First(); icon.Length() > 0 {
			switch {
			case icon.HasClass("icon-control-arm"):
				kind = model.EventArm
			case icon.HasClass("icon-control-disarm"):
				kind = model.EventDisarm
			}
		}

		dateText := strings.TrimSpace(cells.Eq(1).Text())
		message := strings.TrimSpace(cells.Eq(2).Text())

		timestamp, err := parseEventDate(dateText)
		if err != nil {
			notes = append(notes, fmt.Sprintf("could not parse event date %q: %v", dateText, err))
		}

		events = append(events, model.EventRecord{
			Kind:      kind,
			Timestamp: timestamp,
			RawDate:   dateText,
			Message:   message,
		})
	})

	return events, notes
}

// parseEventDate normalizes "DD/MM/YYYY à HHhMM" into a time.Time.
func parseEventDate(text string) (*time.Time, error) {
	s := strings.ReplaceAll(text, "à", "")
	s = strings.ReplaceAll(s, "h", ":")
	s = strings.Join(strings.Fields(s), " ")

	t, err := time.Parse(eventDateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
