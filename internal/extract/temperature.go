package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"alarm-status-backend/internal/model"
)

// slugReplacer folds the accent forms the portal actually emits. The slug is
// the stable key the host uses to track a physical sensor across polls.
var slugReplacer = strings.NewReplacer(" ", "_", "é", "e", "&eacute;", "e")

// Slug derives a stable sensor identifier from a room name.
func Slug(name string) string {
	return slugReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Temperatures parses the room temperature table into readings keyed by
// sensor slug. Missing structure or unparseable rows never fail the whole
// extraction; they are reported as diagnostic notes instead.
func Temperatures(html string) (map[string]model.TemperatureReading, []string) {
	readings := make(map[string]model.TemperatureReading)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return readings, []string{fmt.Sprintf("unparseable markup: %v", err)}
	}

	table := doc.Find("table[class*='table']").First()
	if table.Length() == 0 {
		return readings, []string{"temperature table not found"}
	}

	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return readings, []string{"temperature table has no tbody"}
	}

	var notes []string
	tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		roomName := strings.TrimSpace(cells.Eq(0).Text())

		// The value cell embeds the unit in a superscript; drop it before
		// reading the text.
		valueCell := cells.Eq(1).Clone()
		valueCell.Find("sup").Remove()
		valueText := strings.TrimSpace(valueCell.Text())

		if roomName == "" || valueText == "" {
			return
		}

		raw := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(valueText, "°C", ""), "°", ""))
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			notes = append(notes, fmt.Sprintf("could not parse temperature %q for room %q: %v", valueText, roomName, err))
			return
		}

		slug := Slug(roomName)
		readings[slug] = model.TemperatureReading{
			SensorID: slug,
			Name:     roomName,
			Value:    value,
			Unit:     "°C",
		}
	})

	return readings, notes
}
