package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"alarm-status-backend/internal/model"
)

// Status reads the alarm state out of a status-block page. Three signals are
// checked in order of increasing reliability, each overriding the previous:
// the highlighted status label, the control icon, and the repeated status
// rows (last row wins). The portal's markup is inconsistent across pages and
// firmware versions, so the later, more specific signals take precedence.
// The second return is false when none of the signals were found.
func Status(html string) (model.AlarmStatus, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return model.AlarmStatus{}, false
	}

	var status model.AlarmStatus
	found := false

	if label := doc.Find("span.highlighted").First(); label.Length() > 0 {
		text := strings.TrimSpace(label.Text())
		lower := strings.ToLower(text)
		// "désactivée" contains "activée"; the negative form must be
		// checked first.
		armed := !strings.Contains(lower, "désactivée") &&
			(strings.Contains(lower, "activée") || strings.Contains(lower, "armée"))
		status = model.AlarmStatus{StatusText: text, Armed: armed}
		found = true
	}

	if icon := doc.Find("i[class*='icon-control']").First(); icon.Length() > 0 {
		switch {
		case icon.HasClass("icon-control-arm"):
			status = model.AlarmStatus{StatusText: "Alarme activée", Armed: true}
			found = true
		case icon.HasClass("icon-control-disarm"):
			status = model.AlarmStatus{StatusText: "Alarme désactivée", Armed: false}
			found = true
		}
	}

	doc.Find("div.row.status").Each(func(_ int, row *goquery.Selection) {
		label := row.Find("span.highlighted").First()
		if label.Length() == 0 {
			return
		}
		if row.Find("i[class*='icon-control']").Length() == 0 {
			return
		}
		text := strings.TrimSpace(label.Text())
		status = model.AlarmStatus{
			StatusText: text,
			Armed:      !strings.Contains(strings.ToLower(text), "désactivée"),
		}
		found = true
	})

	return status, found
}
