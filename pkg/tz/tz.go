package tz

import "time"

// Zulu is the aviation standard timezone (UTC). All event times shown to
// pilots are rendered in zulu, never in a local zone.
var Zulu = time.UTC

// FormatZulu renders t as a zulu timestamp (e.g. "1830z 29 Aug 2026").
// Zero times render empty.
func FormatZulu(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Zulu).Format("1504z 02 Jan 2006")
}
