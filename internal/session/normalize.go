package session

import (
	"errors"
	"strings"
	"time"
)

// Date/time input formats. Parsing is strict: two-digit month/day/minute,
// four-digit year, 12-hour clock with meridiem (case-insensitive).
const (
	dateLayout = "01/02/2006"
	timeLayout = "03:04 PM"
)

// gmt is the fixed reference zone for due instants: offset +00:00, no
// daylight saving, so the wall clock the user typed is the wall clock on
// the card.
var gmt = time.FixedZone("GMT", 0)

// ErrBadDateTime is the validation failure for malformed date/time input.
// It is user-correctable and surfaced verbatim.
var ErrBadDateTime = errors.New("Invalid date or time format. Use MM/DD/YYYY and HH:MM AM/PM.")

// Normalized is a request reduced to what the card manager needs. Consumed
// once by card creation.
type Normalized struct {
	Title            string
	DescriptionBlock string
	Due              time.Time
}

// normalizeDue parses the date and time strings and combines them into an
// instant anchored to GMT. No external call happens before this validation.
func normalizeDue(dateStr, timeStr string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, ErrBadDateTime
	}
	t, err := time.Parse(timeLayout, strings.ToUpper(strings.TrimSpace(timeStr)))
	if err != nil {
		return time.Time{}, ErrBadDateTime
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, gmt), nil
}

// buildDescription renders the card description block with fixed field
// order: Host, optional Cohost, Description, Date, Time GMT.
func buildDescription(req Request, hostName, cohostName string) string {
	var b strings.Builder
	b.WriteString("Host: ")
	b.WriteString(hostName)
	if cohostName != "" {
		b.WriteString("\nCohost: ")
		b.WriteString(cohostName)
	}
	b.WriteString("\nDescription: ")
	b.WriteString(req.Description)
	b.WriteString("\nDate: ")
	b.WriteString(req.Date)
	b.WriteString("\nTime: ")
	b.WriteString(req.Time)
	b.WriteString(" GMT")
	return b.String()
}
