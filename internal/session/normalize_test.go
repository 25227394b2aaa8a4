package session

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeDueValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		date string
		tme  string
		want string // RFC3339 with explicit offset
	}{
		{name: "afternoon", date: "01/15/2025", tme: "02:00 PM", want: "2025-01-15T14:00:00+00:00"},
		{name: "morning", date: "12/31/2024", tme: "09:30 AM", want: "2024-12-31T09:30:00+00:00"},
		{name: "lowercase meridiem", date: "06/01/2025", tme: "11:45 pm", want: "2025-06-01T23:45:00+00:00"},
		{name: "noon", date: "03/10/2025", tme: "12:00 PM", want: "2025-03-10T12:00:00+00:00"},
		{name: "midnight", date: "03/10/2025", tme: "12:00 AM", want: "2025-03-10T00:00:00+00:00"},
		{name: "surrounding spaces", date: " 01/15/2025 ", tme: " 02:00 PM ", want: "2025-01-15T14:00:00+00:00"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDue(tt.date, tt.tme)
			if err != nil {
				t.Fatalf("normalizeDue(%q, %q) error: %v", tt.date, tt.tme, err)
			}
			if s := got.Format("2006-01-02T15:04:05-07:00"); s != tt.want {
				t.Fatalf("due = %s, want %s", s, tt.want)
			}
			if _, off := got.Zone(); off != 0 {
				t.Fatalf("offset = %d, want 0", off)
			}
		})
	}
}

func TestNormalizeDueInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		date string
		tme  string
	}{
		{name: "dashes in date", date: "2025-01-15", tme: "02:00 PM"},
		{name: "day first", date: "15/01/2025", tme: "02:00 PM"},
		{name: "two digit year", date: "01/15/25", tme: "02:00 PM"},
		{name: "24h time", date: "01/15/2025", tme: "14:00"},
		{name: "missing meridiem", date: "01/15/2025", tme: "02:00"},
		{name: "hour out of range", date: "01/15/2025", tme: "13:00 PM"},
		{name: "empty date", date: "", tme: "02:00 PM"},
		{name: "empty time", date: "01/15/2025", tme: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := normalizeDue(tt.date, tt.tme); err == nil {
				t.Fatalf("normalizeDue(%q, %q) expected error", tt.date, tt.tme)
			}
		})
	}
}

func TestBuildDescriptionFieldOrder(t *testing.T) {
	t.Parallel()
	req := Request{
		Description: "Weekly staff shift",
		Date:        "01/15/2025",
		Time:        "02:00 PM",
	}

	got := buildDescription(req, "HostUser", "CohostUser")
	want := "Host: HostUser\nCohost: CohostUser\nDescription: Weekly staff shift\nDate: 01/15/2025\nTime: 02:00 PM GMT"
	if got != want {
		t.Fatalf("description = %q, want %q", got, want)
	}
}

func TestBuildDescriptionOmitsCohost(t *testing.T) {
	t.Parallel()
	req := Request{Description: "d", Date: "01/15/2025", Time: "02:00 PM"}

	got := buildDescription(req, "HostUser", "")
	if strings.Contains(got, "Cohost") {
		t.Fatalf("description should omit cohost line: %q", got)
	}
	if !strings.HasPrefix(got, "Host: HostUser\nDescription: ") {
		t.Fatalf("unexpected field order: %q", got)
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		token string
		want  Type
		ok    bool
	}{
		{token: "shift", want: Shift, ok: true},
		{token: "SHIFT", want: Shift, ok: true},
		{token: "Training", want: Training, ok: true},
		{token: "largeshift", want: LargeShift, ok: true},
		{token: "LargeShift", want: LargeShift, ok: true},
		{token: "meeting", ok: false},
		{token: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseType(tt.token)
		if ok != tt.ok {
			t.Fatalf("ParseType(%q) ok = %v, want %v", tt.token, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("ParseType(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestTypeTitles(t *testing.T) {
	t.Parallel()
	if got := Shift.Title(); got != "Shift" {
		t.Fatalf("Shift title = %q", got)
	}
	if got := Training.Title(); got != "Training Session" {
		t.Fatalf("Training title = %q", got)
	}
	if got := LargeShift.Title(); got != "LARGE SHIFT" {
		t.Fatalf("LargeShift title = %q", got)
	}
}

// Guard: the due instant's wall clock must survive a round trip through the
// fixed reference zone for arbitrary valid inputs.
func TestNormalizeDueWallClock(t *testing.T) {
	t.Parallel()
	got, err := normalizeDue("07/04/2026", "06:15 PM")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 7, 4, 18, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("due = %v, want instant %v", got, want)
	}
}
