package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	logx "sessionbot/pkg/logx"
)

type fakeResolver struct {
	users map[string]Identity
	err   error

	calls []string
}

func (f *fakeResolver) Resolve(_ context.Context, username string) (Identity, bool, error) {
	f.calls = append(f.calls, username)
	if f.err != nil {
		return Identity{}, false, f.err
	}
	id, ok := f.users[username]
	return id, ok, nil
}

type created struct {
	title string
	desc  string
	due   time.Time
}

type fakeCards struct {
	cards     []Card
	createErr error
	labelOK   bool

	creates []created
	labels  []string // "cardID/labelName"
	finds   []string
}

func (f *fakeCards) Create(_ context.Context, title, desc string, due time.Time) (string, error) {
	f.creates = append(f.creates, created{title: title, desc: desc, due: due})
	if f.createErr != nil {
		return "", f.createErr
	}
	return "card-1", nil
}

func (f *fakeCards) Find(_ context.Context, query string) (Card, bool) {
	f.finds = append(f.finds, query)
	q := strings.ToLower(query)
	for _, c := range f.cards {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return c, true
		}
	}
	return Card{}, false
}

func (f *fakeCards) Label(_ context.Context, cardID, labelName string) bool {
	f.labels = append(f.labels, cardID+"/"+labelName)
	return f.labelOK
}

func validRequest() Request {
	return Request{
		Type:        Shift,
		Host:        "validUser",
		Description: "Weekly staff shift",
		Date:        "01/15/2025",
		Time:        "02:00 PM",
	}
}

func newTestWorkflow(r *fakeResolver, c *fakeCards) *Workflow {
	return NewWorkflow(r, c, logx.Nop())
}

func TestScheduleEndToEnd(t *testing.T) {
	t.Parallel()
	r := &fakeResolver{users: map[string]Identity{"validUser": {ID: 42, Name: "ValidUser"}}}
	c := &fakeCards{}

	out := newTestWorkflow(r, c).Schedule(context.Background(), validRequest())
	if !out.OK {
		t.Fatalf("schedule failed: %s", out.Message)
	}

	if len(c.creates) != 1 {
		t.Fatalf("creates = %d, want exactly 1", len(c.creates))
	}
	cr := c.creates[0]
	if cr.title != "Shift" {
		t.Fatalf("title = %q, want Shift", cr.title)
	}
	if got := cr.due.Format("2006-01-02T15:04:05-07:00"); got != "2025-01-15T14:00:00+00:00" {
		t.Fatalf("due = %s", got)
	}
	if !strings.Contains(cr.desc, "Host: ValidUser") {
		t.Fatalf("description missing resolved host name: %q", cr.desc)
	}
	if strings.Contains(cr.desc, "Cohost") {
		t.Fatalf("description should omit absent cohost: %q", cr.desc)
	}
}

func TestScheduleMalformedInputMakesNoExternalCalls(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		mut  func(*Request)
	}{
		{name: "bad date", mut: func(r *Request) { r.Date = "2025-01-15" }},
		{name: "bad time", mut: func(r *Request) { r.Time = "14:00" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeResolver{users: map[string]Identity{"validUser": {ID: 42, Name: "ValidUser"}}}
			c := &fakeCards{}
			req := validRequest()
			tt.mut(&req)

			out := newTestWorkflow(r, c).Schedule(context.Background(), req)
			if out.OK {
				t.Fatal("expected validation abort")
			}
			if len(r.calls) != 0 {
				t.Fatalf("resolver calls = %d, want 0", len(r.calls))
			}
			if len(c.creates) != 0 || len(c.labels) != 0 {
				t.Fatal("card operations must not run on validation failure")
			}
		})
	}
}

func TestScheduleUnknownHostAborts(t *testing.T) {
	t.Parallel()
	r := &fakeResolver{users: map[string]Identity{}}
	c := &fakeCards{}

	out := newTestWorkflow(r, c).Schedule(context.Background(), validRequest())
	if out.OK {
		t.Fatal("expected abort for unknown host")
	}
	if out.Message != "Invalid host username." {
		t.Fatalf("message = %q", out.Message)
	}
	if len(c.creates) != 0 {
		t.Fatal("no card may be created for an unknown host")
	}
}

func TestScheduleResolverOutage(t *testing.T) {
	t.Parallel()
	r := &fakeResolver{err: errors.New("connect: timeout")}
	c := &fakeCards{}

	out := newTestWorkflow(r, c).Schedule(context.Background(), validRequest())
	if out.OK {
		t.Fatal("expected abort on resolver outage")
	}
	if !strings.Contains(out.Message, "Try again later") {
		t.Fatalf("message = %q, want retry-later text", out.Message)
	}
	if len(c.creates) != 0 {
		t.Fatal("no card may be created when the resolver is down")
	}
}

func TestScheduleUnresolvableCohostIsNonFatal(t *testing.T) {
	t.Parallel()
	r := &fakeResolver{users: map[string]Identity{"validUser": {ID: 42, Name: "ValidUser"}}}
	c := &fakeCards{}
	req := validRequest()
	req.Cohost = "ghostUser"

	out := newTestWorkflow(r, c).Schedule(context.Background(), req)
	if !out.OK {
		t.Fatalf("schedule failed: %s", out.Message)
	}
	if len(c.creates) != 1 {
		t.Fatalf("creates = %d, want 1", len(c.creates))
	}
	if strings.Contains(c.creates[0].desc, "Cohost") {
		t.Fatalf("unresolvable cohost must be omitted: %q", c.creates[0].desc)
	}
}

func TestScheduleResolvedCohostIncluded(t *testing.T) {
	t.Parallel()
	r := &fakeResolver{users: map[string]Identity{
		"validUser": {ID: 42, Name: "ValidUser"},
		"helper":    {ID: 7, Name: "Helper"},
	}}
	c := &fakeCards{}
	req := validRequest()
	req.Cohost = "helper"

	out := newTestWorkflow(r, c).Schedule(context.Background(), req)
	if !out.OK {
		t.Fatalf("schedule failed: %s", out.Message)
	}
	if !strings.Contains(c.creates[0].desc, "Cohost: Helper") {
		t.Fatalf("description missing cohost: %q", c.creates[0].desc)
	}
}

func TestScheduleCreateFailure(t *testing.T) {
	t.Parallel()
	r := &fakeResolver{users: map[string]Identity{"validUser": {ID: 42, Name: "ValidUser"}}}
	c := &fakeCards{createErr: errors.New("status 500")}

	out := newTestWorkflow(r, c).Schedule(context.Background(), validRequest())
	if out.OK {
		t.Fatal("expected failure outcome")
	}
	if out.Message != "Failed to create the session card." {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestCancelNotFoundIssuesNoLabelCalls(t *testing.T) {
	t.Parallel()
	c := &fakeCards{}

	out := newTestWorkflow(&fakeResolver{}, c).Cancel(context.Background(), "nothing here")
	if out.OK {
		t.Fatal("expected not-found outcome")
	}
	if out.Message != "Session not found." {
		t.Fatalf("message = %q", out.Message)
	}
	if len(c.labels) != 0 {
		t.Fatalf("label calls = %d, want 0", len(c.labels))
	}
}

func TestCancelLabelsFirstMatch(t *testing.T) {
	t.Parallel()
	c := &fakeCards{
		cards:   []Card{{ID: "a", Name: "Weekly Shift #12"}, {ID: "b", Name: "Weekly Shift #13"}},
		labelOK: true,
	}

	out := newTestWorkflow(&fakeResolver{}, c).Cancel(context.Background(), "SHIFT")
	if !out.OK {
		t.Fatalf("cancel failed: %s", out.Message)
	}
	if out.Message != "Session 'Weekly Shift #12' cancelled." {
		t.Fatalf("message = %q", out.Message)
	}
	if len(c.labels) != 1 || c.labels[0] != "a/Cancelled" {
		t.Fatalf("labels = %v, want [a/Cancelled]", c.labels)
	}
}

func TestCancelLabelFailure(t *testing.T) {
	t.Parallel()
	c := &fakeCards{
		cards:   []Card{{ID: "a", Name: "Training Session"}},
		labelOK: false,
	}

	out := newTestWorkflow(&fakeResolver{}, c).Cancel(context.Background(), "training")
	if out.OK {
		t.Fatal("expected failure outcome")
	}
	if out.Message != "Failed to cancel the session." {
		t.Fatalf("message = %q", out.Message)
	}
}
