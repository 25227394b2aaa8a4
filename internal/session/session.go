// Package session implements the scheduling workflow: validating collected
// input, resolving identities, normalizing the requested date/time to a
// fixed GMT instant, and driving the card manager.
//
// All user-facing text for the scheduling and cancellation flows is chosen
// here, keeping the failure vocabulary in one place.
package session

import (
	"context"
	"strings"
	"time"
)

// Type is a schedulable session kind.
type Type int

const (
	Shift Type = iota
	Training
	LargeShift
)

// Title is the card name used for this session type.
func (t Type) Title() string {
	switch t {
	case Training:
		return "Training Session"
	case LargeShift:
		return "LARGE SHIFT"
	default:
		return "Shift"
	}
}

// ParseType matches a session-type token case-insensitively against the
// fixed set {shift, training, largeshift}.
func ParseType(token string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "shift":
		return Shift, true
	case "training":
		return Training, true
	case "largeshift":
		return LargeShift, true
	default:
		return 0, false
	}
}

// TypeUsage is the user-facing hint for an unrecognized type token.
const TypeUsage = "Invalid type: shift / training / largeshift"

// Request is one collected scheduling request. Transient; it exists only
// for the duration of a single workflow execution.
type Request struct {
	Type        Type
	Host        string // required username
	Cohost      string // optional username; empty means none
	Description string
	Date        string // MM/DD/YYYY
	Time        string // HH:MM AM/PM
}

// Identity is a resolved external identity.
type Identity struct {
	ID   int64
	Name string
}

// Resolver validates usernames against the identity service. The bool is
// the not-found discriminator; the error is a transport failure.
type Resolver interface {
	Resolve(ctx context.Context, username string) (Identity, bool, error)
}

// Card mirrors the board service's identifier-bearing record.
type Card struct {
	ID   string
	Name string
}

// Cards is the card manager surface the workflow drives. Implementations
// absorb external failures into these shapes; the workflow branches on
// data, not errors.
type Cards interface {
	Create(ctx context.Context, title, desc string, due time.Time) (string, error)
	Find(ctx context.Context, query string) (Card, bool)
	Label(ctx context.Context, cardID, labelName string) bool
}
