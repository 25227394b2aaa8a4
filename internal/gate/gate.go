// Package gate correlates an asynchronous multi-field input form back to
// the user who triggered it.
//
// A handle is a capability: it is bound to the invoking user, honored at
// most once, and expires after a bounded idle period so abandoned forms
// never leak. Claims from any other identity are rejected with no state
// change and no external calls.
package gate

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("gate: no such handle")
	ErrNotOwner = errors.New("gate: handle belongs to another user")
	ErrExpired  = errors.New("gate: handle expired")
)

type state int

const (
	statePending state = iota // button shown, not yet claimed
	stateCollecting
	stateDone
)

// Handle is one pending input collection. Fields are filled strictly in
// prompt order. Accessors are only safe through the owning Gate.
type Handle struct {
	ID    string
	Owner int64
	Chat  int64

	meta    string // opaque caller context, returned on completion
	prompts []string
	answers []string
	st      state
	exp     time.Time
}

// Gate owns all pending handles for the process.
type Gate struct {
	mu  sync.Mutex
	ttl time.Duration

	handles map[string]*Handle
	// active maps (chat, user) to the handle currently collecting input
	// there. One active form per user per chat.
	active map[[2]int64]string
}

func New(ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Gate{
		ttl:     ttl,
		handles: map[string]*Handle{},
		active:  map[[2]int64]string{},
	}
}

func newID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Open registers a pending handle bound to owner in chat, with the given
// field prompts. meta is opaque caller context handed back on completion.
// The returned id goes into the button callback payload.
func (g *Gate) Open(owner, chat int64, meta string, prompts []string) string {
	h := &Handle{
		ID:      newID(),
		Owner:   owner,
		Chat:    chat,
		meta:    meta,
		prompts: append([]string(nil), prompts...),
		st:      statePending,
	}
	g.mu.Lock()
	h.exp = time.Now().Add(g.ttl)
	g.handles[h.ID] = h
	g.mu.Unlock()
	return h.ID
}

// Claim moves a pending handle to collecting, on behalf of from. Only the
// owner may claim; a foreign claim changes nothing. Claiming an already
// collecting or completed handle is a no-op error. It returns the first
// prompt on success.
func (g *Gate) Claim(id string, from int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, ok := g.handles[id]
	if !ok {
		return "", ErrNotFound
	}
	if h.Owner != from {
		return "", ErrNotOwner
	}
	now := time.Now()
	if now.After(h.exp) {
		g.dropLocked(h)
		return "", ErrExpired
	}
	if h.st != statePending {
		return "", ErrNotFound
	}

	h.st = stateCollecting
	h.exp = now.Add(g.ttl)
	g.active[[2]int64{h.Chat, h.Owner}] = h.ID
	if len(h.prompts) == 0 {
		return "", nil
	}
	return h.prompts[0], nil
}

// Feed records one answer for the active form of (chat, from).
//
// Returns the next prompt while the form is incomplete. When the final
// field arrives the handle is consumed (single use) and done=true with the
// caller meta and full answer list. handled=false means no form was waiting
// for this user.
func (g *Gate) Feed(chat, from int64, text string) (next, meta string, answers []string, done, handled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := g.active[[2]int64{chat, from}]
	if !ok {
		return "", "", nil, false, false
	}
	h, ok := g.handles[id]
	if !ok || h.st != stateCollecting {
		delete(g.active, [2]int64{chat, from})
		return "", "", nil, false, false
	}
	now := time.Now()
	if now.After(h.exp) {
		g.dropLocked(h)
		return "", "", nil, false, false
	}

	h.answers = append(h.answers, text)
	if len(h.answers) < len(h.prompts) {
		h.exp = now.Add(g.ttl)
		return h.prompts[len(h.answers)], "", nil, false, true
	}

	// Complete: consume the handle.
	h.st = stateDone
	out := append([]string(nil), h.answers...)
	g.dropLocked(h)
	return "", h.meta, out, true, true
}

// Abort releases a handle on any exit path (e.g. the workflow declined the
// input). Unknown ids are ignored.
func (g *Gate) Abort(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.handles[id]; ok {
		g.dropLocked(h)
	}
}

// Sweep drops expired handles and reports how many were removed. Run it
// periodically; unbounded abandonment must not leak state.
func (g *Gate) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	n := 0
	for _, h := range g.handles {
		if now.After(h.exp) {
			g.dropLocked(h)
			n++
		}
	}
	return n
}

// Pending reports how many handles are live (for health/tests).
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

func (g *Gate) dropLocked(h *Handle) {
	delete(g.handles, h.ID)
	key := [2]int64{h.Chat, h.Owner}
	if g.active[key] == h.ID {
		delete(g.active, key)
	}
}
