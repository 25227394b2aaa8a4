package trello

import (
	"context"
	"sync"
)

// Board resolves board-scoped metadata for the configured list.
//
// The board id is structurally immutable within a run (a list does not
// change parent boards mid-process), so it is fetched once and memoized.
// Label sets are mutable by board admins, so they are read fresh on every
// lookup; only the board id is cached.
type Board struct {
	c *Client

	mu      sync.Mutex
	boardID string
}

func NewBoard(c *Client) *Board { return &Board{c: c} }

// BoardID returns the id of the board owning the configured list.
//
// The first successful call populates the cache; later calls return the
// cached value without a network round trip. A failed fetch does not poison
// the cache: the next call retries.
func (b *Board) BoardID(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.boardID != "" {
		return b.boardID, nil
	}
	id, err := b.c.getListBoard(ctx)
	if err != nil {
		return "", err
	}
	b.boardID = id
	return id, nil
}

// LabelID resolves a label name to its id on the owning board.
//
// The match is exact and case-sensitive. The label list is re-fetched on
// every call; label sets are small and may change at any time, so staleness
// is traded for a round trip.
func (b *Board) LabelID(ctx context.Context, name string) (string, bool, error) {
	boardID, err := b.BoardID(ctx)
	if err != nil {
		return "", false, err
	}
	labels, err := b.c.getLabels(ctx, boardID)
	if err != nil {
		return "", false, err
	}
	for _, l := range labels {
		if l.Name == name {
			return l.ID, true, nil
		}
	}
	return "", false, nil
}
