package trello

import (
	"context"
	"strings"
	"time"

	logx "sessionbot/pkg/logx"
)

// Label names used by the scheduling flow. Labels carry workflow state on
// the board; cards are never deleted and labels are never removed.
const (
	LabelScheduled = "Scheduled"
	LabelCancelled = "Cancelled"
)

// dueLayout keeps the explicit numeric offset (never "Z") so the due
// timestamp reads as +00:00 on the card.
const dueLayout = "2006-01-02T15:04:05-07:00"

// Cards is the card manager for the configured list.
//
// Every external failure is absorbed here into an optional/boolean result;
// no error crosses into the workflow layer except from Create, whose caller
// must distinguish created from not-created.
type Cards struct {
	c     *Client
	board *Board
	log   logx.Logger
}

func NewCards(c *Client, board *Board, log logx.Logger) *Cards {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Cards{c: c, board: board, log: log}
}

// Create creates a card with the given due instant, then attaches the
// Scheduled label best-effort: a failed label lookup or attach is logged and
// ignored, it does not undo the creation. The returned error reflects the
// card-creation call only.
func (s *Cards) Create(ctx context.Context, title, desc string, due time.Time) (string, error) {
	cardID, err := s.c.createCard(ctx, title, desc, due.Format(dueLayout))
	if err != nil {
		return "", err
	}

	labelID, ok, err := s.board.LabelID(ctx, LabelScheduled)
	if err != nil || !ok {
		s.log.Warn("scheduled label unavailable; card left unlabeled",
			logx.String("card_id", cardID), logx.Bool("found", ok), logx.Err(err))
		return cardID, nil
	}
	if err := s.c.attachLabel(ctx, cardID, labelID); err != nil {
		s.log.Warn("scheduled label attach failed", logx.String("card_id", cardID), logx.Err(err))
	}
	return cardID, nil
}

// List fetches all cards on the configured list. It returns an empty slice
// on any failure so callers can treat "no match" and "service down"
// uniformly as not found on this read path.
func (s *Cards) List(ctx context.Context) []Card {
	cards, err := s.c.listCards(ctx)
	if err != nil {
		s.log.Warn("card listing failed", logx.Err(err))
		return nil
	}
	return cards
}

// Find returns the first card whose name contains query, case-insensitively,
// in service-provided order. First match is the documented policy; there is
// no tie-break beyond source order.
func (s *Cards) Find(ctx context.Context, query string) (Card, bool) {
	q := strings.ToLower(query)
	for _, c := range s.List(ctx) {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return c, true
		}
	}
	return Card{}, false
}

// Label resolves labelName and attaches it to the card. If resolution fails
// or the label doesn't exist, it reports false without calling the attach
// endpoint.
func (s *Cards) Label(ctx context.Context, cardID, labelName string) bool {
	labelID, ok, err := s.board.LabelID(ctx, labelName)
	if err != nil || !ok {
		return false
	}
	if err := s.c.attachLabel(ctx, cardID, labelID); err != nil {
		s.log.Warn("label attach failed",
			logx.String("card_id", cardID), logx.String("label", labelName), logx.Err(err))
		return false
	}
	return true
}
