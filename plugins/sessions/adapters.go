package sessions

import (
	"context"
	"time"

	"sessionbot/internal/roblox"
	"sessionbot/internal/session"
	"sessionbot/internal/trello"
	logx "sessionbot/pkg/logx"
)

// resolverAdapter narrows the Roblox client to the workflow's Resolver.
type resolverAdapter struct {
	c *roblox.Client
}

func (r resolverAdapter) Resolve(ctx context.Context, username string) (session.Identity, bool, error) {
	id, ok, err := r.c.Resolve(ctx, username)
	if err != nil || !ok {
		return session.Identity{}, ok, err
	}
	return session.Identity{ID: id.ID, Name: id.Name}, true, nil
}

// cardAdapter narrows the Trello card manager to the workflow's Cards.
type cardAdapter struct {
	cards *trello.Cards
}

func (a cardAdapter) Create(ctx context.Context, title, desc string, due time.Time) (string, error) {
	return a.cards.Create(ctx, title, desc, due)
}

func (a cardAdapter) Find(ctx context.Context, query string) (session.Card, bool) {
	c, ok := a.cards.Find(ctx, query)
	if !ok {
		return session.Card{}, false
	}
	return session.Card{ID: c.ID, Name: c.Name}, true
}

func (a cardAdapter) Label(ctx context.Context, cardID, labelName string) bool {
	return a.cards.Label(ctx, cardID, labelName)
}

func newCardService(s Settings, timeout time.Duration, log logx.Logger) session.Cards {
	client := trello.New(trello.Config{
		Key:        s.Trello.Key,
		Token:      s.Trello.Token,
		ListID:     s.Trello.ListID,
		BaseURL:    s.Trello.BaseURL,
		Timeout:    timeout,
		RatePerSec: s.Trello.RatePerSec,
	}, log.With(logx.String("comp", "trello")))
	board := trello.NewBoard(client)
	return cardAdapter{cards: trello.NewCards(client, board, log.With(logx.String("comp", "trello")))}
}

func newResolver(s Settings, timeout time.Duration, log logx.Logger) session.Resolver {
	return resolverAdapter{c: roblox.New(roblox.Config{
		BaseURL:    s.Roblox.BaseURL,
		Timeout:    timeout,
		RatePerSec: s.Roblox.RatePerSec,
	}, log.With(logx.String("comp", "roblox")))}
}
