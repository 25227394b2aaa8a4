package session

import (
	"context"

	logx "sessionbot/pkg/logx"
)

// Outcome is the user-visible result of one workflow execution.
type Outcome struct {
	OK      bool
	Message string
}

func aborted(msg string) Outcome { return Outcome{OK: false, Message: msg} }

// Workflow orchestrates scheduling and cancellation. Each invocation runs
// independently; the only shared state lives in the card manager's board
// metadata cache.
type Workflow struct {
	resolver Resolver
	cards    Cards
	log      logx.Logger
}

func NewWorkflow(resolver Resolver, cards Cards, log logx.Logger) *Workflow {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Workflow{resolver: resolver, cards: cards, log: log}
}

// Schedule runs the collected request through resolving, normalizing and
// creating. Validation failures abort before any card operation; the card
// is created at most once per successful completion.
func (w *Workflow) Schedule(ctx context.Context, req Request) Outcome {
	// Normalizing first: malformed input must abort before any external call.
	due, err := normalizeDue(req.Date, req.Time)
	if err != nil {
		return aborted(err.Error())
	}

	// Resolving: host is mandatory.
	host, found, err := w.resolver.Resolve(ctx, req.Host)
	if err != nil {
		w.log.Warn("host resolution failed", logx.String("username", req.Host), logx.Err(err))
		return aborted("The identity service is unavailable. Try again later.")
	}
	if !found {
		return aborted("Invalid host username.")
	}

	// Cohost is optional and non-fatal: an unresolvable cohost just drops
	// the cohost line.
	cohostName := ""
	if req.Cohost != "" {
		cohost, ok, err := w.resolver.Resolve(ctx, req.Cohost)
		if err != nil {
			w.log.Warn("cohost resolution failed", logx.String("username", req.Cohost), logx.Err(err))
		} else if ok {
			cohostName = cohost.Name
		}
	}

	n := Normalized{
		Title:            req.Type.Title(),
		DescriptionBlock: buildDescription(req, host.Name, cohostName),
		Due:              due,
	}

	cardID, err := w.cards.Create(ctx, n.Title, n.DescriptionBlock, n.Due)
	if err != nil {
		w.log.Error("card creation failed", logx.String("title", n.Title), logx.Err(err))
		return aborted("Failed to create the session card.")
	}

	w.log.Info("session scheduled",
		logx.String("card_id", cardID),
		logx.String("title", n.Title),
		logx.Time("due", n.Due))
	return Outcome{OK: true, Message: "Session scheduled."}
}

// Cancel locates a card by fuzzy name match and applies the Cancelled
// label. Cancellation state lives only on the card; nothing is read back.
func (w *Workflow) Cancel(ctx context.Context, query string) Outcome {
	card, found := w.cards.Find(ctx, query)
	if !found {
		return aborted("Session not found.")
	}
	if !w.cards.Label(ctx, card.ID, "Cancelled") {
		return aborted("Failed to cancel the session.")
	}
	w.log.Info("session cancelled", logx.String("card_id", card.ID), logx.String("name", card.Name))
	return Outcome{OK: true, Message: "Session '" + card.Name + "' cancelled."}
}
