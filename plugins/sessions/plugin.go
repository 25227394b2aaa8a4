// Package sessions is the command surface for scheduling and cancelling
// session cards: /schedulesession opens an invoker-bound input form,
// /cancelsession finds and re-labels an existing card.
package sessions

import (
	"context"
	"errors"
	"strings"
	"time"

	"sessionbot/internal/core"
	"sessionbot/internal/gate"
	"sessionbot/internal/session"
	"sessionbot/internal/storage"
	kit "sessionbot/internal/transport"
	logx "sessionbot/pkg/logx"
	"sessionbot/pkg/tgui"
)

const pluginName = "sessions"

// Form field prompts, in collection order. The answers map positionally to
// session.Request fields.
var prompts = []string{
	"Host Roblox username?",
	"Cohost Roblox username? (send - to skip)",
	"Description?",
	"Date? (MM/DD/YYYY)",
	"Time? (HH:MM AM/PM)",
}

// skipToken marks an optional field as intentionally empty.
const skipToken = "-"

type Plugin struct {
	wf    *session.Workflow
	gate  *gate.Gate
	store storage.Store
	log   logx.Logger
}

func New(wf *session.Workflow, g *gate.Gate, store storage.Store, log logx.Logger) *Plugin {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Plugin{wf: wf, gate: g, store: store, log: log.With(logx.String("plugin", pluginName))}
}

func (p *Plugin) Name() string { return pluginName }

func (p *Plugin) Commands() []core.Command {
	return []core.Command{
		{
			Route:       "schedulesession",
			Description: "schedule a session (opens an input form)",
			Usage:       "/schedulesession <shift|training|largeshift>",
			Access:      core.AccessElevated,
			Handle:      p.cmdSchedule,
		},
		{
			Route:       "cancelsession",
			Description: "cancel a scheduled session by name",
			Usage:       "/cancelsession <name>",
			Access:      core.AccessElevated,
			Handle:      p.cmdCancel,
		},
	}
}

func (p *Plugin) cmdSchedule(ctx context.Context, req *core.Request) error {
	if len(req.Args) != 1 {
		return req.Reply(ctx, session.TypeUsage)
	}
	token := req.Args[0]
	if _, ok := session.ParseType(token); !ok {
		return req.Reply(ctx, session.TypeUsage)
	}

	// The handle is bound to the invoker; only they can open the form, and
	// only once.
	id := p.gate.Open(req.FromID, req.Chat.ChatID, strings.ToLower(token), prompts)

	markup := tgui.SingleButton("Schedule Session", tgui.Data(pluginName, "form", id))
	_, err := req.Adapter.SendText(ctx, req.Chat, "Click to schedule:", &kit.SendOptions{
		ReplyMarkupAdapter: markup,
	})
	return err
}

func (p *Plugin) cmdCancel(ctx context.Context, req *core.Request) error {
	query := strings.TrimSpace(strings.Join(req.Args, " "))
	if query == "" {
		return req.Reply(ctx, "Usage: /cancelsession <name>")
	}

	start := time.Now()
	out := p.wf.Cancel(ctx, query)
	p.audit(ctx, req, "cancel", query, out, time.Since(start))
	return req.Reply(ctx, out.Message)
}

// HandleCallback handles the form-open button. A click by anyone but the
// invoker is rejected with a notice and changes nothing.
func (p *Plugin) HandleCallback(ctx context.Context, req *core.Request, action, payload string) error {
	if action != "form" {
		return nil
	}

	first, err := p.gate.Claim(payload, req.FromID)
	switch {
	case errors.Is(err, gate.ErrNotOwner):
		return req.Adapter.AnswerCallback(ctx, req.Update.Callback.ID, "Not for you.")
	case errors.Is(err, gate.ErrExpired), errors.Is(err, gate.ErrNotFound):
		return req.Adapter.AnswerCallback(ctx, req.Update.Callback.ID, "This form is no longer available.")
	case err != nil:
		return err
	}

	_ = req.Adapter.AnswerCallback(ctx, req.Update.Callback.ID, "")
	if err := req.Reply(ctx, first); err != nil {
		// The invoker never saw a prompt; release the handle instead of
		// leaving the form collecting.
		p.gate.Abort(payload)
		return err
	}
	return nil
}

// HandleText feeds plain messages into the invoker's pending form, if any.
func (p *Plugin) HandleText(ctx context.Context, req *core.Request) (bool, error) {
	text := strings.TrimSpace(req.Update.Message.Text)
	next, meta, answers, done, handled := p.gate.Feed(req.Chat.ChatID, req.FromID, text)
	if !handled {
		return false, nil
	}
	if !done {
		return true, req.Reply(ctx, next)
	}

	typ, ok := session.ParseType(meta)
	if !ok {
		// Can't happen: the token was validated before the handle opened.
		return true, req.Reply(ctx, session.TypeUsage)
	}

	sreq := session.Request{
		Type:        typ,
		Host:        answers[0],
		Cohost:      answers[1],
		Description: answers[2],
		Date:        answers[3],
		Time:        answers[4],
	}
	if sreq.Cohost == skipToken {
		sreq.Cohost = ""
	}

	start := time.Now()
	out := p.wf.Schedule(ctx, sreq)
	p.audit(ctx, req, "schedule", typ.Title(), out, time.Since(start))
	return true, req.Reply(ctx, out.Message)
}

// audit is best-effort; a disabled or failing store never affects the
// user-facing outcome.
func (p *Plugin) audit(ctx context.Context, req *core.Request, action, target string, out session.Outcome, took time.Duration) {
	if p.store == nil {
		return
	}
	e := storage.AuditEntry{
		ActorID:       req.FromID,
		ActorUsername: req.FromUsername,
		ChatID:        req.Chat.ChatID,
		Action:        action,
		Target:        target,
		OK:            out.OK,
		TookMS:        took.Milliseconds(),
	}
	if !out.OK {
		e.Error = out.Message
	}
	if err := p.store.AppendAudit(ctx, e); err != nil {
		p.log.Warn("audit append failed", logx.String("action", action), logx.Err(err))
	}
}
