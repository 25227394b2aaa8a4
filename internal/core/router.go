package core

import (
	"context"
	"strings"
	"sync"

	kit "sessionbot/internal/transport"
	logx "sessionbot/pkg/logx"
)

// Router dispatches incoming updates to plugin commands, callbacks and text
// handlers. Permission checks happen here so no plugin ever runs for a
// caller below its declared access tier.
type Router struct {
	adapter kit.Adapter
	log     logx.Logger

	// elevated is swapped on config reload while dispatch workers read it.
	mu       sync.RWMutex
	elevated map[int64]bool

	cmds      map[string]Command
	callbacks map[string]CallbackHandler
	texts     []TextHandler

	mw []Middleware
}

func NewRouter(adapter kit.Adapter, elevatedIDs []int64, log logx.Logger, mw ...Middleware) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	elevated := make(map[int64]bool, len(elevatedIDs))
	for _, id := range elevatedIDs {
		elevated[id] = true
	}
	return &Router{
		adapter:   adapter,
		log:       log,
		elevated:  elevated,
		cmds:      map[string]Command{},
		callbacks: map[string]CallbackHandler{},
		mw:        mw,
	}
}

// Register adds a plugin's commands and optional callback/text hooks.
func (r *Router) Register(p Plugin) {
	for _, c := range p.Commands() {
		route := strings.TrimPrefix(strings.ToLower(c.Route), "/")
		r.cmds[route] = c
	}
	if cb, ok := p.(CallbackHandler); ok {
		r.callbacks[p.Name()] = cb
	}
	if th, ok := p.(TextHandler); ok {
		r.texts = append(r.texts, th)
	}
}

// SetElevated replaces the elevated-user set (config reload).
func (r *Router) SetElevated(ids []int64) {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	r.mu.Lock()
	r.elevated = m
	r.mu.Unlock()
}

func (r *Router) isElevated(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.elevated[id]
}

// Dispatch routes one update. It is called from the app's worker pool; each
// call is independent.
func (r *Router) Dispatch(ctx context.Context, up kit.Update) {
	switch up.Kind {
	case kit.UpdateMessage:
		if up.Message == nil {
			return
		}
		r.dispatchMessage(ctx, up)
	case kit.UpdateCallback:
		if up.Callback == nil {
			return
		}
		r.dispatchCallback(ctx, up)
	}
}

func (r *Router) dispatchMessage(ctx context.Context, up kit.Update) {
	m := up.Message
	req := &Request{
		Update:       up,
		Chat:         kit.ChatTarget{ChatID: m.ChatID, ThreadID: m.ThreadID},
		FromID:       m.FromID,
		FromUsername: m.FromUsername,
		Adapter:      r.adapter,
		Log:          r.log,
	}

	if !strings.HasPrefix(m.Text, "/") {
		r.dispatchText(ctx, req)
		return
	}

	fields := strings.Fields(m.Text)
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	// Strip the "@botname" suffix used in groups.
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	cmd, ok := r.cmds[name]
	if !ok {
		return
	}
	req.Command = name
	req.Args = fields[1:]

	if cmd.Access == AccessElevated && !r.isElevated(req.FromID) {
		_ = req.Reply(ctx, "You do not have permission to run this command.")
		return
	}

	h := Chain(cmd.Handle, r.mw...)
	if err := h(ctx, req); err != nil {
		r.log.Warn("command handler error", logx.String("cmd", name), logx.Err(err))
	}
}

func (r *Router) dispatchText(ctx context.Context, req *Request) {
	h := Chain(func(ctx context.Context, req *Request) error {
		for _, th := range r.texts {
			handled, err := th.HandleText(ctx, req)
			if err != nil {
				return err
			}
			if handled {
				return nil
			}
		}
		return nil
	}, r.mw...)
	if err := h(ctx, req); err != nil {
		r.log.Warn("text handler error", logx.Err(err))
	}
}

// Callback data format: "plugin:action:payload" (payload optional).
func (r *Router) dispatchCallback(ctx context.Context, up kit.Update) {
	cb := up.Callback
	data := strings.TrimPrefix(cb.Data, "\f") // telebot unique-data prefix
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 {
		return
	}
	handler, ok := r.callbacks[parts[0]]
	if !ok {
		return
	}
	action := parts[1]
	payload := ""
	if len(parts) == 3 {
		payload = parts[2]
	}

	req := &Request{
		Update:  up,
		Chat:    kit.ChatTarget{ChatID: cb.ChatID, ThreadID: cb.ThreadID},
		FromID:  cb.FromID,
		Adapter: r.adapter,
		Log:     r.log,
	}

	h := Chain(func(ctx context.Context, req *Request) error {
		return handler.HandleCallback(ctx, req, action, payload)
	}, r.mw...)
	if err := h(ctx, req); err != nil {
		r.log.Warn("callback handler error", logx.String("action", action), logx.Err(err))
	}
}
