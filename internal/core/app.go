package core

import (
	"context"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"sessionbot/internal/config"
	"sessionbot/internal/gate"
	"sessionbot/internal/storage"
	kit "sessionbot/internal/transport"
	"sessionbot/internal/transport/telegram"
	logx "sessionbot/pkg/logx"
)

const (
	updateQueueSize = 64
	dispatchWorkers = 8
	requestTimeout  = 30 * time.Second
)

// App wires config, logging, transport, router, gate, storage and the cron
// maintenance jobs together.
type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	adapter kit.Adapter
	router  *Router
	gate    *gate.Gate
	store   storage.Store
	cron    *cron.Cron

	updates chan kit.Update
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

func NewApp(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	gateTTL, err := config.ParseDurationOrDefault("gate.ttl", cfg.Gate.TTL, 2*time.Minute)
	if err != nil {
		return nil, err
	}

	var store storage.Store
	if cfg.Storage != nil {
		busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		if err != nil {
			return nil, err
		}
		store, err = storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
	}

	router := NewRouter(adapter, cfg.Telegram.ElevatedUserIDs, log.With(logx.String("comp", "router")),
		MWPanicRecover(log),
		MWTimeout(requestTimeout),
		MWRequestLog(log),
	)

	app := &App{
		cfgMgr:  mgr,
		logSvc:  logSvc,
		log:     log,
		adapter: adapter,
		router:  router,
		gate:    gate.New(gateTTL),
		store:   store,
		cron:    cron.New(),
		updates: make(chan kit.Update, updateQueueSize),
	}

	mgr.OnChange(app.applyConfig)
	return app, nil
}

func (a *App) Logger() logx.Logger  { return a.log }
func (a *App) Gate() *gate.Gate     { return a.gate }
func (a *App) Store() storage.Store { return a.store }
func (a *App) Config() *config.Config {
	return a.cfgMgr.Get()
}

func (a *App) Register(plugins ...Plugin) {
	for _, p := range plugins {
		a.router.Register(p)
		a.log.Info("plugin registered", logx.String("plugin", p.Name()))
	}
}

// applyConfig handles hot reload. Only the reloadable sections apply live:
// log level/sinks and the elevated-user set. Transport and storage changes
// need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.logSvc.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.router.SetElevated(cfg.Telegram.ElevatedUserIDs)
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.adapter.Start(runCtx, a.updates); err != nil {
		cancel()
		return err
	}

	for i := 0; i < dispatchWorkers; i++ {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				case up := <-a.updates:
					a.router.Dispatch(runCtx, up)
				}
			}
		}()
	}

	// Config hot reload.
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cfgMgr.Watch(runCtx)
	}()

	if err := a.startCron(runCtx); err != nil {
		cancel()
		return err
	}
	a.cron.Start()

	// Best-effort readiness for systemd Type=notify units.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	a.log.Info("started")
	return nil
}

func (a *App) startCron(ctx context.Context) error {
	cfg := a.cfgMgr.Get()

	sweepSpec := cfg.Gate.SweepSpec
	if sweepSpec == "" {
		sweepSpec = "@every 1m"
	}
	if _, err := a.cron.AddFunc(sweepSpec, func() {
		if n := a.gate.Sweep(); n > 0 {
			a.log.Debug("expired input handles dropped", logx.Int("count", n))
		}
	}); err != nil {
		return err
	}

	if a.store != nil && cfg.Storage != nil && cfg.Storage.RetentionDays > 0 {
		retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
		pruneSpec := cfg.Storage.PruneSpec
		if pruneSpec == "" {
			pruneSpec = "0 3 * * *"
		}
		if _, err := a.cron.AddFunc(pruneSpec, func() {
			pctx, pcancel := context.WithTimeout(ctx, 30*time.Second)
			defer pcancel()
			n, err := a.store.PruneAudit(pctx, time.Now().Add(-retention))
			if err != nil {
				a.log.Warn("audit prune failed", logx.Err(err))
				return
			}
			if n > 0 {
				a.log.Info("audit rows pruned", logx.Int64("count", n))
			}
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if a.cancel != nil {
		a.cancel()
	}
	<-a.cron.Stop().Done()
	_ = a.adapter.Stop(ctx)
	a.wg.Wait()

	if a.store != nil {
		_ = a.store.Close()
	}
	a.log.Info("stopped")
	return a.logSvc.Close()
}
