package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sessionbot/internal/core"
	logx "sessionbot/pkg/logx"
	"sessionbot/plugins/sessions"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.Parse()

	// Secrets (telegram token, trello key/token) usually live in .env and
	// are referenced from the config as ${VAR}.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := core.NewApp(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	log := app.Logger()

	cfg := app.Config()
	if pc, ok := cfg.Plugins["sessions"]; ok && pc.Enabled {
		p, err := sessions.FromConfig(pc.Config, app.Gate(), app.Store(), log)
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		app.Register(p)
	} else {
		log.Warn("sessions plugin is not enabled", logx.String("config", cfgPath))
	}

	if err := app.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		os.Exit(1)
	}

	<-ctx.Done()
	_ = app.Stop(context.Background())
}
