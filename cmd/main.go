package main

import (
	"chat-sim/internal"
	"chat-sim/runtime"
	"chat-sim/seed"
	"chat-sim/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, runs the terminal session and centralizes error reporting.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	display, err := LoadDisplayConfig()
	if err != nil {
		return fmt.Errorf("display config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Seed data
	data, err := seed.Load(config.SeedFile, time.Now())
	if err != nil {
		return fmt.Errorf("seed loading failed: %w", err)
	}

	// 3. Session
	session, err := runtime.NewSession(log, data, config.SessionOptions())
	if err != nil {
		return fmt.Errorf("session setup failed: %w", err)
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session.Start(ctx)
	defer session.Stop()

	// 5. Rendering layer
	sh := newShell(
		services.NewChatService(session.Store, session.Account, session.Clock(), config.Location()),
		services.NewAccountService(session.Account, session.Notices, log),
		session.Notices,
		session,
		session.Account,
		os.Stdout,
		display,
		config.Location(),
	)
	unsubscribe := session.Notices.Subscribe(sh.onNotices)
	defer unsubscribe()

	log.Info("Session ready", "conversations", len(data.Conversations), "account", data.Account.Name)
	err = sh.loop(ctx, os.Stdin)
	log.Info("Program stopped cleanly")
	return err
}
