package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"arenasrv/internal/config"
	"arenasrv/internal/game"
	"arenasrv/internal/log"
	netlisten "arenasrv/internal/net"
	"arenasrv/internal/scheduler"
)

func runApp() (err error) {
	var cfg *config.Config
	if cfg, err = config.Load(); err != nil {
		return
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	g := game.New(cfg)

	go scheduler.Run(appCtx, g.Tick)

	listener := netlisten.NewListener(cfg.Addr(), g.Sessions)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Infof("server: shutdown signal received")
		appCancel()
		_ = listener.Shutdown(context.Background())
	}()

	if err = listener.ListenAndServe(); err != nil {
		if appCtx.Err() != nil {
			// Shutdown was requested; a closed-listener error is expected.
			return nil
		}
		err = fmt.Errorf("server: bind failed: %w", err)
	}
	return
}

func main() {
	if err := runApp(); err != nil {
		// A failure here means the server never started; exit non-zero.
		log.Fatalf("%v", err)
	}
}
