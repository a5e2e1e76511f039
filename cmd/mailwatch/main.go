package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"

	"github.com/ejohansen/mailwatch/internal/config"
	"github.com/ejohansen/mailwatch/internal/control"
	"github.com/ejohansen/mailwatch/internal/mailbox"
	"github.com/ejohansen/mailwatch/internal/monitor"
)

const stopTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	initConfig := flag.Bool("init", false, "write a starter configuration file and exit")
	flag.Parse()

	if *initConfig {
		if err := config.Default().Save(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s; fill in account, app password, and keyword before starting\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Keep browser launch chatter out of the log stream.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	logCh := make(chan string, 256)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for line := range logCh {
			fmt.Printf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), line)
		}
	}()

	logger := slog.New(control.NewLineHandler(logCh, parseLevel(cfg.LogLevel)))
	logger.Info("mailwatch starting", "server", cfg.Server, "account", cfg.Account, "keyword", cfg.Keyword)

	dialer, err := newDialer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	mon := monitor.New(cfg, dialer, monitor.OpenFunc(browser.OpenURL), logger)

	runner := control.NewRunner()
	if err := runner.Start(mon.Run); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	logger.Info("shutting down, waiting for monitor to finish...")

	// Force exit on second signal.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		fmt.Fprintln(os.Stderr, "forced shutdown")
		os.Exit(1)
	}()

	if err := runner.Stop(stopTimeout); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	} else {
		logger.Info("mailwatch stopped")
	}

	close(logCh)
	<-drained
}

func newDialer(cfg *config.Config, logger *slog.Logger) (mailbox.Dialer, error) {
	switch cfg.Protocol {
	case "imap":
		return mailbox.NewIMAP(cfg.Server, cfg.Port, cfg.Account, cfg.Password, cfg.Mailbox, logger), nil
	case "pop3":
		return mailbox.NewPOP3(cfg.Server, cfg.Port, cfg.Account, cfg.Password, logger), nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", cfg.Protocol)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
