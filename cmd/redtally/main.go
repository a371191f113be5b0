package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/redtally/internal/app"
	"github.com/alexanderramin/redtally/internal/cli"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/alexanderramin/redtally/internal/logger"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run() error {
	configPath := config.DefaultPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	stderrTTY := isTerminal(os.Stderr)
	newLogger := func(lc config.LogConfig) zerolog.Logger {
		return logger.New(lc, os.Stderr, stderrTTY)
	}

	a := &cli.App{
		Config:     cfg,
		ConfigPath: configPath,
		Log:        newLogger(cfg.Log),
		NewLogger:  newLogger,
		IsInteractive: func() bool {
			return isTerminal(os.Stdin)
		},
		ShowProgress: func() bool { return stderrTTY },
	}
	a.OpenReports = func(c config.Config) (*app.Reports, error) {
		return app.OpenReports(c, a.Log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(a).ExecuteContext(ctx)
}
