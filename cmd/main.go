package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/examshare/examshare-client/internal/config"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	if len(args) > 0 && (args[0] == "version" || args[0] == "-version") {
		logAppVersion()
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Printf("failed to parse config: %v", err)
		return 2
	}
	logger := logger.New(cfg.LogLevel)

	a, err := newApp(ctx, cfg, logger, os.Stdout, os.Stderr)
	if err != nil {
		logger.Fatal("failed to initialize", "error", err)
	}
	defer a.Close()
	defer a.flushMetrics()

	return exitCode(run(ctx, a, args), logger)
}

func exitCode(err error, logger *logger.Logger) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		usage(os.Stderr)
		return 2
	case errors.Is(err, model.ErrUnauthenticated):
		// The navigator has already told the user to log in again.
		logger.Debug("command failed", "error", err)
		return 1
	default:
		logger.Error("command failed", "error", err)
		return 1
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
