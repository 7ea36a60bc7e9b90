// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fintrack/core/appcontext"
	"fintrack/core/config"
)

func main() {
	// Create the logger instance at the very beginning.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if len(os.Args) < 2 {
		logger.Error("Usage: fintrack <command> [options]", "commands", commandNames())
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if err := run(logger, command, args); err != nil {
		logger.Error("Application terminated with an error", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, command string, args []string) error {
	handler, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command: %s", command)
	}

	baseCtx := appcontext.WithLogger(context.Background(), logger)
	cfg := config.LoadConfig(baseCtx, logger)

	ctx, cancel := context.WithTimeout(baseCtx, cfg.Timeout)
	defer cancel()

	return handler(ctx, cfg, args, os.Stdout)
}
