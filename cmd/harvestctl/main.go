package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// Exit codes
const (
	exitFailure  = 1
	exitRejected = 2
)

func main() {
	_ = godotenv.Load()

	registry := NewRegistry()
	registry.Register(&WaitForDBCommand{})
	registry.Register(&MigrateCommand{})
	registry.Register(&SeedCommand{})
	registry.Register(&PreviewCommand{})
	registry.Register(&AllocateCommand{})
	registry.Register(&ClaimCommand{})
	registry.Register(&UnclaimCommand{})
	registry.Register(&SweepCommand{})

	if len(os.Args) < 2 {
		registry.PrintHelp()
		os.Exit(exitFailure)
	}

	cmd, ok := registry.Get(os.Args[1])
	if !ok {
		PrintError("Unknown command: %s", os.Args[1])
		registry.PrintHelp()
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args[2:]); err != nil {
		code := exitCode(err)
		if code == exitRejected {
			PrintWarning("%s rejected: %v", cmd.Name(), err)
		} else {
			PrintError("%s failed: %v", cmd.Name(), err)
		}
		stop()
		os.Exit(code)
	}
}

// exitCode separates requests the caller must fix from operational failures
func exitCode(err error) int {
	if domain.IsClientError(err) {
		return exitRejected
	}
	return exitFailure
}
