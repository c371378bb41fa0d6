// Command coursekit extracts Canvas course content.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/coursekit/internal/adapters/driving/cli"
	"github.com/custodia-labs/coursekit/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	err := cli.Execute(ctx, app.Wire)
	if err == nil {
		return
	}
	if !cli.IsResultFailure(err) {
		err = fmt.Errorf("error: %w", err)
	}
	fmt.Fprintln(os.Stderr, err)
	stop()
	os.Exit(1)
}
