// Command cpctl is a command line client for firewall management servers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexfrei/go-cpapi/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()

	os.Exit(code)
}
