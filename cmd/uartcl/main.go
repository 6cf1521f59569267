// Command uartcl is a console toolbox for PS5 repair work: a serial UART
// terminal, NOR dump inspection and patching, and an offline error-code
// database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

// exitCodeGeneric is returned for every command failure.
const exitCodeGeneric = 125

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		stop()
		os.Exit(exitCodeGeneric)
	}
}

func formatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
