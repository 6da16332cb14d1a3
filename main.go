// ./main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/xkilldash9x/guardian/cmd"
	"github.com/xkilldash9x/guardian/internal/observability"
)

const panicLogFile = "panic.log"

var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

// main is the entry point for the guardian CLI.
func main() {
	defer handlePanic()

	// Cancel in-flight model calls and shut the server down on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			osExit(0)
			return
		}
		osExit(1)
	}
}

// handlePanic records the panic and stack trace to panicLogFile and exits non-zero.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	report := fmt.Sprintf("time: %s\npanic: %v\n\n%s", time.Now().UTC().Format(time.RFC3339), r, debug.Stack())
	fmt.Fprintf(os.Stderr, "guardian crashed: %v\n", r)
	if err := osWriteFile(panicLogFile, []byte(report), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", panicLogFile, err)
	} else {
		fmt.Fprintf(os.Stderr, "details written to %s\n", panicLogFile)
	}
	osExit(2)
}
