package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshsymonds/gmailpack/internal/runtime"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	cancel()
	if err != nil {
		runtime.DefaultLogger().Error("gmailpack failed", "error", err)
		os.Exit(1)
	}
}
