package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/homestead/cmd/homestead"
	"github.com/arthur-debert/homestead/pkg/style"
)

func main() {
	style.Configure(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := homestead.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		style.Error(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
