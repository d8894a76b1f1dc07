package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"retailadmin/console"
	"retailadmin/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := console.Execute(ctx, os.Stdin, os.Stdout, os.Args[1:])
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
