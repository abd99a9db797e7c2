package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/domly/cli"
	"github.com/ardnew/domly/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.ErrorContext(ctx, "render failed", slog.Any("error", err))
		os.Exit(1)
	}
}
