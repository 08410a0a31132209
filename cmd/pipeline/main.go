package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/xyz-retail/salespipe/app/pipeline"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	defer cancel()

	app := pipeline.Initialize(ctx)

	app.Start(ctx)
}
