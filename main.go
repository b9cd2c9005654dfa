package main

import (
	"context"
	"os"
	"os/signal"

	"ui_automation/presentation/terminal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := terminal.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
