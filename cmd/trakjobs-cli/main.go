package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/trakjobs/trakjobs-go/internal/cli/command"
	"github.com/trakjobs/trakjobs-go/internal/infra/shutdown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Ctrl-C cancels in-flight requests and ends browse.
	handler := shutdown.NewHandler(5 * time.Second)
	handler.OnShutdown("cancel", func(context.Context) error {
		cancel()
		return nil
	})
	go handler.Wait(ctx)

	err := command.App().RunContext(ctx, os.Args)
	cancel()
	<-handler.Done()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", command.ErrorText(err))
		os.Exit(1)
	}
}
