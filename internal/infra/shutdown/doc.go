// Package shutdown runs cleanup hooks when trakjobs-cli is interrupted.
//
// The handler waits for SIGINT or SIGTERM (or for its context to end) and
// then runs the registered hooks in reverse order under a timeout:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("cancel", func(context.Context) error { cancel(); return nil })
//	go h.Wait(ctx)
package shutdown
