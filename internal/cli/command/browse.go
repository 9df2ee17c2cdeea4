package command

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/cli/repl"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/core/listing"
	"github.com/trakjobs/trakjobs-go/internal/infra/confloader"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/metric"
)

const historyFile = "browse_history"

// BrowseCommand opens the interactive client list.
func BrowseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse clients interactively (type help inside)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address while browsing, e.g. 127.0.0.1:9464",
			},
		},
		Action: browse,
	}
}

func browse(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}

	if addr := c.String("metrics-addr"); addr != "" {
		stop := serveMetrics(addr, e.Logger)
		defer stop()
	}
	if stop := watchLogLevel(e); stop != nil {
		defer stop()
	}

	list := listing.NewListController[domain.Client](e.Clients.List, listing.Config{
		PageSize: e.Config.List.PageSize,
		Debounce: e.Config.List.Debounce,
		Metrics:  e.Metrics,
		Logger:   e.Logger,
	})

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	b := repl.New(repl.Config{
		List:    list,
		Lookup:  e.Clients.Get,
		Printer: e.Printer,
		In:      in,
		History: repl.NewHistory(filepath.Join(e.Config.Session.Dir, historyFile)),
		Logger:  e.Logger,
	})
	return b.Run(c.Context)
}

// serveMetrics exposes the registry until the returned func is called.
func serveMetrics(addr string, log logger.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metric.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// watchLogLevel re-reads the config file on change and applies its log
// level. It returns nil when the file cannot be watched.
func watchLogLevel(e *Env) func() {
	if _, err := os.Stat(e.ConfigPath); err != nil {
		return nil
	}
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(e.Logger.Slog()))
	if err != nil {
		e.Logger.Debug("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(e.ConfigPath); err != nil {
		e.Logger.Debug("config watcher unavailable", "error", err)
		w.Stop()
		return nil
	}

	w.OnChange(func(path string) {
		cfg, err := loadConfigFile(path)
		if err != nil {
			e.Logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		e.Logger.Info("log level reloaded", "level", cfg.Log.Level)
	})
	w.StartAsync()
	return func() { w.Stop() }
}
