package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/cli/config"
	"github.com/trakjobs/trakjobs-go/internal/cli/output"
	"github.com/trakjobs/trakjobs-go/internal/client/connection"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/core/service"
	"github.com/trakjobs/trakjobs-go/internal/infra/buildinfo"
	"github.com/trakjobs/trakjobs-go/internal/infra/tlsroots"
	"github.com/trakjobs/trakjobs-go/internal/session"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/metric"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/tracer"
)

const (
	envKey    = "env"
	readerKey = "lineReader"

	// flushTimeout bounds span export when the command ends.
	flushTimeout = 5 * time.Second
)

// Env is everything an action needs, built once per invocation.
type Env struct {
	Config     *config.CLIConfig
	ConfigPath string
	Printer    *output.Printer
	Logger     logger.Logger
	Session    *session.Store
	HTTP       *connection.HTTPClient
	Router     *connection.Router
	Auth       *service.AuthService
	Clients    *service.ClientService
	Metrics    *metric.Registry
	Tracer     *tracer.Provider

	// signingOut silences the session-expired notice during logout.
	signingOut atomic.Bool
}

// env returns the invocation's Env, building it on first use.
func env(c *cli.Context) (*Env, error) {
	if e, ok := c.App.Metadata[envKey].(*Env); ok {
		return e, nil
	}
	e, err := newEnv(c)
	if err != nil {
		return nil, err
	}
	c.App.Metadata[envKey] = e
	return e, nil
}

func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	return config.Load(c.String("config"), flagOverrides(c))
}

func newPrinter(c *cli.Context, cfg *config.CLIConfig) (*output.Printer, error) {
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	return &output.Printer{
		Out:    c.App.Writer,
		Err:    c.App.ErrWriter,
		Format: format,
		Wide:   c.Bool("wide"),
	}, nil
}

func newEnv(c *cli.Context) (*Env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	printer, err := newPrinter(c, cfg)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	e := &Env{
		Config:     cfg,
		ConfigPath: configPath(c),
		Printer:    printer,
		Logger:     log,
		Metrics:    metric.Global(),
	}

	if cfg.Telemetry.OTLPEndpoint != "" {
		tp, err := tracer.New("trakjobs-cli", cfg.Telemetry.OTLPEndpoint, tracer.WithVersion(buildinfo.Version))
		if err != nil {
			return nil, fmt.Errorf("tracing: %w", err)
		}
		tracer.SetDefault(tp)
		e.Tracer = tp
	}

	backend, err := session.Open(session.Options{
		Backend: cfg.Session.Backend,
		Dir:     cfg.Session.Dir,
		Encrypt: cfg.Session.Encrypt,
	}, log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.Session = session.NewStore(backend, session.WithLogger(log))

	e.Router = connection.NewRouter("/", e.onNavigate)

	opts := []connection.Option{
		connection.WithTimeout(cfg.API.Timeout),
		connection.WithNavigator(e.Router),
		connection.WithMetrics(e.Metrics),
		connection.WithLogger(log),
	}
	tlsCfg, err := tlsroots.ClientTLSConfig(cfg.API.CAFile)
	if err != nil {
		e.Close()
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, connection.WithTLSConfig(tlsCfg))
	}
	if cfg.API.RateLimit > 0 {
		opts = append(opts, connection.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst))
	}
	e.HTTP = connection.NewHTTPClient(cfg.API.BaseURL, e.Session, opts...)

	e.Auth = service.NewAuthService(e.HTTP, e.Session,
		service.WithLogger(log), service.WithNavigator(e.Router))
	e.Clients = service.NewClientService(e.HTTP, e.Session, service.WithLogger(log))

	log.Debug("cli environment ready",
		"base_url", e.HTTP.BaseURL(),
		"session_backend", cfg.Session.Backend,
		"tracing", e.Tracer != nil)
	return e, nil
}

// onNavigate reports a forced move to the login route: the API rejected
// the stored token and the session was cleared.
func (e *Env) onNavigate(route string) {
	if route != connection.LoginRoute || e.signingOut.Load() {
		return
	}
	e.Printer.Notice("Your session has expired. Please log in again: trakjobs-cli login")
}

// Enter records the route the running command stands for, e.g. /clients.
func (e *Env) Enter(route string) {
	e.Router.SetLocation(route)
}

// Close releases the session backend and flushes traces.
func (e *Env) Close() error {
	var errs []error
	if e.Session != nil {
		errs = append(errs, e.Session.Close())
	}
	if e.Tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		errs = append(errs, e.Tracer.Shutdown(ctx))
		tracer.SetDefault(nil)
	}
	return errors.Join(errs...)
}

func closeEnv(c *cli.Context) error {
	e, ok := c.App.Metadata[envKey].(*Env)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, envKey)
	return e.Close()
}

// requireLogin fails fast when no token is stored.
func (e *Env) requireLogin() error {
	if !e.Session.IsAuthenticated() {
		return domain.ErrNotAuthenticated.WithDetails("run trakjobs-cli login first")
	}
	return nil
}

// prompt reads one line from the app's input after printing label.
func prompt(c *cli.Context, label string) (string, error) {
	r, ok := c.App.Metadata[readerKey].(*bufio.Reader)
	if !ok {
		in := c.App.Reader
		if in == nil {
			in = os.Stdin
		}
		r = bufio.NewReader(in)
		c.App.Metadata[readerKey] = r
	}

	fmt.Fprint(c.App.ErrWriter, label)
	line, err := r.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", fmt.Errorf("no input for %s", strings.TrimSuffix(strings.TrimSpace(label), ":"))
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// valueOrPrompt returns the flag value, prompting when it is empty.
func valueOrPrompt(c *cli.Context, flag, label string) (string, error) {
	if v := c.String(flag); v != "" {
		return v, nil
	}
	return prompt(c, label)
}
