// Command formfield loads declarative form definitions and validates values
// against them from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formfield/pkg/metrics"
)

// errInvalid signals a failed validation; main maps it to exit status 1
// without printing it again.
var errInvalid = errors.New("formfield: form is invalid")

type app struct {
	debug       bool
	configDir   string
	formName    string
	openapiPath string
	metricsAddr string
	timeout     time.Duration

	logger    *zap.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
	server    *http.Server
}

// newRootCmd returns the command tree and the app it configures. Callers
// must call app.close once execution returns; cobra skips post-run hooks
// when a command fails.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "formfield",
		Short:         "Validate form values against declarative field definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Enable development logging")
	flags.StringVar(&a.configDir, "config", ".", "Directory holding form definition files")
	flags.StringVar(&a.formName, "form", "", "Form name to load")
	flags.StringVar(&a.openapiPath, "openapi", "", "OpenAPI document (relative to --config) used by schema rules")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flags.DurationVar(&a.timeout, "timeout", 30*time.Second, "Timeout for non-interactive validation")

	root.AddCommand(newCheckCmd(a), newPromptCmd(a), newRenderCmd(a))
	return root, a
}

func (a *app) init() error {
	cfg := zap.NewProductionConfig()
	if a.debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("formfield: initialize logger: %w", err)
	}
	a.logger = logger

	a.registry = prometheus.NewRegistry()
	a.collector, err = metrics.NewCollector(a.registry)
	if err != nil {
		return err
	}

	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		a.server = srv
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		a.logger.Info("serving metrics", zap.String("addr", a.metricsAddr))
	}
	return nil
}

// close stops the metrics server and flushes the logger. It is safe to call
// more than once.
func (a *app) close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.server.Shutdown(ctx)
		cancel()
		a.server = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.close()
	switch {
	case err == nil:
	case errors.Is(err, errInvalid):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
