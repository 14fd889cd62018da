// Command skyfeed aggregates astronomical events from public providers into
// a terminal dashboard or an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/celestiatrack/skyfeed/internal/api"
	"github.com/celestiatrack/skyfeed/internal/astro"
	"github.com/celestiatrack/skyfeed/internal/config"
	"github.com/celestiatrack/skyfeed/internal/feed"
	"github.com/celestiatrack/skyfeed/internal/logging"
	"github.com/celestiatrack/skyfeed/internal/metrics"
	"github.com/celestiatrack/skyfeed/internal/providers"
	"github.com/celestiatrack/skyfeed/internal/ui"
	"github.com/celestiatrack/skyfeed/internal/visibility"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	serveMode := flag.Bool("serve", false, "Run the HTTP API server instead of the TUI")
	summaryMode := flag.Bool("summary", false, "Print a one-shot text summary instead of the TUI")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	lat := flag.Float64("lat", 91, "Observer latitude (overrides config)")
	lon := flag.Float64("lon", 181, "Observer longitude (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *lat >= -90 && *lat <= 90 {
		cfg.Latitude = *lat
	}
	if *lon >= -180 && *lon <= 180 {
		cfg.Longitude = *lon
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	observer := astro.Observer{LatDeg: cfg.Latitude, LonDeg: cfg.Longitude}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Provider clients
	astronomy := providers.NewAstronomyClient(
		cfg.Astronomy.AppID, cfg.Astronomy.AppSecret,
		clientOpts(cfg.Astronomy.BaseURL, logger.Named("astronomy"))...,
	)
	riseSet := providers.NewRadiantDriftClient(
		cfg.RiseSet.APIKey,
		clientOpts(cfg.RiseSet.BaseURL, logger.Named("riseset"))...,
	)
	openMeteo := providers.NewOpenMeteoClient(
		clientOpts("", logger.Named("openmeteo"))...,
	)
	meteors := providers.NewMeteorClient(
		cfg.Meteors.APIKey,
		clientOpts(cfg.Meteors.BaseURL, logger.Named("meteors"))...,
	)
	aurora := providers.NewAuroraClient(
		clientOpts("", logger.Named("aurora"))...,
	)
	catalog := providers.NewCatalogClient(
		cfg.Catalog.Token,
		clientOpts(cfg.Catalog.BaseURL, logger.Named("catalog"))...,
	)

	sink := metrics.Sink(metrics.Noop{})
	if *serveMode {
		sink = metrics.NewPrometheus(prometheus.DefaultRegisterer, logger.Named("metrics"))
	}

	aggOpts := []feed.AggregatorOption{
		feed.WithLogger(logger.Named("feed")),
		feed.WithMetrics(sink),
	}
	if meteors.Enabled() {
		aggOpts = append(aggOpts, feed.WithMeteorSource(meteors))
	}
	aggregator := feed.NewAggregator(astronomy, openMeteo, aggOpts...)

	calc := visibility.NewCalculator(riseSet, visibility.WithLogger(logger.Named("visibility")))

	switch {
	case *serveMode:
		runServer(ctx, cfg, aggregator, aurora, riseSet, catalog, calc, observer, logger)

	case *summaryMode:
		runSummary(ctx, aggregator, observer)

	default:
		runTUI(aggregator, aurora, riseSet, observer)
	}
}

// clientOpts builds the shared per-provider options. An empty baseURL keeps
// the client's default endpoint.
func clientOpts(baseURL string, log *logging.Logger) []providers.Option {
	opts := []providers.Option{providers.WithLogger(log)}
	if baseURL != "" {
		opts = append(opts, providers.WithBaseURL(baseURL))
	}
	return opts
}

func runServer(ctx context.Context, cfg config.Config, aggregator *feed.Aggregator,
	aurora *providers.AuroraClient, riseSet *providers.RadiantDriftClient,
	catalog *providers.CatalogClient, calc *visibility.Calculator,
	observer astro.Observer, logger *logging.Logger) {

	handler := api.NewHandler(aggregator, observer, logger.Named("api")).
		WithAurora(aurora).
		WithCatalog(catalog).
		WithVisibility(calc)
	if riseSet.Enabled() {
		handler.WithSky(riseSet)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Error("shutdown: %v", err)
		}
	}()

	logger.Info("listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSummary(ctx context.Context, aggregator *feed.Aggregator, observer astro.Observer) {
	events, err := aggregator.Feed(ctx, observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	limit := feed.DefaultLimit
	if term.IsTerminal(int(os.Stdout.Fd())) {
		limit = 40
	}
	feed.WriteSummary(os.Stdout, events, limit)
}

func runTUI(aggregator *feed.Aggregator, aurora *providers.AuroraClient,
	riseSet *providers.RadiantDriftClient, observer astro.Observer) {

	model := ui.New(aggregator, observer).WithAurora(aurora)
	if riseSet.Enabled() {
		model = model.WithMoonPhase(riseSet)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
