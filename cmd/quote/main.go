package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecom-discount/internal/config"
	"github.com/noah-isme/ecom-discount/internal/discount"
	"github.com/noah-isme/ecom-discount/internal/events"
	"github.com/noah-isme/ecom-discount/internal/obs"
	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/scenario"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "output format: text or json")
	metricsOut := fs.String("metrics-out", "", "write Prometheus metrics to this file after the run")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: quote [-format text|json] [-metrics-out file] <scenario file or directory>...")
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger := obs.NewLoggerTo(stderr, cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	registry := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		buckets := obs.ParseBucketsCSV(cfg.MetricsBuckets)
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, buckets, registry)
	}

	shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   "ecom-discount",
		Endpoint:      cfg.TracingEndpoint,
		Exporter:      cfg.TracingExporter,
		SamplingRatio: cfg.TracingSampleRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	opts := []discount.Option{discount.WithLogger(logger)}
	if cfg.EmitEvents {
		opts = append(opts, discount.WithEventBus(&events.Bus{
			Notifiers: []events.Notifier{events.LogNotifier{Logger: logger.With().Str("component", "events").Logger()}},
		}))
	}
	svc := discount.NewService(opts...)
	runner := scenario.NewRunner(svc)

	var scenarios []*scenario.Scenario
	for _, path := range fs.Args() {
		loaded, err := scenario.LoadScenarios(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("load scenarios")
			return 1
		}
		scenarios = append(scenarios, loaded...)
	}

	exit := 0
	var reports []report
	for _, s := range scenarios {
		if ctx.Err() != nil {
			logger.Warn().Msg("interrupted")
			return 130
		}
		res, err := runner.Run(ctx, s)
		if err != nil {
			logger.Error().Err(err).Str("scenario", s.Name).Msg("scenario failed")
			reports = append(reports, report{Name: s.Name, Error: err.Error()})
			exit = 1
			continue
		}
		rep := report{Name: s.Name, Price: &res.Price, Passed: res.Passed, Failures: res.Failures}
		if s.Coupon != "" {
			rep.Coupon = couponStatus(svc, s)
		}
		if !res.Passed {
			exit = 1
		}
		reports = append(reports, rep)
	}

	if err := writeReports(stdout, *format, reports); err != nil {
		logger.Error().Err(err).Msg("write output")
		exit = 1
	}

	out := *metricsOut
	if out == "" {
		out = cfg.MetricsFile
	}
	if cfg.MetricsEnabled && out != "" {
		if err := prometheus.WriteToTextfile(out, registry); err != nil {
			logger.Error().Err(err).Str("path", out).Msg("write metrics")
			exit = 1
		}
	}
	logSummary(logger, reports)
	return exit
}

type report struct {
	Name     string                    `json:"name"`
	Price    *discount.DiscountedPrice `json:"price,omitempty"`
	Coupon   string                    `json:"coupon,omitempty"`
	Passed   bool                      `json:"passed"`
	Failures []string                  `json:"failures,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

func couponStatus(svc *discount.Service, s *scenario.Scenario) string {
	req, err := s.Request()
	if err != nil {
		return err.Error()
	}
	if err := svc.ValidateCoupon(s.Coupon, req.Items, req.Customer); err != nil {
		return err.Error()
	}
	return "eligible"
}

func writeReports(w io.Writer, format string, reports []report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	// bufio keeps the first write error and reports it from Flush.
	bw := bufio.NewWriter(w)
	for _, r := range reports {
		if r.Error != "" {
			fmt.Fprintf(bw, "%s: ERROR %s\n\n", r.Name, r.Error)
			continue
		}
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(bw, "%s: %s\n", r.Name, status)
		fmt.Fprintf(bw, "  original: %s\n", pricing.Format(r.Price.OriginalPrice()))
		for _, a := range r.Price.AppliedDiscounts() {
			fmt.Fprintf(bw, "  - %-22s %s\n", a.Name, pricing.Format(a.Amount))
		}
		fmt.Fprintf(bw, "  final:    %s (%s%% off)\n", pricing.Format(r.Price.FinalPrice()), r.Price.DiscountPercentage().StringFixed(2))
		fmt.Fprintf(bw, "  message:  %s\n", r.Price.Message())
		if r.Coupon != "" {
			fmt.Fprintf(bw, "  coupon:   %s\n", r.Coupon)
		}
		for _, f := range r.Failures {
			fmt.Fprintf(bw, "  mismatch: %s\n", f)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func logSummary(logger zerolog.Logger, reports []report) {
	passed := 0
	for _, r := range reports {
		if r.Error == "" && r.Passed {
			passed++
		}
	}
	logger.Info().Int("scenarios", len(reports)).Int("passed", passed).Msg("quote run finished")
}
