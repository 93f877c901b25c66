package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/streamtap/config"
	"github.com/BaSui01/streamtap/decode"
	"github.com/BaSui01/streamtap/internal/telemetry"
	"github.com/BaSui01/streamtap/observability"
	"github.com/BaSui01/streamtap/tap"
	"github.com/BaSui01/streamtap/tokenizer"
)

const (
	formatSSE    = "sse"
	formatNDJSON = "ndjson"
)

func runReplay(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	provider := fs.String("provider", decode.ProviderOpenAI, "Decoder provider name")
	format := fs.String("format", formatSSE, "Fixture framing: sse or ndjson")
	delay := fs.Duration("delay", 0, "Pause between chunks")
	estimate := fs.Bool("estimate", false, "Estimate output tokens when usage is missing")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.Parse(args)

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "replay: no fixture files given")
		os.Exit(1)
	}
	if *format != formatSSE && *format != formatNDJSON {
		fmt.Fprintf(os.Stderr, "replay: unknown format %q\n", *format)
		os.Exit(1)
	}
	if _, err := decode.For(*provider); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting replay",
		zap.String("version", Version),
		zap.String("provider", *provider),
		zap.Int("files", len(paths)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorders []tap.MetricsRecorder

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		recorders = append(recorders, observability.NewPromRecorder("streamtap"))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if serveErr := metricsSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(serveErr))
			}
		}()
		logger.Info("metrics server listening", zap.String("addr", *metricsAddr))
	}

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	var tracer trace.Tracer
	if cfg.Telemetry.Enabled && err == nil {
		tracer = otelProviders.Tracer("streamtap")
		rec, recErr := observability.NewOTelRecorder(otelProviders.Meter("streamtap"))
		if recErr != nil {
			logger.Warn("failed to create otel recorder", zap.Error(recErr))
		} else {
			recorders = append(recorders, rec)
		}
	}

	opts := []tap.Option{
		tap.WithLogger(logger),
		tap.WithPricing(buildPricing(cfg).Func(*provider)),
	}
	switch len(recorders) {
	case 0:
	case 1:
		opts = append(opts, tap.WithMetrics(recorders[0]))
	default:
		opts = append(opts, tap.WithMetrics(observability.Fanout(recorders...)))
	}
	if *estimate {
		opts = append(opts, tap.WithEstimator(tokenizer.NewEstimator().Func()))
	}
	if cfg.Capture.Content {
		opts = append(opts, tap.WithCaptureText(cfg.Capture.MaxBytes))
	}

	r := &replayer{
		provider: *provider,
		format:   *format,
		delay:    *delay,
		opts:     opts,
		tracer:   tracer,
		logger:   logger,
		tracker:  observability.NewTracker(),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			return r.replayFile(gctx, path)
		})
	}
	replayErr := g.Wait()

	summary := r.tracker.Summary()
	logger.Info("replay complete",
		zap.Int("streams", summary.Streams),
		zap.Int("completed", summary.Completed),
		zap.Int("errored", summary.Errored),
		zap.Int("abandoned", summary.Abandoned),
		zap.Int("total_tokens", summary.TotalTokens),
		zap.Float64("total_cost", summary.TotalCost),
	)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	if otelProviders != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if shutdownErr := otelProviders.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("telemetry shutdown", zap.Error(shutdownErr))
		}
		cancel()
	}

	switch {
	case errors.Is(replayErr, context.Canceled):
		logger.Warn("replay interrupted")
		os.Exit(130)
	case replayErr != nil:
		logger.Error("replay failed", zap.Error(replayErr))
		os.Exit(1)
	}
}

// replayer feeds fixture files through tapped streams.
type replayer struct {
	provider string
	format   string
	delay    time.Duration
	opts     []tap.Option
	tracer   trace.Tracer
	logger   *zap.Logger
	tracker  *observability.Tracker
}

// replayFile streams one fixture through the engine and logs the
// finalized record. A cancelled context abandons the stream.
func (r *replayer) replayFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	chunks, err := scanChunks(f, r.format)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	dec, err := decode.For(r.provider)
	if err != nil {
		return err
	}

	opts := append([]tap.Option(nil), r.opts...)
	if r.tracer != nil {
		var adapter *observability.SpanAdapter
		var span trace.Span
		ctx, span, adapter = observability.StartSpan(ctx, r.tracer, r.provider)
		defer span.End()
		opts = append(opts, tap.WithSpan(adapter))
	}

	s := tap.NewStream(&lineSource{chunks: chunks}, r.provider, dec, opts...)
	defer s.Close()

	for s.Next() {
		if ctx.Err() != nil {
			break
		}
		if r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
			}
		}
	}

	if err := ctx.Err(); err != nil {
		s.Close()
		r.logRecord(path, s.Record())
		return err
	}

	r.logRecord(path, s.Record())
	return s.Err()
}

func (r *replayer) logRecord(path string, rec *tap.Record) {
	if rec == nil {
		return
	}
	r.tracker.Observe(rec)

	fields := []zap.Field{
		zap.String("file", path),
		zap.String("outcome", string(rec.Outcome)),
		zap.String("provider", rec.Provider),
		zap.String("model", rec.Model),
		zap.Int("chunks", rec.Chunks),
		zap.Int("text_len", len(rec.Text)),
		zap.Int("tool_calls", len(rec.ToolCalls)),
		zap.Int("input_tokens", rec.Usage.InputTokens),
		zap.Int("output_tokens", rec.Usage.OutputTokens),
		zap.Bool("estimated", rec.Estimated),
		zap.Float64("cost", rec.Cost),
		zap.Duration("duration", rec.Duration),
	}
	if rec.Timing.TTFT != nil {
		fields = append(fields, zap.Duration("ttft", *rec.Timing.TTFT))
	}
	if rec.Chunks >= 2 {
		fields = append(fields, zap.Duration("tbt", rec.Timing.TBT))
	}
	if rec.DecodeErrors > 0 {
		fields = append(fields, zap.Int("decode_errors", rec.DecodeErrors))
	}
	if rec.Err != nil {
		fields = append(fields, zap.Error(rec.Err))
	}

	r.logger.Info("stream replayed", fields...)
}

// scanChunks splits fixture content into chunk payloads. SSE framing
// keeps only data: lines; NDJSON keeps every non-empty line. Scanner
// buffers are copied because large argument deltas can ride one line.
func scanChunks(rd io.Reader, format string) ([][]byte, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var chunks [][]byte
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if format == formatSSE && !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		chunks = append(chunks, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// buildPricing merges config overrides onto the built-in price table.
func buildPricing(cfg *config.Config) *observability.Pricing {
	pricing := observability.NewPricing()
	if len(cfg.Pricing.Prices) == 0 {
		return pricing
	}
	prices := make([]observability.ModelPrice, 0, len(cfg.Pricing.Prices))
	for key, p := range cfg.Pricing.Prices {
		provider, model, ok := strings.Cut(key, ":")
		if !ok {
			continue
		}
		prices = append(prices, observability.ModelPrice{
			Provider:    provider,
			Model:       model,
			PriceInput:  p.Input,
			PriceOutput: p.Output,
		})
	}
	pricing.Update(prices)
	return pricing
}

// lineSource adapts scanned fixture lines to the stream source shape.
type lineSource struct {
	chunks [][]byte
	pos    int
}

func (s *lineSource) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *lineSource) Current() []byte { return s.chunks[s.pos-1] }

func (s *lineSource) Err() error { return nil }

func (s *lineSource) Close() error { return nil }
