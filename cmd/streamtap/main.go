package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/streamtap/config"
	"github.com/BaSui01/streamtap/decode"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "replay":
		runReplay(os.Args[2:])
	case "providers":
		runProviders()
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runProviders() {
	reg := decode.NewRegistry()
	for _, name := range reg.List() {
		fmt.Println(name)
	}
}

func printVersion() {
	fmt.Printf("streamtap %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`streamtap - LLM stream telemetry replay tool

Usage:
  streamtap <command> [options]

Commands:
  replay      Replay recorded stream fixtures through the engine
  providers   List providers with a built-in decoder
  version     Show version information
  help        Show this help message

Options for 'replay':
  --config <path>        Path to configuration file (YAML)
  --provider <name>      Decoder to use (default "openai")
  --format sse|ndjson    Fixture framing (default "sse")
  --delay <duration>     Pause between chunks, e.g. 20ms (default 0)
  --estimate             Estimate output tokens when usage is missing
  --metrics-addr <addr>  Serve Prometheus metrics while replaying

Examples:
  streamtap replay --provider openai testdata/chat.sse
  streamtap replay --provider ollama --format ndjson run1.jsonl run2.jsonl
  streamtap replay --config streamtap.yaml --delay 25ms capture.sse
  streamtap providers`)
}

// initLogger builds the zap logger described by cfg.
func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	var zopts []zap.Option
	if cfg.EnableCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		zopts = append(zopts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(zopts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
