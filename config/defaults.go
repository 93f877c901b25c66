package config

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Capture:   DefaultCaptureConfig(),
		Pricing:   DefaultPricingConfig(),
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
// Export is off until explicitly enabled.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "streamtap",
		SampleRate:   0.1,
	}
}

// DefaultCaptureConfig returns the default capture configuration. Text
// capture is off because response content may carry sensitive data.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Content:  false,
		MaxBytes: 2048,
	}
}

// DefaultPricingConfig returns an empty override table. The built-in
// price table applies when no override matches.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Prices: make(map[string]Price),
	}
}
