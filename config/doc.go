// Package config loads StreamTap configuration.
//
// Values resolve from defaults, then an optional YAML file, then
// environment variables prefixed STREAMTAP. The zero configuration is
// usable: logging to stdout, telemetry export off, text capture off.
package config
