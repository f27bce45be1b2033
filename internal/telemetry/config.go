package telemetry

import (
	"strings"
	"time"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
)

const (
	envEndpoint    = "RDSCRIPT_OTEL_ENDPOINT"
	envInsecure    = "RDSCRIPT_OTEL_INSECURE"
	envService     = "RDSCRIPT_OTEL_SERVICE"
	envDialTimeout = "RDSCRIPT_OTEL_DIAL_TIMEOUT"
	envHeaders     = "RDSCRIPT_OTEL_HEADERS"

	defaultServiceName = "rdscript"
)

type Config struct {
	ServiceName string
	Version     string
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	DialTimeout time.Duration
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv builds a Config from the RDSCRIPT_OTEL_* variables. Export
// stays disabled until an endpoint is set, so plain runs carry no tracing
// cost.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Config{
		ServiceName: defaultServiceName,
		Endpoint:    strings.TrimSpace(getenv(envEndpoint)),
	}

	if service := strings.TrimSpace(getenv(envService)); service != "" {
		cfg.ServiceName = service
	}
	if insecure := strings.TrimSpace(getenv(envInsecure)); insecure != "" {
		cfg.Insecure = strings.EqualFold(insecure, "true") || insecure == "1"
	}
	if raw := strings.TrimSpace(getenv(envDialTimeout)); raw != "" {
		if timeout, err := time.ParseDuration(raw); err == nil && timeout > 0 {
			cfg.DialTimeout = timeout
		}
	}
	if headers, err := ParseHeaders(getenv(envHeaders)); err == nil {
		cfg.Headers = headers
	}
	return cfg
}

// ParseHeaders parses "key=value, key2=value2" into a map, nil for blank
// input.
func ParseHeaders(raw string) (map[string]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	headers := make(map[string]string)
	for _, pair := range strings.Split(trimmed, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, errdef.New(errdef.CodeUnknown, "malformed telemetry header %q", pair)
		}
		headers[key] = strings.TrimSpace(value)
	}
	if len(headers) == 0 {
		return nil, nil
	}
	return headers, nil
}
