package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log      LogConfig      `koanf:"log"`
	Resolver ResolverConfig `koanf:"resolver"`
	Zone     ZoneConfig     `koanf:"zone"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// ResolverConfig holds the network endpoints and the cache bound.
type ResolverConfig struct {
	// Listen is the ip:port the UDP socket binds to.
	Listen string `koanf:"listen" validate:"required,ip_port"`

	// Upstream is the host:port cache misses are forwarded to. A host name is
	// resolved once at startup.
	Upstream string `koanf:"upstream" validate:"required,ip_port|hostname_port"`

	Cache CacheConfig `koanf:"cache"`
}

// CacheConfig bounds the record cache.
type CacheConfig struct {
	// Size is the maximum number of distinct name/type/class keys held.
	Size int `koanf:"size" validate:"required,gte=1"`
}

// ZoneConfig holds settings for loading the zone file.
type ZoneConfig struct {
	// TTL in seconds for zone records when the file does not set one.
	TTL uint32 `koanf:"ttl" validate:"required,gte=1,lte=2147483647"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the ip:port of the HTTP listener; empty disables it.
	Addr string `koanf:"addr" validate:"omitempty,ip_port"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings.
// With no environment overrides the server listens on 127.0.0.1:53 and
// forwards to 127.0.0.53:53.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LogConfig{
		Level: "info",
	},
	Resolver: ResolverConfig{
		Listen:   "127.0.0.1:53",
		Upstream: "127.0.0.53:53",
		Cache: CacheConfig{
			Size: 65536,
		},
	},
	Zone: ZoneConfig{
		TTL: 300,
	},
	Metrics: MetricsConfig{
		Addr: "",
	},
}

// envKeys maps each supported environment variable to its koanf key.
// Variables with the DNS_ prefix that are not listed here are ignored.
var envKeys = map[string]string{
	"DNS_ENV":          "env",
	"DNS_LOG_LEVEL":    "log.level",
	"DNS_LISTEN":       "resolver.listen",
	"DNS_UPSTREAM":     "resolver.upstream",
	"DNS_CACHE_SIZE":   "resolver.cache.size",
	"DNS_ZONE_TTL":     "zone.ttl",
	"DNS_METRICS_ADDR": "metrics.addr",
}

// validIPPort validates whether the provided field value is a valid IP address and port combination.
// It expects the value to be in the format "IP:Port", with IPv6 addresses in brackets.
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

// envLoader loads the DNS_ variables named in envKeys. It can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNS_",
		TransformFunc: func(key, value string) (string, any) {
			mapped, ok := envKeys[strings.ToUpper(key)]
			if !ok {
				return "", nil
			}
			return mapped, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG into the provided Koanf instance
// using the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "ip_port" validation tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
