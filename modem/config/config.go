// Package config loads and validates the modem's runtime settings:
// which buffer-size variant to run, how many unanswered ENQs to
// tolerate before hanging up, and how to parse the host's connect
// string, plus an optional YAML settings file.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clarke3-net/v23modem/modem"
)

func variantByName(name string) (modem.Variant, error) {
	switch strings.ToLower(name) {
	case "", "production":
		return modem.Production, nil
	case "compat":
		return modem.Compat, nil
	default:
		return modem.Variant{}, fmt.Errorf("config: unknown variant %q (want %q or %q)", name, "production", "compat")
	}
}

// Config holds the settings a session needs beyond the per-call
// connect target.
type Config struct {
	Variant       string `yaml:"variant"`
	EnqRetryLimit int    `yaml:"enq_retry_limit"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns the production configuration: the larger buffer
// pair, the reintroduced 4-retry ENQ bound, info-level logging.
func Default() Config {
	return Config{
		Variant:       modem.Production.Name,
		EnqRetryLimit: modem.DefaultEnqRetryLimit,
		LogLevel:      "info",
	}
}

// searchPaths mirrors the teacher's tocalls.yaml search-list idiom:
// try the working directory, then a few conventional install
// locations, in order.
var searchPaths = []string{
	"v23modem.yaml",
	"config/v23modem.yaml",
	"/etc/v23modem/v23modem.yaml",
}

// Load reads the first settings file found on searchPaths, overlaying
// it onto Default(). It is not an error for no file to exist; Load
// then just returns Default().
func Load() (Config, error) {
	cfg := Default()

	for _, path := range searchPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		break
	}

	return cfg, nil
}

// ResolveVariant validates and returns the named buffer-size variant.
func (c Config) ResolveVariant() (modem.Variant, error) {
	return variantByName(c.Variant)
}

// ConnectTarget is a validated "address port" pair, ready to dial.
type ConnectTarget struct {
	Host string
	Port int
}

// String renders the target as a dialable "host:port" string.
func (t ConnectTarget) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// ParseConnectTarget parses the application's connect argument:
// a single space-separated "address port" string, e.g. "127.0.0.1 8023".
//
// The reference v23_connect splits on the first space with strchr and
// writes through the result without checking it is non-null — a
// malformed argument (no space, or text instead of a dotted-quad) would
// segfault or silently connect to 0.0.0.0 with port 0. Per spec.md §9
// Open Question, this is treated as a fatal configuration error raised
// before any socket is opened, never a best-effort parse.
func ParseConnectTarget(arg string) (ConnectTarget, error) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return ConnectTarget{}, fmt.Errorf("config: connect argument must be \"address port\", got %q", arg)
	}

	host, portStr := fields[0], fields[1]
	if net.ParseIP(host).To4() == nil {
		return ConnectTarget{}, fmt.Errorf("config: %q is not a dotted-quad IPv4 address", host)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return ConnectTarget{}, fmt.Errorf("config: %q is not a valid port number", portStr)
	}

	return ConnectTarget{Host: host, Port: port}, nil
}
