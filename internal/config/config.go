package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/vislevel/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envSource     = "VISLEVEL_SOURCE"
	envLayout     = "VISLEVEL_LAYOUT"
	envSocketPath = "VISLEVEL_SOCKET"
	envInterval   = "VISLEVEL_INTERVAL"
	envWidth      = "VISLEVEL_WIDTH"
	envHeight     = "VISLEVEL_HEIGHT"
	envShowFooter = "VISLEVEL_FOOTER"
	envTrace      = "VISLEVEL_TRACE"
	envLogFile    = "VISLEVEL_LOG_FILE"
	envDump       = "VISLEVEL_DUMP"
	envPlain      = "VISLEVEL_PLAIN"
)

const defaultInterval = 1500 * time.Millisecond

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("vislevel", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	source := fs.String("source", envOrDefault(env, envSource, app.SourceLayout), "level tree source: layout or tmux")
	layoutPath := fs.String("layout", envOrDefault(env, envLayout, ""), "layout file (toml, yaml or json); empty uses the built-in demo")
	socket := fs.String("socket", envOrDefault(env, envSocketPath, ""), "path to the tmux socket (overrides environment detection)")
	interval := fs.Duration("interval", envOrDuration(env, envInterval, defaultInterval), "tmux polling interval")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	dump := fs.String("dump", envOrDefault(env, envDump, ""), "print the level tree (table, yaml, toml or json) and exit")
	plain := fs.Bool("plain", envOrBool(env, envPlain, false), "print transitions as lines instead of starting the UI")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	cfg := Config{
		App: app.Config{
			Source:     strings.ToLower(strings.TrimSpace(*source)),
			LayoutPath: *layoutPath,
			SocketPath: *socket,
			Interval:   *interval,
			Width:      *width,
			Height:     *height,
			ShowFooter: *footer,
			Dump:       strings.ToLower(strings.TrimSpace(*dump)),
			Plain:      *plain,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"source":   *source,
			"layout":   *layoutPath,
			"socket":   *socket,
			"interval": interval.String(),
			"width":    strconv.Itoa(*width),
			"height":   strconv.Itoa(*height),
			"footer":   strconv.FormatBool(*footer),
			"trace":    strconv.FormatBool(*trace),
			"logFile":  *logFile,
			"dump":     *dump,
			"plain":    strconv.FormatBool(*plain),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects combinations the app cannot run with.
func Validate(cfg Config) error {
	switch cfg.App.Source {
	case app.SourceLayout, app.SourceTmux:
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", cfg.App.Source, app.SourceLayout, app.SourceTmux)
	}
	switch cfg.App.Dump {
	case "", app.DumpTable, app.DumpYAML, app.DumpTOML, app.DumpJSON:
	default:
		return fmt.Errorf("unknown dump format %q", cfg.App.Dump)
	}
	if cfg.App.Source == app.SourceTmux && cfg.App.Interval <= 0 {
		return fmt.Errorf("interval must be positive (got %s)", cfg.App.Interval)
	}
	if cfg.App.Source == app.SourceTmux && cfg.App.LayoutPath != "" {
		return fmt.Errorf("-layout only applies to the layout source")
	}
	return nil
}
