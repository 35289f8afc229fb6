package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/fkhayef/receiptsplit/internal/report"
)

// EnvPrefix prefixes every flag's environment variable, e.g. RECEIPTSPLIT_PORT
const EnvPrefix = "RECEIPTSPLIT"

// Commands
const (
	CommandSplit = "split"
	CommandServe = "serve"
)

// Common errors
var (
	ErrMissingCommand = errors.New("missing command or receipt file")
	ErrMissingFile    = errors.New("split requires a receipt file")
	ErrUnexpectedArgs = errors.New("unexpected arguments")
	ErrLogFormat      = errors.New("log format must be text or json")
	ErrMaxBodyBytes   = errors.New("max body bytes must be positive")
)

// Config holds all application configuration
type Config struct {
	Command string
	File    string // receipt file for split

	// Report
	Format report.Format
	Style  string
	Width  int

	// Server
	Port         int
	APIKey       string
	CORSOrigins  []string
	MaxBodyBytes int64

	// Logging
	LogLevel  slog.Level
	LogFormat string
}

// UsageError is a command line error; Help holds the flag summary to print with it
type UsageError struct {
	Help string
	Err  error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Load reads configuration from the command line, the environment and an
// optional .env file, in that order of precedence
func Load(args []string) (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	fs := ff.NewFlagSet("receiptsplit")
	var (
		format       = fs.StringLong("format", string(report.FormatText), "report format: text, markdown or json")
		style        = fs.StringLong("style", "auto", "glamour style for markdown reports: auto, dark, light, notty, ascii")
		width        = fs.IntLong("width", 100, "word wrap width for markdown reports")
		port         = fs.IntLong("port", getEnvInt("PORT", 8080), "HTTP server port")
		apiKey       = fs.StringLong("api-key", "", "bearer token required by the HTTP API (optional)")
		corsOrigins  = fs.StringLong("cors-origins", "", "comma-separated origins allowed by CORS (optional)")
		maxBodyBytes = fs.IntLong("max-body-bytes", 1<<20, "maximum HTTP request body size")
		logLevel     = fs.StringLong("log-level", "info", "log level: debug, info, warn or error")
		logFormat    = fs.StringLong("log-format", "text", "log format: text or json")
	)

	fail := func(err error) (*Config, error) {
		return nil, &UsageError{Help: ffhelp.Flags(fs, usage).String(), Err: err}
	}

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvPrefix)); err != nil {
		return fail(err)
	}

	cfg := &Config{
		Style:        *style,
		Width:        *width,
		Port:         *port,
		APIKey:       *apiKey,
		CORSOrigins:  splitList(*corsOrigins),
		MaxBodyBytes: int64(*maxBodyBytes),
		LogFormat:    strings.ToLower(*logFormat),
	}

	var err error
	if cfg.Format, err = report.ParseFormat(*format); err != nil {
		return fail(err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return fail(fmt.Errorf("invalid log level %q: %w", *logLevel, err))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fail(ErrLogFormat)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fail(ErrMaxBodyBytes)
	}

	if err := cfg.setCommand(fs.GetArgs()); err != nil {
		return fail(err)
	}
	return cfg, nil
}

const usage = "receiptsplit [flags] [split] <file> | receiptsplit [flags] serve"

// setCommand resolves the positional arguments. A first argument that is not
// a command is taken as the receipt file.
func (c *Config) setCommand(args []string) error {
	if len(args) == 0 {
		return ErrMissingCommand
	}

	switch args[0] {
	case CommandServe:
		if len(args) > 1 {
			return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args[1:])
		}
		c.Command = CommandServe
		return nil
	case CommandSplit:
		args = args[1:]
		if len(args) == 0 {
			return ErrMissingFile
		}
	}

	if len(args) > 1 {
		return fmt.Errorf("%w: %v", ErrUnexpectedArgs, args[1:])
	}
	c.Command = CommandSplit
	c.File = args[0]
	return nil
}

// NewLogger builds the slog logger described by the config
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
