// Package config provides application configuration.
//
// Values come from command-line flags, falling back to environment variables
// (a .env file is loaded into the environment by main before parsing).
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	DefaultHost              = "localhost"
	DefaultPort              = 8080
	DefaultSessionTimeout    = 30 * time.Minute
	DefaultSweepInterval     = 5 * time.Minute
	DefaultRPSTargetScore    = 3
	DefaultOpeningCenterBias = 0.7
)

// Config holds all application configuration.
type Config struct {
	Host string
	Port int

	SessionTimeout    time.Duration
	SweepInterval     time.Duration
	RPSTargetScore    int
	OpeningCenterBias float64

	LogLevel  string
	LogFormat string

	Ngrok NgrokConfig

	// ServerURL is the running bot server the MCP proxy talks to.
	ServerURL string
}

// NgrokConfig controls the optional public tunnel.
type NgrokConfig struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// Default returns the configuration used when no flag or variable is set.
func Default() *Config {
	return &Config{
		Host:              DefaultHost,
		Port:              DefaultPort,
		SessionTimeout:    DefaultSessionTimeout,
		SweepInterval:     DefaultSweepInterval,
		RPSTargetScore:    DefaultRPSTargetScore,
		OpeningCenterBias: DefaultOpeningCenterBias,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// Flags returns the CLI flags that populate a Config.
func Flags() []cli.Flag {
	d := Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: d.Host, Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: d.Port, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.DurationFlag{Name: "session-timeout", Value: d.SessionTimeout, Usage: "idle time before a game session expires", Sources: cli.EnvVars("SESSION_TIMEOUT")},
		&cli.DurationFlag{Name: "sweep-interval", Value: d.SweepInterval, Usage: "how often expired sessions are swept", Sources: cli.EnvVars("SWEEP_INTERVAL")},
		&cli.IntFlag{Name: "rps-target", Value: d.RPSTargetScore, Usage: "rock-paper-scissors score that ends a match", Sources: cli.EnvVars("RPS_TARGET_SCORE")},
		&cli.FloatFlag{Name: "center-bias", Value: d.OpeningCenterBias, Usage: "probability the tic-tac-toe bot opens in the center", Sources: cli.EnvVars("OPENING_CENTER_BIAS")},
		&cli.StringFlag{Name: "log-level", Value: d.LogLevel, Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		&cli.StringFlag{Name: "log-format", Value: d.LogFormat, Usage: "console or json", Sources: cli.EnvVars("LOG_FORMAT")},
		&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		&cli.StringFlag{Name: "server-url", Usage: "bot server URL used by the mcp command (defaults to http://host:port)", Sources: cli.EnvVars("SERVER_URL")},
	}
}

// FromCommand reads a validated Config from the parsed flags of cmd.
func FromCommand(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Host:              cmd.String("host"),
		Port:              cmd.Int("port"),
		SessionTimeout:    cmd.Duration("session-timeout"),
		SweepInterval:     cmd.Duration("sweep-interval"),
		RPSTargetScore:    cmd.Int("rps-target"),
		OpeningCenterBias: cmd.Float("center-bias"),
		LogLevel:          cmd.String("log-level"),
		LogFormat:         cmd.String("log-format"),
		Ngrok: NgrokConfig{
			Enabled:   cmd.Bool("ngrok"),
			AuthToken: cmd.String("ngrok-auth"),
			Domain:    cmd.String("ngrok-domain"),
		},
		ServerURL: cmd.String("server-url"),
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://" + cfg.Addr()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("session timeout must be > 0"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweep interval must be > 0"))
	}
	if c.RPSTargetScore <= 0 {
		errs = append(errs, fmt.Errorf("rps target score must be > 0"))
	}
	if c.OpeningCenterBias <= 0 || c.OpeningCenterBias > 1 {
		errs = append(errs, fmt.Errorf("center bias must be in (0, 1], got %g", c.OpeningCenterBias))
	}
	if c.Ngrok.Enabled && c.Ngrok.AuthToken == "" {
		errs = append(errs, fmt.Errorf("ngrok enabled but no auth token provided"))
	}
	return errors.Join(errs...)
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
