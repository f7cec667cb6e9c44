/*
Package config loads runtime configuration for the payroll server and CLI.

LAYERING (later wins):
  1. Defaults        Default()
  2. TOML file       --config payroll.toml
  3. .env file       loaded into the process environment if present
  4. Environment     PAYROLL_* variables
  5. Validate()      rejects unusable combinations

EXAMPLE payroll.toml:
  [server]
  port = 8080
  cors_origins = ["http://localhost:5173"]

  [store]
  driver = "sqlite"
  sqlite_path = "./data/payroll.db"

  [payroll]
  policy = "default"          # or "legacy"
  policy_file = ""            # JSON policy, overrides policy
  auto_run_day = 0            # 1-28 runs last month's payroll; 0 disables
  run_check_interval = "1h"

  [log]
  level = "info"

ENVIRONMENT:
  PAYROLL_HOST, PAYROLL_PORT, PAYROLL_CORS_ORIGINS (comma separated),
  PAYROLL_STORE, PAYROLL_SQLITE_PATH, PAYROLL_POSTGRES_DSN,
  PAYROLL_POLICY, PAYROLL_POLICY_FILE, PAYROLL_COMPANY_NAME,
  PAYROLL_AUTO_RUN_DAY, PAYROLL_LOG_LEVEL

SEE ALSO:
  - cli/serve.go: Consumes Config
  - factory/policy.go: policy_file format
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Payroll PayrollConfig `toml:"payroll"`
	Log     LogConfig     `toml:"log"`
}

type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	ReadTimeout     string   `toml:"read_timeout"`
	WriteTimeout    string   `toml:"write_timeout"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver      string `toml:"driver"` // memory, sqlite, postgres
	SQLitePath  string `toml:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn"`
	MaxConns    int32  `toml:"max_conns"`
}

type PayrollConfig struct {
	Policy           string `toml:"policy"`
	PolicyFile       string `toml:"policy_file"`
	CompanyName      string `toml:"company_name"`
	AutoRunDay       int    `toml:"auto_run_day"`
	RunCheckInterval string `toml:"run_check_interval"`
	RunConcurrency   int    `toml:"run_concurrency"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns production defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "30s",
		},
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "payroll.db",
			MaxConns:   25,
		},
		Payroll: PayrollConfig{
			Policy:           string(payroll.DefaultPolicyID),
			RunCheckInterval: "1h",
			RunConcurrency:   payroll.DefaultRunConcurrency,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load applies the layers in order. path and envFile may be empty.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys in %s: %v", ErrInvalidConfig, path, undecoded)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("PAYROLL_HOST", c.Server.Host)
	if v := os.Getenv("PAYROLL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PAYROLL_PORT: %v", ErrInvalidConfig, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PAYROLL_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	c.Store.Driver = getEnv("PAYROLL_STORE", c.Store.Driver)
	c.Store.SQLitePath = getEnv("PAYROLL_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.PostgresDSN = getEnv("PAYROLL_POSTGRES_DSN", c.Store.PostgresDSN)
	c.Payroll.Policy = getEnv("PAYROLL_POLICY", c.Payroll.Policy)
	c.Payroll.PolicyFile = getEnv("PAYROLL_POLICY_FILE", c.Payroll.PolicyFile)
	c.Payroll.CompanyName = getEnv("PAYROLL_COMPANY_NAME", c.Payroll.CompanyName)
	if v := os.Getenv("PAYROLL_AUTO_RUN_DAY"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PAYROLL_AUTO_RUN_DAY: %v", ErrInvalidConfig, err)
		}
		c.Payroll.AutoRunDay = day
	}
	c.Log.Level = getEnv("PAYROLL_LOG_LEVEL", c.Log.Level)
	return nil
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	for name, v := range map[string]string{
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
		"payroll.run_check_interval": c.Payroll.RunCheckInterval,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: store.sqlite_path is required for sqlite", ErrInvalidConfig)
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("%w: store.postgres_dsn is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Payroll.PolicyFile == "" {
		switch payroll.PolicyID(c.Payroll.Policy) {
		case payroll.DefaultPolicyID, payroll.LegacyPolicyID:
		default:
			return fmt.Errorf("%w: unknown payroll.policy %q", ErrInvalidConfig, c.Payroll.Policy)
		}
	}

	if c.Payroll.AutoRunDay < 0 || c.Payroll.AutoRunDay > 28 {
		return fmt.Errorf("%w: payroll.auto_run_day %d must be 0-28", ErrInvalidConfig, c.Payroll.AutoRunDay)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Policy resolves the payroll policy: policy_file when set, else the preset.
func (c *Config) Policy() (payroll.Policy, error) {
	if c.Payroll.PolicyFile != "" {
		b, err := os.ReadFile(c.Payroll.PolicyFile)
		if err != nil {
			return payroll.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
		}
		p, err := factory.NewPolicyFactory().ParsePolicy(string(b))
		if err != nil {
			return payroll.Policy{}, err
		}
		return *p, nil
	}
	if payroll.PolicyID(c.Payroll.Policy) == payroll.LegacyPolicyID {
		return payroll.LegacyPolicy(), nil
	}
	return payroll.DefaultPolicy(), nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return lvl, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Timeouts returns read, write and shutdown timeouts. Call after Validate.
func (c *Config) Timeouts() (read, write, shutdown time.Duration) {
	read, _ = time.ParseDuration(c.Server.ReadTimeout)
	write, _ = time.ParseDuration(c.Server.WriteTimeout)
	shutdown, _ = time.ParseDuration(c.Server.ShutdownTimeout)
	return read, write, shutdown
}

// RunCheckInterval returns the scheduler's check interval. Call after Validate.
func (c *Config) RunCheckInterval() time.Duration {
	d, _ := time.ParseDuration(c.Payroll.RunCheckInterval)
	return d
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
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
