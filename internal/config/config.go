package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/claude/trainday/internal/engine"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Engine    EngineConfig    `yaml:"engine"`
	MCP       MCPConfig       `yaml:"mcp"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the SQLite file.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type EngineConfig struct {
	WeekModePolicy   string `yaml:"week_mode_policy"`
	PowerExerciseID  string `yaml:"power_exercise_id"`
	CooldownSessions int    `yaml:"cooldown_sessions"`
	// CatalogPath replaces the embedded catalog when set.
	CatalogPath string `yaml:"catalog_path"`
	// SeedCatalog reseeds on every start instead of only into an empty store.
	SeedCatalog bool `yaml:"seed_catalog"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Policy returns the engine policy with defaults filled in.
func (e EngineConfig) Policy() (engine.Policy, error) {
	p := engine.DefaultPolicy()
	mode, err := engine.ParseWeekModePolicy(e.WeekModePolicy)
	if err != nil {
		return p, err
	}
	p.WeekMode = mode
	if e.PowerExerciseID != "" {
		p.PowerExerciseID = e.PowerExerciseID
	}
	if e.CooldownSessions > 0 {
		p.CooldownSessions = e.CooldownSessions
	}
	return p, nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix TRAINDAY_ and underscore-separated paths:
//
//	TRAINDAY_SERVER_HOST, TRAINDAY_SERVER_PORT,
//	TRAINDAY_DB_DRIVER, TRAINDAY_DB_PATH,
//	TRAINDAY_DB_HOST, TRAINDAY_DB_PORT, TRAINDAY_DB_NAME,
//	TRAINDAY_DB_USER, TRAINDAY_DB_PASSWORD, TRAINDAY_DB_SSLMODE,
//	TRAINDAY_AUTH_API_KEY,
//	TRAINDAY_ENGINE_WEEK_MODE_POLICY, TRAINDAY_ENGINE_POWER_EXERCISE_ID,
//	TRAINDAY_ENGINE_CATALOG_PATH,
//	TRAINDAY_MCP_ENABLED, TRAINDAY_TAILSCALE_ENABLED, TRAINDAY_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := map[string]*string{
		"TRAINDAY_SERVER_HOST":              &cfg.Server.Host,
		"TRAINDAY_DB_DRIVER":                &cfg.Database.Driver,
		"TRAINDAY_DB_PATH":                  &cfg.Database.Path,
		"TRAINDAY_DB_HOST":                  &cfg.Database.Host,
		"TRAINDAY_DB_NAME":                  &cfg.Database.Name,
		"TRAINDAY_DB_USER":                  &cfg.Database.User,
		"TRAINDAY_DB_PASSWORD":              &cfg.Database.Password,
		"TRAINDAY_DB_SSLMODE":               &cfg.Database.SSLMode,
		"TRAINDAY_AUTH_API_KEY":             &cfg.Auth.APIKey,
		"TRAINDAY_ENGINE_WEEK_MODE_POLICY":  &cfg.Engine.WeekModePolicy,
		"TRAINDAY_ENGINE_POWER_EXERCISE_ID": &cfg.Engine.PowerExerciseID,
		"TRAINDAY_ENGINE_CATALOG_PATH":      &cfg.Engine.CatalogPath,
		"TRAINDAY_TAILSCALE_HOSTNAME":       &cfg.Tailscale.Hostname,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TRAINDAY_SERVER_PORT": &cfg.Server.Port,
		"TRAINDAY_DB_PORT":     &cfg.Database.Port,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	bools := map[string]*bool{
		"TRAINDAY_MCP_ENABLED":       &cfg.MCP.Enabled,
		"TRAINDAY_TAILSCALE_ENABLED": &cfg.Tailscale.Enabled,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "trainday"
	}
	if cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = "tsnet-state"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver %q is not postgres or sqlite", c.Database.Driver)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Engine.CooldownSessions < 0 {
		return fmt.Errorf("engine.cooldown_sessions must not be negative")
	}
	if _, err := c.Engine.Policy(); err != nil {
		return err
	}
	return nil
}
