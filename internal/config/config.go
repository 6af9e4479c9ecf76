// Package config loads the service configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Notion NotionConfig      `yaml:"notion" mapstructure:"notion"`
	Auth   AuthConfig        `yaml:"auth" mapstructure:"auth"`
	Server ServerConfig      `yaml:"server" mapstructure:"server"`
	Log    LogConfig         `yaml:"log" mapstructure:"log"`
	Groups []model.GroupSpec `yaml:"groups" mapstructure:"groups"`
}

// NotionConfig holds the Notion integration token and database ids.
type NotionConfig struct {
	Token      string  `yaml:"token" mapstructure:"token"`
	HRSalesDB  string  `yaml:"hr_sales_db" mapstructure:"hr_sales_db"`
	MHPSalesDB string  `yaml:"mhp_sales_db" mapstructure:"mhp_sales_db"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AuthConfig holds the token signing secret and the static user table.
// Users is a comma-separated list of user:password:permission entries,
// kept as a flat string so it can live in a single environment variable.
type AuthConfig struct {
	Secret        string `yaml:"secret" mapstructure:"secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
	Users         string `yaml:"users" mapstructure:"users"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env values through Unmarshal
	// for keys that carry no default or file entry, so every secret and
	// database id must be bound explicitly.
	for _, key := range []string{
		"notion.token",
		"notion.hr_sales_db",
		"notion.mhp_sales_db",
		"auth.secret",
		"auth.users",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrap(err, "config: bind env "+key)
		}
	}

	// Defaults
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("notion.rate_limit", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that everything the serve path needs is present.
func (c *Config) Validate() error {
	switch {
	case c.Notion.Token == "":
		return eris.New("config: notion.token is required")
	case c.Auth.Secret == "":
		return eris.New("config: auth.secret is required")
	case c.Auth.Users == "":
		return eris.New("config: auth.users is required")
	}
	if len(c.Groups) == 0 && (c.Notion.HRSalesDB == "" || c.Notion.MHPSalesDB == "") {
		return eris.New("config: notion.hr_sales_db and notion.mhp_sales_db are required")
	}
	return nil
}

// GroupSpecs returns the configured store groups, falling back to the
// built-in schemas wired to the configured database ids.
func (c *Config) GroupSpecs() []model.GroupSpec {
	if len(c.Groups) > 0 {
		return c.Groups
	}
	return model.DefaultGroups(c.Notion.HRSalesDB, c.Notion.MHPSalesDB)
}

// UserTable parses Auth.Users ("name:password:permission,...") into the
// credential table consumed by the auth gate.
func (c *Config) UserTable() (map[string]auth.Credential, error) {
	users := make(map[string]auth.Credential)
	for _, entry := range strings.Split(c.Auth.Users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, eris.New("config: malformed user entry " + entry)
		}
		perm := auth.Permission(parts[2])
		switch perm {
		case auth.PermissionAll, auth.PermissionHR, auth.PermissionMHP:
		default:
			return nil, eris.New("config: unknown permission " + parts[2])
		}
		users[parts[0]] = auth.Credential{Password: parts[1], Permission: perm}
	}
	if len(users) == 0 {
		return nil, eris.New("config: empty user table")
	}
	return users, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
