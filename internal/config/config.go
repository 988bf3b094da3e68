// Package config loads service settings from FITNESS_ prefixed environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/example/fitness-manager/internal/logging"
	"github.com/example/fitness-manager/internal/persistence/sqlstore"
)

// Prefix is prepended to every variable name.
const Prefix = "FITNESS_"

// Config captures environment driven configuration values for the fitness service.
type Config struct {
	HTTPPort      int            `env:"HTTP_PORT,required"`
	Database      DatabaseConfig `envPrefix:"DB_"`
	SessionTTL    time.Duration  `env:"SESSION_TTL" envDefault:"24h"`
	AdminEmail    string         `env:"ADMIN_EMAIL"`
	AdminPassword string         `env:"ADMIN_PASSWORD"`
	StaticDir     string         `env:"STATIC_DIR"`
	LogLevel      string         `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string         `env:"LOG_FILE"`
}

// DatabaseConfig holds the store connection settings. None of them have
// defaults apart from the pool size.
type DatabaseConfig struct {
	Driver        string `env:"DRIVER,required"`
	Path          string `env:"PATH"`
	Host          string `env:"HOST"`
	Port          int    `env:"PORT"`
	User          string `env:"USER"`
	Password      string `env:"PASSWORD"`
	Name          string `env:"NAME"`
	TLS           bool   `env:"TLS"`
	TLSSkipVerify bool   `env:"TLS_SKIP_VERIFY"`
	MaxOpenConns  int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
}

// Load reads the optional env files (".env" when none are given) and parses
// the process environment. Variables already set in the environment win over
// file entries. Missing and invalid variables are reported together.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
	}

	var cfg Config
	var missing, invalid []string

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		var agg env.AggregateError
		if !errors.As(err, &agg) {
			return Config{}, err
		}
		for _, e := range agg.Errors {
			var notSet env.EnvVarIsNotSetError
			if errors.As(e, &notSet) {
				missing = append(missing, notSet.Key)
				continue
			}
			invalid = append(invalid, e.Error())
		}
	}

	m, i := cfg.validate()
	missing = append(missing, m...)
	invalid = append(invalid, i...)

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing required environment variables: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, "; "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}
	return cfg, nil
}

func (c Config) validate() (missing, invalid []string) {
	if c.HTTPPort != 0 && (c.HTTPPort < 1 || c.HTTPPort > 65535) {
		invalid = append(invalid, Prefix+"HTTP_PORT")
	}
	if c.SessionTTL <= 0 {
		invalid = append(invalid, Prefix+"SESSION_TTL")
	}
	if c.Database.MaxOpenConns <= 0 {
		invalid = append(invalid, Prefix+"DB_MAX_OPEN_CONNS")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		invalid = append(invalid, Prefix+"LOG_LEVEL")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		if c.AdminEmail == "" {
			missing = append(missing, Prefix+"ADMIN_EMAIL")
		} else {
			missing = append(missing, Prefix+"ADMIN_PASSWORD")
		}
	}

	switch sqlstore.Dialect(c.Database.Driver) {
	case sqlstore.DialectSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			missing = append(missing, Prefix+"DB_PATH")
		}
	case sqlstore.DialectMySQL, sqlstore.DialectPostgres:
		if c.Database.Host == "" {
			missing = append(missing, Prefix+"DB_HOST")
		}
		if c.Database.Port == 0 {
			missing = append(missing, Prefix+"DB_PORT")
		}
		if c.Database.User == "" {
			missing = append(missing, Prefix+"DB_USER")
		}
		if c.Database.Name == "" {
			missing = append(missing, Prefix+"DB_NAME")
		}
	case "":
	default:
		invalid = append(invalid, Prefix+"DB_DRIVER")
	}
	return missing, invalid
}

// Store converts the database settings into a store configuration.
func (c Config) Store() sqlstore.Config {
	return sqlstore.Config{
		Dialect:       sqlstore.Dialect(c.Database.Driver),
		Path:          c.Database.Path,
		Host:          c.Database.Host,
		Port:          c.Database.Port,
		User:          c.Database.User,
		Password:      c.Database.Password,
		Name:          c.Database.Name,
		TLS:           c.Database.TLS,
		TLSSkipVerify: c.Database.TLSSkipVerify,
		MaxOpenConns:  c.Database.MaxOpenConns,
	}
}

// Logging returns the logger options.
func (c Config) Logging() logging.Options {
	return logging.Options{Level: c.LogLevel, File: c.LogFile}
}
