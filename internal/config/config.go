package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/caarlos0/env/v11"

	"loan-pipeline/internal/domain/eligibility"
	"loan-pipeline/internal/domain/needslist"
)

type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB" envDefault:"loans"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"loans"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"loans"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	EventsChannel string `env:"EVENTS_CHANNEL" envDefault:"loan-pipeline.events"`

	IdempTTLSecs int `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	// Compliance-sensitive: inspected once at start-up and logged.
	EligibilityMode   eligibility.Mode `env:"ELIGIBILITY_MODE" envDefault:"enforced"`
	ReferenceDataPath string           `env:"REFERENCE_DATA_PATH"`

	// 1 = legacy needs-list table without description/category.
	NeedsListSchema int `env:"NEEDS_LIST_SCHEMA_VERSION" envDefault:"2"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	mode, err := eligibility.ParseMode(string(c.EligibilityMode))
	if err != nil {
		return nil, err
	}
	c.EligibilityMode = mode
	return c, nil
}

func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.EligibilityMode == eligibility.ModeBypassForTesting && c.IsProduction() {
		return errors.New("ELIGIBILITY_MODE=bypass_for_testing is not allowed when APP_ENV is production")
	}
	if c.NeedsListSchema != needslist.LegacySchema.Version && c.NeedsListSchema != needslist.FullSchema.Version {
		return fmt.Errorf("invalid NEEDS_LIST_SCHEMA_VERSION %d", c.NeedsListSchema)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// NeedsListCaps maps the configured schema version to column capabilities.
func (c *Config) NeedsListCaps() needslist.SchemaCaps {
	if c.NeedsListSchema == needslist.LegacySchema.Version {
		return needslist.LegacySchema
	}
	return needslist.FullSchema
}
