package config

import (
	"strings"
	"testing"

	"loan-pipeline/internal/domain/eligibility"
	"loan-pipeline/internal/domain/needslist"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "8080" || c.IdempTTLSecs != 300 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.EligibilityMode != eligibility.ModeEnforced {
		t.Fatalf("mode = %q, want enforced", c.EligibilityMode)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate defaults: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ELIGIBILITY_MODE", "BYPASS_FOR_TESTING")
	t.Setenv("MYSQL_HOST", "db.internal")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "9090" || c.RedisDB != 3 {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.EligibilityMode != eligibility.ModeBypassForTesting {
		t.Fatalf("mode = %q", c.EligibilityMode)
	}
	if !strings.Contains(c.MySQLDSN(), "@tcp(db.internal:3306)/loans?") {
		t.Fatalf("dsn = %s", c.MySQLDSN())
	}
}

func TestLoad_BadMode(t *testing.T) {
	t.Setenv("ELIGIBILITY_MODE", "off")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown eligibility mode")
	}
}

func TestValidate_BypassRefusedInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ELIGIBILITY_MODE", "bypass_for_testing")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "not allowed") {
		t.Fatalf("want bypass refusal, got %v", err)
	}
}

func TestValidate_MissingMySQL(t *testing.T) {
	c := &Config{AppPort: "8080", MySQLPort: "3306", IdempTTLSecs: 1, NeedsListSchema: 2}
	if err := c.Validate(); err == nil {
		t.Fatal("expected missing mysql error")
	}
}

func TestNeedsListCaps(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.NeedsListCaps() != needslist.FullSchema {
		t.Fatalf("default caps = %+v", c.NeedsListCaps())
	}

	t.Setenv("NEEDS_LIST_SCHEMA_VERSION", "1")
	c, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.NeedsListCaps() != needslist.LegacySchema {
		t.Fatalf("legacy caps = %+v", c.NeedsListCaps())
	}

	c.NeedsListSchema = 7
	if err := c.Validate(); err == nil {
		t.Fatal("expected invalid schema version error")
	}
}
