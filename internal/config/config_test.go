package config

import (
	"testing"

	"github.com/philgrim2/scriptsym/internal/symbolic"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{VersionEnv, RulesEnv, CacheDirEnv, LogLevelEnv} {
		t.Setenv(e, "")
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfiguration()
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	if cfg.Version != symbolic.Legacy {
		t.Errorf("default Version = %v, want Legacy", cfg.Version)
	}
	if cfg.Rules != symbolic.All {
		t.Errorf("default Rules = %v, want All", cfg.Rules)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default LogLevel = %q, want \"info\"", cfg.LogLevel)
	}
	if cfg.CacheDir != "" {
		t.Errorf("default CacheDir = %q, want empty", cfg.CacheDir)
	}
}

func TestLoadConfigurationHonorsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(VersionEnv, versionSegwitV1)
	t.Setenv(RulesEnv, rulesConsensus)
	t.Setenv(CacheDirEnv, "/tmp/scriptsym-cache")
	t.Setenv(LogLevelEnv, "debug")

	cfg, err := LoadConfiguration()
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	if cfg.Version != symbolic.SegwitV1 {
		t.Errorf("Version = %v, want SegwitV1", cfg.Version)
	}
	if cfg.Rules != symbolic.ConsensusOnly {
		t.Errorf("Rules = %v, want ConsensusOnly", cfg.Rules)
	}
	if cfg.CacheDir != "/tmp/scriptsym-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfigurationRejectsUnknownVersion(t *testing.T) {
	clearEnv(t)
	t.Setenv(VersionEnv, "NOT_A_VERSION")

	if _, err := LoadConfiguration(); err == nil {
		t.Fatal("expected an error for an unrecognized version value")
	}
}

func TestLoadConfigurationRejectsUnknownRules(t *testing.T) {
	clearEnv(t)
	t.Setenv(RulesEnv, "NOT_A_RULESET")

	if _, err := LoadConfiguration(); err == nil {
		t.Fatal("expected an error for an unrecognized rules value")
	}
}
