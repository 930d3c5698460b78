// Package config loads the analyzer's runtime configuration from the
// environment, in the shape of the teacher's configuration package
// (configuration/configuration.go): one LoadConfiguration entry point,
// constants for the recognized environment variable names, and a switch
// per variable that rejects unrecognized values outright.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/philgrim2/scriptsym/internal/symbolic"
)

const (
	// VersionEnv selects the script-version regime.
	VersionEnv = "SCRIPTSYM_VERSION"

	// RulesEnv selects the consensus-vs-relay rule strictness.
	RulesEnv = "SCRIPTSYM_RULES"

	// CacheDirEnv points at the on-disk analysis cache directory. Left
	// unset, the cache runs in-memory for the life of the process.
	CacheDirEnv = "SCRIPTSYM_CACHE_DIR"

	// LogLevelEnv selects the zap log level ("debug", "info", "warn").
	LogLevelEnv = "SCRIPTSYM_LOG_LEVEL"

	versionLegacy   = "LEGACY"
	versionSegwitV0 = "SEGWITV0"
	versionSegwitV1 = "SEGWITV1"

	rulesAll       = "ALL"
	rulesConsensus = "CONSENSUS"
)

// Configuration is the analyzer's process-wide configuration.
type Configuration struct {
	Version  symbolic.Version
	Rules    symbolic.Rules
	CacheDir string
	LogLevel string
}

// LoadConfiguration builds a Configuration from the environment. Unset
// variables take defaults: LEGACY for VersionEnv, ALL for RulesEnv, "info"
// for LogLevelEnv, and an empty CacheDir.
func LoadConfiguration() (*Configuration, error) {
	config := &Configuration{
		CacheDir: os.Getenv(CacheDirEnv),
		LogLevel: os.Getenv(LogLevelEnv),
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	versionValue := os.Getenv(VersionEnv)
	switch versionValue {
	case versionLegacy, "":
		config.Version = symbolic.Legacy
	case versionSegwitV0:
		config.Version = symbolic.SegwitV0
	case versionSegwitV1:
		config.Version = symbolic.SegwitV1
	default:
		return nil, fmt.Errorf("%s is not a valid %s", versionValue, VersionEnv)
	}

	rulesValue := os.Getenv(RulesEnv)
	switch rulesValue {
	case rulesAll, "":
		config.Rules = symbolic.All
	case rulesConsensus:
		config.Rules = symbolic.ConsensusOnly
	default:
		return nil, fmt.Errorf("%s is not a valid %s", rulesValue, RulesEnv)
	}

	if config.Version < symbolic.Legacy || config.Version > symbolic.SegwitV1 {
		return nil, errors.New("resolved version out of range")
	}

	return config, nil
}
