// Package config holds the tunables for the orchestrator graph driver:
// retry budgets, timeouts, and the memoization policy's retry ceiling.
package config

import (
	"os"
	"strconv"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// OrchestratorConfig bounds the plan/execute/policy loop and its retry
// budgets. Zero-valued fields are filled in from Defaults() by Load.
type OrchestratorConfig struct {
	// MaxSteps is the hard recursion limit on plan-node cycles. Exceeding
	// it fails the run closed.
	MaxSteps int `yaml:"max_steps"`

	// MaxInvalidPlanRetries bounds consecutive malformed-planner-output
	// retries before the run fails closed.
	MaxInvalidPlanRetries int `yaml:"max_invalid_plan_retries"`

	// MaxProviderTimeoutRetries bounds how many times a planner call may
	// time out before the run fails closed.
	MaxProviderTimeoutRetries int `yaml:"max_provider_timeout_retries"`

	// MaxContentValidationRetries bounds mission-content-validator
	// failures across the whole run before the run fails closed.
	MaxContentValidationRetries int `yaml:"max_content_validation_retries"`

	// PlanCallTimeoutSeconds is the hard wall-clock timeout for a single
	// Generate call. <= 0 disables the timeout.
	PlanCallTimeoutSeconds float64 `yaml:"plan_call_timeout_seconds"`

	// MaxPolicyRetries is MemoizationPolicy.max_policy_retries: how many
	// times the planner may skip a required memoize call before the run
	// raises MemoizationPolicyViolation.
	MaxPolicyRetries int `yaml:"max_policy_retries"`

	// MissionParseTimeoutSeconds guards the mission parser against
	// runaway input. <= 0 disables the timeout.
	MissionParseTimeoutSeconds float64 `yaml:"mission_parse_timeout_seconds"`
}

// Defaults returns the built-in configuration used when no YAML file or
// environment override is present.
func Defaults() OrchestratorConfig {
	return OrchestratorConfig{
		MaxSteps:                    40,
		MaxInvalidPlanRetries:       8,
		MaxProviderTimeoutRetries:   1,
		MaxContentValidationRetries: 2,
		PlanCallTimeoutSeconds:      45,
		MaxPolicyRetries:            2,
		MissionParseTimeoutSeconds:  5,
	}
}

// Load reads an OrchestratorConfig from a YAML file, merges it over
// Defaults() (missing/zero fields fall back to the default), and applies
// environment overrides. An empty path is not an error: Load("") returns
// the defaults with env overrides applied. A non-empty path to a file that
// does not exist returns a LoadError wrapping ErrConfigNotFound.
func Load(path string) (*OrchestratorConfig, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, NewLoadError(path, ErrConfigNotFound)
			}
			return nil, NewLoadError(path, err)
		}

		var fromFile OrchestratorConfig
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, NewLoadError(path, err)
		}
		if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
			return nil, NewLoadError(path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets environment variables win over whatever was
// loaded from YAML or the defaults.
func applyEnvOverrides(cfg *OrchestratorConfig) {
	if v, ok := getEnvInt("AGENTGRAPH_MAX_STEPS"); ok {
		cfg.MaxSteps = v
	}
	if v, ok := getEnvInt("AGENTGRAPH_MAX_INVALID_PLAN_RETRIES"); ok {
		cfg.MaxInvalidPlanRetries = v
	}
	if v, ok := getEnvInt("AGENTGRAPH_MAX_PROVIDER_TIMEOUT_RETRIES"); ok {
		cfg.MaxProviderTimeoutRetries = v
	}
	if v, ok := getEnvInt("AGENTGRAPH_MAX_CONTENT_VALIDATION_RETRIES"); ok {
		cfg.MaxContentValidationRetries = v
	}
	if v, ok := getEnvFloat("AGENTGRAPH_PLAN_CALL_TIMEOUT_SECONDS"); ok {
		cfg.PlanCallTimeoutSeconds = v
	}
	if v, ok := getEnvInt("AGENTGRAPH_MAX_POLICY_RETRIES"); ok {
		cfg.MaxPolicyRetries = v
	}
	if v, ok := getEnvFloat("AGENTGRAPH_MISSION_PARSE_TIMEOUT_SECONDS"); ok {
		cfg.MissionParseTimeoutSeconds = v
	}
}

func getEnvInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func validate(cfg *OrchestratorConfig) error {
	if cfg.MaxSteps <= 0 {
		return NewValidationError("max_steps", ErrInvalidValue)
	}
	if cfg.MaxPolicyRetries < 0 {
		return NewValidationError("max_policy_retries", ErrInvalidValue)
	}
	return nil
}
