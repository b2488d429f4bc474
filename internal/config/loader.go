package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// whitelistSet is a precomputed lookup table for fast whitelist membership checks.
var whitelistSet map[string]bool

func init() {
	whitelistSet = make(map[string]bool, len(WhitelistedVars))
	for _, v := range WhitelistedVars {
		whitelistSet[v] = true
	}
}

// LoadFile parses a config file at the given path. Files ending in .yaml or
// .yml are parsed as a flat YAML mapping; anything else is treated as
// KEY=VALUE lines.
//
// KEY=VALUE rules:
//   - Empty lines and lines starting with # are skipped.
//   - Lines without an = sign are skipped.
//   - Leading and trailing whitespace is trimmed from both key and value.
//
// In both formats, keys not present in WhitelistedVars are silently ignored.
func LoadFile(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLFile(path)
	default:
		return loadKeyValueFile(path)
	}
}

func loadKeyValueFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first '=' only.
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		// Enforce whitelist.
		if !whitelistSet[key] {
			continue
		}

		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return result, nil
}

func loadYAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}

	result := make(map[string]string, len(raw))
	for key, value := range raw {
		if !whitelistSet[key] {
			continue
		}
		result[key] = value
	}
	return result, nil
}

// EnvOverrides collects whitelisted variables from the process environment
// via lookup (normally os.LookupEnv). Variables that are unset are absent
// from the result; set-but-empty values are included so the environment can
// clear a file-provided value.
func EnvOverrides(lookup func(string) (string, bool)) map[string]string {
	result := make(map[string]string)
	for _, key := range WhitelistedVars {
		if value, ok := lookup(key); ok {
			result[key] = value
		}
	}
	return result
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Explicit config file (explicitPath, must exist if specified)
//  3. Environment overrides
//  4. CLI overrides (cliOverrides map)
func LoadWithPrecedence(explicitPath string, envOverrides, cliOverrides map[string]string) (*Config, error) {
	cfg := NewDefaultConfig()

	if explicitPath != "" {
		m, err := LoadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
		ApplyMapToConfig(cfg, m)
	}

	if len(envOverrides) > 0 {
		ApplyMapToConfig(cfg, envOverrides)
	}

	if len(cliOverrides) > 0 {
		ApplyMapToConfig(cfg, cliOverrides)
	}

	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Keys must use the WhitelistedVars naming convention (e.g., "RUN_TAG").
// Unknown keys are silently ignored. Integer fields that fail to parse
// are silently ignored (the previous value is preserved).
func ApplyMapToConfig(cfg *Config, m map[string]string) {
	for key, value := range m {
		switch key {
		case "RUN_TAG":
			cfg.RunTag = value
		case "RUN_NAME":
			cfg.RunName = value
		case "LOCAL_ROOT":
			cfg.LocalRoot = value
		case "SYNC_INTERVAL":
			applyInt(&cfg.SyncInterval, value)
		case "RESTORE_ENABLED":
			cfg.RestoreEnabled = parseBool(value)
		case "HF_REPO_ID":
			cfg.RepoID = value
		case "HF_REPO_TYPE":
			cfg.RepoType = value
		case "HF_PRIVATE":
			cfg.Private = parseBool(value)
		case "NUM_GPUS":
			applyInt(&cfg.NumGPUs, value)
		case "MODEL_DEPTH":
			applyInt(&cfg.ModelDepth, value)
		case "DEVICE_BATCH_SIZE":
			applyInt(&cfg.DeviceBatchSize, value)
		case "SAVE_EVERY":
			applyInt(&cfg.SaveEvery, value)
		case "DATASET_BOOTSTRAP_SHARDS":
			applyInt(&cfg.DatasetBootstrapShards, value)
		case "DATASET_TOTAL_SHARDS":
			applyInt(&cfg.DatasetTotalShards, value)
		case "EVAL_ENABLED":
			cfg.EvalEnabled = parseBool(value)
		case "SFT_ENABLED":
			cfg.SFTEnabled = parseBool(value)
		case "CHAT_EVAL_ENABLED":
			cfg.ChatEvalEnabled = parseBool(value)
		case "NOTIFY_WEBHOOK":
			cfg.NotifyWebhook = value
		case "VERBOSE":
			cfg.Verbose = parseBool(value)
		}
	}
}

// parseBool accepts the loose truthy spellings used by launch scripts.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func applyInt(dst *int, value string) {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		*dst = n
	}
}
