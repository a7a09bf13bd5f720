package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override configuration
const EnvPrefix = "ARCHIVEFS_"

var knownArchives = map[string]bool{
	"RomFS":             true,
	"SaveData":          true,
	"ExtSaveData":       true,
	"SharedExtSaveData": true,
	"SystemSaveData":    true,
	"SDMC":              true,
	"SDMCWriteOnly":     true,
	"SaveDataCheck":     true,
}

// LoadConfig loads configuration from multiple sources with strict priority:
// 1. Environment variables (highest priority)
// 2. Config file (archivefs.yaml, archivefs.yml or archivefs.json)
// 3. Defaults (lowest priority)
func LoadConfig() (AppConfig, error) {
	return LoadConfigFromFile("")
}

// LoadConfigFromFile loads configuration from multiple sources with a specific config file:
// 1. Environment variables (highest priority)
// 2. Specified config file or default config files
// 3. Defaults (lowest priority)
func LoadConfigFromFile(configFilePath string) (AppConfig, error) {
	k := koanf.New(".")

	// Load default configuration first
	if err := k.Load(structs.Provider(DefaultAppConfig(), "koanf"), nil); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load default config: %w", err)
	}

	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err != nil {
			return AppConfig{}, fmt.Errorf("specified config file %s not found: %w", configFilePath, err)
		}
		if err := k.Load(file.Provider(configFilePath), parserFor(configFilePath)); err != nil {
			return AppConfig{}, fmt.Errorf("failed to load config file %s: %w", configFilePath, err)
		}
	} else {
		for _, configFile := range []string{"archivefs.yaml", "archivefs.yml", "archivefs.json"} {
			if _, err := os.Stat(configFile); err == nil {
				if err := k.Load(file.Provider(configFile), parserFor(configFile)); err != nil {
					return AppConfig{}, fmt.Errorf("failed to load config file %s: %w", configFile, err)
				}
				break
			}
		}
	}

	// ARCHIVEFS_STORAGE_SDMC_ROOT -> storage.sdmc_root
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return AppConfig{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps an environment variable to a config key. Only the first
// underscore separates the section from the field name.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func parserFor(path string) koanf.Parser {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return yaml.Parser()
	case strings.HasSuffix(path, ".json"):
		return json.Parser()
	default:
		return yaml.Parser()
	}
}

// validateConfig validates that required configuration fields are set
func validateConfig(cfg *AppConfig) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console; got %q", cfg.Log.Format)
	}

	switch cfg.Log.Mode {
	case "production", "development", "debug":
	default:
		return fmt.Errorf("log.mode must be production, development or debug; got %q", cfg.Log.Mode)
	}

	if cfg.Storage.SDMCRoot == "" {
		return fmt.Errorf("storage.sdmc_root is required")
	}

	if cfg.Storage.NANDRoot == "" {
		return fmt.Errorf("storage.nand_root is required")
	}

	seen := make(map[string]bool, len(cfg.Archives.Enabled))
	for _, name := range cfg.Archives.Enabled {
		if !knownArchives[name] {
			return fmt.Errorf("archives.enabled contains unknown archive type %q", name)
		}
		if seen[name] {
			return fmt.Errorf("archives.enabled lists %q more than once", name)
		}
		seen[name] = true
	}

	return nil
}
