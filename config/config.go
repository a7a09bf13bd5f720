// Package config provides configuration management for archivefs.
// It handles loading and validating configuration from YAML or JSON files and environment variables.
package config

// AppConfig represents the complete application configuration
type AppConfig struct {
	Log      LogConfig      `koanf:"log"`
	Storage  StorageConfig  `koanf:"storage"`
	Title    TitleConfig    `koanf:"title"`
	Archives ArchivesConfig `koanf:"archives"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Mode   string `koanf:"mode"` // path sanitization: production, development or debug
}

// StorageConfig holds the host directories backing the emulated media
type StorageConfig struct {
	SDMCRoot string `koanf:"sdmc_root"`
	NANDRoot string `koanf:"nand_root"`
}

// TitleConfig identifies the running program whose save data is served
type TitleConfig struct {
	ProgramID uint64 `koanf:"program_id"`
}

// ArchivesConfig selects which archive types are registered at startup
type ArchivesConfig struct {
	Enabled []string `koanf:"enabled"`
}
