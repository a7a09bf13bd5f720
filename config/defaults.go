package config

// DefaultAppConfig returns an AppConfig struct with sensible default values
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Mode:   "debug",
		},
		Storage: StorageConfig{
			SDMCRoot: "./sdmc",
			NANDRoot: "./nand",
		},
		Title: TitleConfig{
			ProgramID: 0,
		},
		Archives: ArchivesConfig{
			Enabled: []string{
				"RomFS",
				"SaveData",
				"ExtSaveData",
				"SharedExtSaveData",
				"SystemSaveData",
				"SDMC",
				"SaveDataCheck",
			},
		},
	}
}
