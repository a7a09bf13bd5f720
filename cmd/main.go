package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/config"
	"github.com/ebogdum/archivefs/internal/logfield"
)

var rootCmd = &cobra.Command{
	Use:   "archivefs",
	Short: "archivefs - filesystem service archive manager",
	Long: `archivefs manages the archives of an emulated console filesystem service:
it opens archives over host directories, provisions save-data containers and
drives files and directories through the service command protocol.`,
	SilenceUsage: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the archivefs configuration and display the loaded settings",
	RunE:  validateConfig,
}

var configFilePath string

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")

	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	addArchiveCommands(rootCmd)
	addSaveDataCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// validateConfig validates the archivefs configuration and displays settings
func validateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("Validating configuration...")

	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		fmt.Printf("❌ Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Println("✅ Configuration is valid")
	fmt.Printf("SDMC Root: %s\n", cfg.Storage.SDMCRoot)
	fmt.Printf("NAND Root: %s\n", cfg.Storage.NANDRoot)
	fmt.Printf("Program ID: %016x\n", cfg.Title.ProgramID)
	fmt.Printf("Archives: %v\n", cfg.Archives.Enabled)
	fmt.Printf("Log: level=%s format=%s mode=%s\n", cfg.Log.Level, cfg.Log.Format, cfg.Log.Mode)

	return nil
}

// initializeLogger creates a zap logger based on configuration
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch logCfg.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Command output goes to stdout, keep logs apart
	cfg.OutputPaths = []string{"stderr"}

	if mode, ok := logfield.ParseMode(logCfg.Mode); ok {
		logfield.SetMode(mode)
	}

	return cfg.Build()
}

// syncLogger flushes buffered log entries
func syncLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		// Log to stderr since logger may not be working
		fmt.Fprintf(os.Stderr, "Failed to sync logger: %v\n", err)
	}
}
