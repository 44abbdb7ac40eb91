package main

import (
	"errors"
	"os"

	"discernment-trainer/internal/catalog"
	"discernment-trainer/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/config.yml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "discernment-trainer",
	Short: "Fraud-awareness trainer: exposure, coaching, test and score",
	// Running the binary without a subcommand serves the API.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// loadConfig reads the config file and falls back to defaults plus
// environment when the file does not exist
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return config.FromEnv()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Logging.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.Load(path)
	}
	return catalog.Default()
}
