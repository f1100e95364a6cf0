package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alex/affect/internal/config"
	"github.com/alex/affect/internal/logging"
)

var (
	configPath  string
	logLevel    string
	accelerated bool
)

var rootCmd = &cobra.Command{
	Use:   "affectd",
	Short: "Affective state engine for a companion robot",
	Long: "affectd keeps a robot's temperament, mood and needs, turns stimuli into\n" +
		"display emotions and serves them to presentation clients.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.affectd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&accelerated, "accelerated", false, "Run simulated time 180x faster")

	rootCmd.AddCommand(runCmd, simCmd, classifyCmd, eventsCmd, temperamentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, "", err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

func applyFlags(cfg *config.Config) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if accelerated {
		cfg.Runtime.Accelerated = true
	}
}

func newLogger(cfg *config.Config, console bool) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Dir:     cfg.Logging.Dir,
		Level:   cfg.Logging.Level,
		Console: console && cfg.Logging.Console,
	})
}
