package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/isaaclog/isaaclog/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
ISAACLOG_* environment variables and flags, as YAML.

The resolved log path is included so you can check where isaaclog will look.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// effectiveConfig is the printable form of config.Config.
type effectiveConfig struct {
	ConfigFile     string            `yaml:"config_file,omitempty"`
	ResolvedLog    string            `yaml:"resolved_log_file,omitempty"`
	LogFile        string            `yaml:"log_file,omitempty"`
	Edition        string            `yaml:"edition"`
	User           string            `yaml:"user,omitempty"`
	Interval       string            `yaml:"interval"`
	Color          string            `yaml:"color"`
	OutputEncoding string            `yaml:"output_encoding"`
	Watch          bool              `yaml:"watch"`
	Mirror         string            `yaml:"mirror,omitempty"`
	Mirrors        map[string]string `yaml:"mirrors,omitempty"`
	Profile        string            `yaml:"profile,omitempty"`
	Region         string            `yaml:"region,omitempty"`
}

func newEffectiveConfig(cfg config.Config, configFile string) effectiveConfig {
	resolved, _ := cfg.ResolveLogFile()
	return effectiveConfig{
		ConfigFile:     configFile,
		ResolvedLog:    resolved,
		LogFile:        cfg.LogFile,
		Edition:        cfg.Edition,
		User:           cfg.User,
		Interval:       cfg.Interval.String(),
		Color:          cfg.Color,
		OutputEncoding: cfg.OutputEncoding,
		Watch:          cfg.Watch,
		Mirror:         cfg.Mirror,
		Mirrors:        cfg.Mirrors,
		Profile:        cfg.Profile,
		Region:         cfg.Region,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	data, err := yaml.Marshal(newEffectiveConfig(app.Config, viper.ConfigFileUsed()))
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	if err := app.Config.Validate(); err != nil {
		app.Render.Warning("%v", err)
	}
	return nil
}
