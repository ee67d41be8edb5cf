package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isaaclog/isaaclog/internal/config"
	"github.com/isaaclog/isaaclog/internal/logging"
	"github.com/isaaclog/isaaclog/internal/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	quiet   bool
	profile string
	region  string

	// render is the global renderer for all output
	render *ui.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "isaaclog",
	Short: "Follow The Binding of Isaac's log.txt with color",
	Long: `isaaclog - follow the game's log.txt live, hide the noise, and color
what matters: errors in red, warnings in yellow, your highlights in blue.

By default the log is looked up in the game's documents folder for the
configured edition and the current user:

  Windows:      C:\Users\<user>\Documents\My Games\Binding of Isaac <edition>\log.txt
  Linux/macOS:  ~/Documents/My Games/Binding of Isaac <edition>/log.txt

Configuration:
  Run 'isaaclog init' to create ~/.isaaclog.yaml. Every key can also be set
  with an ISAACLOG_ environment variable, e.g. ISAACLOG_EDITION=Repentance+.

Examples:
  # Follow the default log for Repentance
  isaaclog

  # Show the last 50 lines first, then follow
  isaaclog -t 50

  # Only lines mentioning your mod, highlight "spawn"
  isaaclog -g mymod -s spawn

  # Follow a specific file and copy what is shown to CloudWatch
  isaaclog -f ./log.txt --mirror "cloudwatch:///isaac/mods?profile=dev"`,
	Args:          cobra.NoArgs,
	RunE:          runFollow,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig, initRenderer)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.isaaclog.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Default AWS profile for cloudwatch mirrors (can be overridden in URI)")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "Default AWS region for cloudwatch mirrors (can be overridden in URI)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress status messages")

	registerFollowFlags(rootCmd)

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initRenderer initializes the global renderer with current settings.
func initRenderer() {
	cfg := loadConfig()
	render = newRenderer(cfg)
}

func newRenderer(cfg config.Config) *ui.Renderer {
	color := !noColor && ui.ColorEnabled(cfg.Color, os.Stdout)
	return ui.NewRendererWithOptions(
		ui.WithNoColor(!color),
		ui.WithQuiet(quiet),
		ui.WithEncoding(cfg.OutputEncoding),
	)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			// Also check ~/.isaaclog/ directory
			viper.AddConfigPath(filepath.Join(home, config.DefaultConfigSubdir))
		}
		viper.SetConfigName(config.DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("ISAACLOG")
	viper.AutomaticEnv()

	// Defaults
	def := config.Default()
	viper.SetDefault("edition", def.Edition)
	viper.SetDefault("interval", def.Interval)
	viper.SetDefault("color", def.Color)
	viper.SetDefault("output_encoding", def.OutputEncoding)
	viper.SetDefault("watch", def.Watch)
	viper.SetDefault("log_file", "")
	viper.SetDefault("user", "")
	viper.SetDefault("mirror", "")

	// Read config file (ignore if not found, warn on other errors)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	if IsVerbose() {
		logging.Default().SetLevel(logging.LevelDebug)
	}
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig() config.Config {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration: %v\n", err)
		return config.Default()
	}
	if noWatch {
		cfg.Watch = false
	}
	if noColor {
		cfg.Color = config.ColorNever
	}
	return cfg
}
