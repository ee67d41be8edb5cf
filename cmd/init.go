package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isaaclog/isaaclog/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize isaaclog configuration",
	Long: `Create a commented default configuration file.

Creates platform-appropriate config files:
  Linux/macOS: ~/.isaaclog.yaml
  Windows:     %USERPROFILE%\.isaaclog.yaml

Examples:
  # Create default config (won't overwrite existing)
  isaaclog init

  # Force overwrite existing config
  isaaclog init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(home, config.DefaultConfigName+".yaml")
	out := cmd.OutOrStdout()

	created, err := createFileIfNotExists(configPath, generateDefaultConfig(runtime.GOOS, config.CurrentUser()), initForce)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Created %s\n", configPath)
		fmt.Fprintf(out, "\nEdit %s to customize your settings.\n", configPath)
	} else {
		fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", configPath)
	}
	return nil
}

func generateDefaultConfig(goos, userName string) string {
	exampleLog := config.DefaultLogPath(goos, userName, "~", config.DefaultEdition)
	if goos == "windows" {
		// Single-quoted YAML keeps backslashes literal.
		exampleLog = "'" + exampleLog + "'"
	}

	return fmt.Sprintf(`# isaaclog configuration

# Game edition used to find log.txt in the documents folder:
# %s
edition: %s

# Follow a specific file instead of the edition default
# log_file: %s

# Windows user name used in the default path (default: current user)
# user: %s

# Polling interval
interval: %s

# Color: auto, always, never
color: %s

# Console encoding lines are checked against before printing:
# %s
output_encoding: %s

# Poll immediately when the log's directory reports a change
watch: true

# Copy displayed lines somewhere else (path, file://, cloudwatch://, @alias)
# mirror: "@cloud"

# Named mirrors usable as @name
# mirrors:
#   archive: ~/isaac-logs/mirror.txt
#   cloud: cloudwatch:///isaac/mods?region=us-east-1

# AWS defaults for cloudwatch mirrors
# profile: my-aws-profile
# region: us-east-1
`,
		strings.Join(config.Editions, ", "), config.DefaultEdition,
		exampleLog, userName,
		config.DefaultInterval, config.DefaultColor,
		"utf-8, windows-1252, iso-8859-1, cp437, cp850", config.DefaultEncoding)
}

// createFileIfNotExists writes content to path unless the file exists and
// force is false. It reports whether the file was written.
func createFileIfNotExists(path, content string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
