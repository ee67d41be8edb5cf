package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/isaaclog/isaaclog/internal/classify"
	"github.com/isaaclog/isaaclog/internal/mirror"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Manage mirror destinations",
}

var mirrorTestCmd = &cobra.Command{
	Use:   "test [uri]",
	Short: "Send a test line to a mirror",
	Long: `Open a mirror, write a single test line and flush it, to check paths and
AWS credentials before a session. Without an argument the configured
mirror is used.

Mirror URIs:
  /path/to/copy.txt                                Local file (shorthand)
  file:///path/to/copy.txt                         Local file
  cloudwatch:///log-group?profile=x&region=y       AWS CloudWatch Logs
  cloudwatch:///log-group?metrics=Isaac/Mods       ...plus per-category line counts
  @name                                            Alias from "mirrors:" in the config

Examples:
  isaaclog mirror test ./session.txt
  isaaclog mirror test "cloudwatch:///isaac/mods?profile=dev&stream=laptop"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMirrorTest,
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.AddCommand(mirrorTestCmd)
}

func runMirrorTest(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	uri := app.Config.Mirror
	if len(args) == 1 {
		uri = args[0]
	}
	if uri == "" {
		return fmt.Errorf("no mirror given and none configured (pass a URI or set mirror: in the config)")
	}

	sink, err := mirror.Open(uri, mirror.OpenOptions{
		Profile: app.Config.Profile,
		Region:  app.Config.Region,
		Aliases: app.Config.Mirrors,
	})
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	line := classify.Line{
		Text:     fmt.Sprintf("[INFO] - isaaclog mirror test at %s", time.Now().Format(time.RFC3339)),
		Category: classify.Highlight,
	}
	if err := sink.Write(ctx, line); err != nil {
		return fmt.Errorf("mirror write failed: %w", err)
	}
	if err := sink.Flush(ctx); err != nil {
		return fmt.Errorf("mirror flush failed: %w", err)
	}

	switch s := sink.(type) {
	case *mirror.FileSink:
		app.Render.KeyValue("File", s.Path())
	case *mirror.CloudWatchSink:
		app.Render.KeyValue("Log group", s.Group())
		app.Render.KeyValue("Log stream", s.Stream())
		if id := app.GetAccountID(ctx, s.Profile(), s.Region()); id != "" {
			app.Render.KeyValue("Account", id)
		}
	}
	app.Render.Success("Test line delivered to %s", uri)
	return nil
}
