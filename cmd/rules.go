package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/isaaclog/isaaclog/internal/classify"
)

var (
	rulesCheck     string
	rulesHighlight string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the noise and category rules",
	Long: `List the rules every log line goes through, in the order they apply.

A line first goes through the noise table (matching lines are never shown),
then the --grep filter, then the category table where the first match
decides the color. Plain [INFO] lines matching no category are hidden.

Examples:
  # Show both tables
  isaaclog rules

  # See how a line would be treated
  isaaclog rules --check "[INFO] - Lua Error: attempt to index a nil value"`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVar(&rulesCheck, "check", "", "Classify this line and print the verdict")
	rulesCmd.Flags().StringVarP(&rulesHighlight, "highlight", "s", "", "Highlight term used with --check")
}

func runRules(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	if rulesCheck != "" {
		l := classify.ClassifyLine([]byte(rulesCheck), classify.Filter{Highlight: rulesHighlight})
		app.Render.KeyValue("Category", l.Category.String())
		app.Render.KeyValue("Shown", strconv.FormatBool(l.Category.Visible()))
		if l.Category.Visible() {
			app.Render.Line(l)
		}
		return nil
	}

	app.Render.Section("Noise (never shown)")
	rows := make([][]string, 0, len(classify.NoiseRules))
	for _, r := range classify.NoiseRules {
		rows = append(rows, []string{r.Name, r.Describe()})
	}
	app.Render.Table([]string{"NAME", "MATCH (lower-cased line)"}, rows)

	app.Render.Section("Categories (first match wins)")
	rows = make([][]string, 0, len(classify.CategoryRules))
	for i, r := range classify.CategoryRules {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), r.Name, r.Category.String(), r.Description})
	}
	app.Render.Table([]string{"#", "NAME", "CATEGORY", "MATCH"}, rows)
	return nil
}
