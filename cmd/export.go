package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dt-pm-tools/ground-control/internal/export"
	"github.com/dt-pm-tools/ground-control/internal/jira"
	"github.com/dt-pm-tools/ground-control/internal/ticket"
)

var (
	exportOutputDir string
	exportRecursive bool
	exportClean     bool
)

var exportCmd = &cobra.Command{
	Use:   "export [TICKET-KEY]",
	Short: "Export tickets to a local directory tree",
	Long: `Exports the configured project's ticket hierarchy, or a single ticket,
optionally with all of its descendants. Each ticket becomes a directory
containing ticket.md and metadata.json, nested under its parent ticket's
directory. Re-running overwrites files in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		scope := ticket.Scope{Project: appConfig.Project, Recursive: exportRecursive}
		if len(args) > 0 {
			scope.Key = strings.ToUpper(args[0])
		} else {
			if exportRecursive {
				return fmt.Errorf("--recursive requires a TICKET-KEY (a whole-project export already includes every ticket)")
			}
			if err := appConfig.ValidateProject(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
		}

		client := jira.NewClient(appConfig)
		writer := export.NewWriter(afero.NewOsFs(), exportOutputDir)
		if exportClean {
			if err := writer.Clean(); err != nil {
				return err
			}
		}

		res, err := export.Run(cmd.Context(), client, writer, scope, os.Stderr)
		if err != nil {
			return err
		}

		printSummary(res)
		if len(res.Failures) > 0 {
			return fmt.Errorf("%d ticket(s) failed to write", len(res.Failures))
		}
		return nil
	},
}

func printSummary(res export.Result) {
	green := color.New(color.FgGreen).FprintfFunc()
	green(os.Stderr, "Exported %d tickets to %s\n", res.Written, exportOutputDir)
	for _, prefix := range []string{"INI", "EPIC", "STORY", "TASK"} {
		if n := res.ByPrefix[prefix]; n > 0 {
			fmt.Fprintf(os.Stderr, "- %s: %d\n", prefix, n)
		}
	}
	if len(res.Failures) > 0 {
		red := color.New(color.FgRed).FprintfFunc()
		red(os.Stderr, "Failed to write %d ticket(s):\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(os.Stderr, "- %s\n", f.Error())
		}
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutputDir, "output-dir", "o", "tickets", "directory to export tickets into")
	exportCmd.Flags().BoolVarP(&exportRecursive, "recursive", "r", false, "also export all descendants of the given ticket")
	exportCmd.Flags().BoolVar(&exportClean, "clean", false, "remove previous contents of the output directory first")
	rootCmd.AddCommand(exportCmd)
}
