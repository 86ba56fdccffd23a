package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/quickerstat/pkg/quickerstat"
	"github.com/codeGROOVE-dev/quickerstat/pkg/report"
)

var actionsCmd = &cobra.Command{
	Use:   "actions [user-id-or-url]",
	Short: "Extract shared actions and their statistics",
	Long: `Walk every page of a user's shared-actions table and report totals,
averages and the most liked actions. The rows land in
<subject>_actions.json and <subject>_actions.csv.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runActions,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rep, err := quickerstat.UserStats(ctx, userArg(args), buildOptions()...)
	if err != nil {
		return err
	}

	report.PrintSummary(os.Stdout, rep.Stats)

	subject := report.Subject(rep.Profile.UserID)
	writeArtifact(report.WriteActionsJSON(outDir, subject, rep.Actions))
	writeArtifact(report.WriteActionsCSV(outDir, subject, rep.Actions))

	logCacheStats()
	return nil
}
