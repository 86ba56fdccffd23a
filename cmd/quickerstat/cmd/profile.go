package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/quickerstat/pkg/quickerstat"
	"github.com/codeGROOVE-dev/quickerstat/pkg/report"
)

var profileCmd = &cobra.Command{
	Use:   "profile [user-id-or-url]",
	Short: "Extract only the profile fields",
	Long: `Fetch one user page and report the profile header fields: username,
referral code, registration age and pro status. Fields the page no longer
exposes stay blank; the run still succeeds.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	profile, err := quickerstat.FetchProfile(ctx, userArg(args), buildOptions()...)
	if err != nil {
		if !errors.Is(err, quickerstat.ErrNoFields) {
			return err
		}
		logger.Warn("no profile fields extracted, reporting the empty record")
	}

	report.PrintProfile(os.Stdout, profile)
	writeArtifact(report.WriteUserJSON(outDir, report.Subject(profile.UserID), profile, nil))

	logCacheStats()
	return nil
}
