package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/quickerstat/pkg/quickerstat"
	"github.com/codeGROOVE-dev/quickerstat/pkg/report"
)

var recommendedCmd = &cobra.Command{
	Use:   "recommended",
	Short: "Collect action statistics for the recommended authors",
	Long: `Read the share portal's recommended listing and extract action
statistics for each featured author, one author at a time. A failing author
is recorded and the walk continues. The roundup lands in
` + report.AuthorsCSVName + `.`,
	Args: cobra.NoArgs,
	RunE: runRecommended,
}

func init() {
	rootCmd.AddCommand(recommendedCmd)
	recommendedCmd.Flags().Bool("list", false, "only list the authors, skip per-author stats")
}

func runRecommended(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if listOnly, _ := cmd.Flags().GetBool("list"); listOnly {
		authors, err := quickerstat.RecommendedAuthors(ctx, buildOptions()...)
		if err != nil {
			return err
		}
		for _, a := range authors {
			fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", a.UserID, a.Name, a.URL)
		}
		logCacheStats()
		return nil
	}

	rows, err := quickerstat.RecommendedAuthorStats(ctx, buildOptions()...)
	if err != nil {
		return err
	}

	report.PrintAuthors(os.Stdout, rows)
	writeArtifact(report.WriteAuthorsCSV(outDir, rows))

	logCacheStats()
	return nil
}
