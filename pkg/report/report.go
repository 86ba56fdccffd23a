// Package report renders extraction results for humans and writes the
// machine artifacts (JSON and CSV files).
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
	"github.com/codeGROOVE-dev/quickerstat/pkg/stats"
)

// AuthorsCSVName is the fixed file name of the recommended-authors report.
const AuthorsCSVName = "recommended_authors_stats.csv"

var unsafeSubjectChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Subject turns a user id into a filesystem-safe file name stem.
func Subject(userID string) string {
	s := unsafeSubjectChars.ReplaceAllString(userID, "_")
	if s == "" {
		return "user"
	}
	return s
}

// WriteUserJSON writes `<subject>.json` holding the profile and, when
// present, the action summary in one flat document.
func WriteUserJSON(dir, subject string, profile *record.Profile, summary *stats.Summary) (string, error) {
	doc := struct {
		*record.Profile
		*stats.Summary
	}{profile, summary}
	return writeJSON(dir, subject+".json", doc)
}

// WriteActionsJSON writes `<subject>_actions.json` with every extracted row.
func WriteActionsJSON(dir, subject string, actions []record.Action) (string, error) {
	return writeJSON(dir, subject+"_actions.json", actions)
}

// WriteActionsCSV writes `<subject>_actions.csv`, one row per action.
func WriteActionsCSV(dir, subject string, actions []record.Action) (string, error) {
	rows := make([][]string, 0, len(actions)+1)
	rows = append(rows, []string{
		"name", "description", "applicable", "author", "size", "likes", "downloads", "frequency",
	})
	for _, a := range actions {
		rows = append(rows, []string{
			a.Title,
			a.Description,
			a.Applicable,
			a.Author,
			a.Size,
			strconv.Itoa(a.Likes),
			strconv.Itoa(a.Downloads),
			a.Frequency,
		})
	}
	return writeCSV(dir, subject+"_actions.csv", rows)
}

// WriteAuthorsCSV writes the recommended-authors report, one row per author
// in listing order.
func WriteAuthorsCSV(dir string, authors []stats.AuthorStats) (string, error) {
	rows := make([][]string, 0, len(authors)+1)
	rows = append(rows, []string{
		"author_name", "user_id", "profile_url",
		"total_actions", "total_likes", "total_downloads",
		"avg_likes", "avg_downloads", "total_pages", "extraction_time",
	})
	for _, a := range authors {
		rows = append(rows, []string{
			a.Name,
			a.UserID,
			a.ProfileURL,
			strconv.Itoa(a.Count),
			strconv.Itoa(a.TotalLikes),
			strconv.Itoa(a.TotalDownloads),
			formatAvg(a.AvgLikes),
			formatAvg(a.AvgDownloads),
			strconv.Itoa(a.PageCount),
			a.ExtractedAt,
		})
	}
	return writeCSV(dir, AuthorsCSVName, rows)
}

// PrintProfile writes the profile as key/value lines. Unresolved fields
// show a dash so partial extractions stay readable.
func PrintProfile(w io.Writer, p *record.Profile) {
	fmt.Fprintf(w, "User:            %s\n", orDash(p.UserID))
	fmt.Fprintf(w, "Username:        %s\n", orDash(p.Username))
	fmt.Fprintf(w, "Referral code:   %s\n", orDash(p.ReferralCode))
	fmt.Fprintf(w, "Registered:      %s\n", dayCount(p.RegistrationDays))
	fmt.Fprintf(w, "Pro user:        %s\n", yesNo(p.IsPro))
	fmt.Fprintf(w, "Profile URL:     %s\n", orDash(p.URL))
}

// PrintSummary writes the aggregate figures and a table of the most liked
// actions.
func PrintSummary(w io.Writer, s stats.Summary) {
	fmt.Fprintf(w, "Actions:         %d\n", s.Count)
	fmt.Fprintf(w, "Pages:           %d\n", s.PageCount)
	fmt.Fprintf(w, "Total likes:     %d\n", s.TotalLikes)
	fmt.Fprintf(w, "Total downloads: %d\n", s.TotalDownloads)
	fmt.Fprintf(w, "Avg likes:       %.2f\n", s.AvgLikes)
	fmt.Fprintf(w, "Avg downloads:   %.2f\n", s.AvgDownloads)

	if len(s.TopByLikes) == 0 {
		return
	}
	fmt.Fprintf(w, "\nMost liked actions:\n")
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Action", "Likes", "Downloads"})
	for i, a := range s.TopByLikes {
		tw.AppendRow(table.Row{i + 1, a.Title, a.Likes, a.Downloads})
	}
	tw.Render()
}

// PrintAuthors writes one table row per author in listing order, then the
// roll-up and any per-author failures.
func PrintAuthors(w io.Writer, authors []stats.AuthorStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Author", "User ID", "Actions", "Likes", "Downloads", "Avg Likes", "Pages"})
	for _, a := range authors {
		tw.AppendRow(table.Row{
			orDash(a.Name), a.UserID, a.Count, a.TotalLikes, a.TotalDownloads,
			fmt.Sprintf("%.2f", a.AvgLikes), a.PageCount,
		})
	}
	tw.Render()

	rollup := stats.SummarizeAuthors(authors)
	fmt.Fprintf(w, "\nAuthors:         %d\n", rollup.Authors)
	fmt.Fprintf(w, "Total actions:   %d\n", rollup.TotalActions)
	fmt.Fprintf(w, "Total likes:     %d\n", rollup.TotalLikes)
	fmt.Fprintf(w, "Total downloads: %d\n", rollup.TotalDownloads)
	for i, a := range rollup.TopAuthors {
		fmt.Fprintf(w, "Top %d:           %s (%d likes)\n", i+1, orDash(a.Name), a.TotalLikes)
	}
	for _, a := range authors {
		if a.Err != "" {
			fmt.Fprintf(w, "Failed:          %s: %s\n", a.UserID, a.Err)
		}
	}
}

func writeJSON(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func writeCSV(dir, name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func formatAvg(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dayCount(days int) string {
	if days <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d days", days)
}
