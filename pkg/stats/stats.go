// Package stats turns extracted action records into summary figures.
// Everything here is a pure function of its inputs.
package stats

import (
	"cmp"
	"slices"

	mstats "github.com/montanaflynn/stats"

	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
)

// TopActionCount is how many top-liked entries a summary keeps.
const TopActionCount = 3

// Summary holds the aggregate figures for one user's shared actions.
type Summary struct {
	Count          int             `json:"total_actions"`
	PageCount      int             `json:"total_pages"`
	TotalLikes     int             `json:"total_likes"`
	TotalDownloads int             `json:"total_downloads"`
	AvgLikes       float64         `json:"avg_likes"`
	AvgDownloads   float64         `json:"avg_downloads"`
	TopByLikes     []record.Action `json:"top_by_likes,omitempty"`
}

// Summarize computes totals and averages over the extracted actions.
// Averages are rounded to two decimals and stay zero when there are no rows.
func Summarize(actions []record.Action, pages int) Summary {
	s := Summary{Count: len(actions), PageCount: pages}
	if len(actions) == 0 {
		return s
	}

	likes := make(mstats.Float64Data, len(actions))
	downloads := make(mstats.Float64Data, len(actions))
	for i, a := range actions {
		likes[i] = float64(a.Likes)
		downloads[i] = float64(a.Downloads)
	}

	s.TotalLikes = total(likes)
	s.TotalDownloads = total(downloads)
	s.AvgLikes = roundedMean(likes)
	s.AvgDownloads = roundedMean(downloads)
	s.TopByLikes = TopByLikes(actions, TopActionCount)
	return s
}

// TopByLikes returns the n most liked actions, ties keeping input order.
// The input slice is left untouched.
func TopByLikes(actions []record.Action, n int) []record.Action {
	if n <= 0 || len(actions) == 0 {
		return nil
	}
	ranked := slices.Clone(actions)
	slices.SortStableFunc(ranked, func(a, b record.Action) int {
		return cmp.Compare(b.Likes, a.Likes)
	})
	return ranked[:min(n, len(ranked))]
}

// AuthorStats flattens one recommended author's identity and action summary
// into a report row. Err carries a per-author failure; the zero figures
// then stand.
type AuthorStats struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	Summary
	ExtractedAt string `json:"extraction_time"`
	Err         string `json:"error,omitempty"`
}

// AuthorsRollup sums per-author figures for the recommended report.
type AuthorsRollup struct {
	Authors        int           `json:"authors"`
	Failed         int           `json:"failed,omitempty"`
	TotalActions   int           `json:"total_actions"`
	TotalLikes     int           `json:"total_likes"`
	TotalDownloads int           `json:"total_downloads"`
	TopAuthors     []AuthorStats `json:"top_authors,omitempty"`
}

// SummarizeAuthors rolls up author rows and ranks the top three by total
// likes, ties keeping input order. Failed authors count toward Failed and
// stay out of both the totals and the ranking.
func SummarizeAuthors(list []AuthorStats) AuthorsRollup {
	r := AuthorsRollup{Authors: len(list)}
	ranked := make([]AuthorStats, 0, len(list))
	for _, a := range list {
		if a.Err != "" {
			r.Failed++
			continue
		}
		r.TotalActions += a.Count
		r.TotalLikes += a.TotalLikes
		r.TotalDownloads += a.TotalDownloads
		ranked = append(ranked, a)
	}

	slices.SortStableFunc(ranked, func(a, b AuthorStats) int {
		return cmp.Compare(b.TotalLikes, a.TotalLikes)
	})
	r.TopAuthors = ranked[:min(TopActionCount, len(ranked))]
	return r
}

func total(data mstats.Float64Data) int {
	sum, err := mstats.Sum(data)
	if err != nil {
		return 0
	}
	return int(sum)
}

func roundedMean(data mstats.Float64Data) float64 {
	mean, err := mstats.Mean(data)
	if err != nil {
		return 0
	}
	rounded, err := mstats.Round(mean, 2)
	if err != nil {
		return 0
	}
	return rounded
}
