// Package main demonstrates basic usage of the quickerstat library.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/codeGROOVE-dev/quickerstat/pkg/quickerstat"
)

func main() {
	flag.Parse()

	userID := "113342-"
	if len(flag.Args()) > 0 {
		userID = flag.Args()[0]
	}

	ctx := context.Background()

	report, err := quickerstat.UserStats(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to extract user stats: %v", err)
	}

	fmt.Printf("User:      %s\n", report.Profile.UserID)
	fmt.Printf("Username:  %s\n", report.Profile.Username)
	fmt.Printf("Referral:  %s\n", report.Profile.ReferralCode)
	fmt.Printf("Pro:       %v\n", report.Profile.IsPro)
	fmt.Printf("Actions:   %d\n", report.Stats.Count)
	fmt.Printf("Likes:     %d\n", report.Stats.TotalLikes)
	fmt.Printf("Downloads: %d\n", report.Stats.TotalDownloads)
	for i, a := range report.Stats.TopByLikes {
		fmt.Printf("Top %d:     %s (%d likes)\n", i+1, a.Title, a.Likes)
	}
}
