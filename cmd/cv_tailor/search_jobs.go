package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/jobs"
	"github.com/jonathan/cv-tailor/internal/observability"
)

var (
	searchRoles      []string
	searchLocations  []string
	searchRemoteOnly bool
	searchInclude    []string
	searchExclude    []string
	searchMaxResults int
	searchJSON       bool
	searchVerbose    bool
)

var searchJobsCmd = &cobra.Command{
	Use:   "search-jobs",
	Short: "Search job boards for matching listings",
	Long:  `Searches the supported job boards in parallel, filters by keywords, and prints listings ranked by match score.`,
	RunE:  runSearchJobs,
}

func init() {
	searchJobsCmd.Flags().StringSliceVarP(&searchRoles, "role", "r", nil, "Target role (repeatable)")
	searchJobsCmd.Flags().StringSliceVarP(&searchLocations, "location", "l", nil, "Location (repeatable)")
	searchJobsCmd.Flags().BoolVar(&searchRemoteOnly, "remote-only", false, "Only remote positions")
	searchJobsCmd.Flags().StringSliceVar(&searchInclude, "include", nil, "Keyword a listing must contain (repeatable)")
	searchJobsCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Keyword that disqualifies a listing (repeatable)")
	searchJobsCmd.Flags().IntVar(&searchMaxResults, "max-results", 20, "Maximum listings to return")
	searchJobsCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
	searchJobsCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print a formatted result summary")
	rootCmd.AddCommand(searchJobsCmd)
}

func runSearchJobs(_ *cobra.Command, _ []string) error {
	if len(searchRoles) == 0 {
		return fmt.Errorf("at least one --role is required")
	}

	prefs := jobs.Preferences{
		TargetRoles:     searchRoles,
		Locations:       searchLocations,
		RemoteOnly:      searchRemoteOnly,
		IncludeKeywords: searchInclude,
		ExcludeKeywords: searchExclude,
	}

	// No cover letters are generated during search, so no model client.
	engine := jobs.NewEngine(nil)
	listings, err := engine.Search(context.Background(), prefs, searchMaxResults)
	if err != nil {
		return fmt.Errorf("job search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	if len(listings) == 0 {
		fmt.Println("No matching listings found")
		return nil
	}
	if searchVerbose {
		observability.NewPrinter(os.Stdout).PrintListings(listings)
		return nil
	}
	for i, l := range listings {
		fmt.Printf("%2d. [%.2f] %s at %s (%s)\n", i+1, l.MatchScore, l.Title, l.Company, l.Location)
		if l.Salary != "" {
			fmt.Printf("    Salary: %s\n", l.Salary)
		}
		fmt.Printf("    %s\n", l.URL)
	}
	return nil
}
