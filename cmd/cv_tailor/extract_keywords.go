package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/keywords"
)

var (
	kwJobPath    string
	kwJobURL     string
	kwOutputDir  string
	kwAPIKey     string
	kwUseBrowser bool
)

var extractKeywordsCmd = &cobra.Command{
	Use:   "extract-keywords",
	Short: "Extract structured keywords from a job description",
	Long:  `Extracts technical skills, soft skills, qualifications, responsibilities, and company values from a job description into a JSON artifact.`,
	RunE:  runExtractKeywords,
}

func init() {
	extractKeywordsCmd.Flags().StringVarP(&kwJobPath, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	extractKeywordsCmd.Flags().StringVar(&kwJobURL, "job-url", "", "URL to fetch the job description from (mutually exclusive with --job)")
	extractKeywordsCmd.Flags().StringVarP(&kwOutputDir, "output-dir", "o", "output", "Directory for the keyword artifact")
	extractKeywordsCmd.Flags().StringVar(&kwAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	extractKeywordsCmd.Flags().BoolVar(&kwUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	rootCmd.AddCommand(extractKeywordsCmd)
}

func runExtractKeywords(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if kwJobPath == "" && kwJobURL == "" {
		return fmt.Errorf("either --job or --job-url is required")
	}
	if kwJobPath != "" && kwJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive")
	}

	apiKey := kwAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key configured; set GEMINI_API_KEY or pass --api-key")
	}

	jd, err := loadJobDescription(ctx, kwJobPath, kwJobURL, kwUseBrowser)
	if err != nil {
		return err
	}

	path, err := keywords.Extract(ctx, jd, apiKey, kwOutputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted keywords written to %s\n", filepath.Clean(path))
	return nil
}
