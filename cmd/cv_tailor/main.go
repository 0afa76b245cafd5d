// Package main provides the entry point for the CV Tailor CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_tailor",
	Short: "AI-powered CV tailoring",
	Long:  "CV Tailor rewrites an uploaded CV against a job description using Gemini and renders the result to PDF with rendercv, via CLI or REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
