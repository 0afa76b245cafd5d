package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/extraction"
	"github.com/jonathan/cv-tailor/internal/fetch"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/observability"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/session"
	"github.com/jonathan/cv-tailor/internal/templates"
)

var (
	optConfigPath string
	optCVPath     string
	optJobPath    string
	optJobURL     string
	optTemplate   string
	optOutputDir  string
	optAPIKey     string
	optMaxTokens  int32
	optUseBrowser bool
	optVerbose    bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Tailor a CV against a job description end-to-end",
	Long: `Runs the full tailoring flow in one shot: extract the CV text, validate the job description, load the template, optimize with Gemini, and render the PDF with rendercv.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	optimizeCmd.Flags().StringVar(&optCVPath, "cv", "", "Path to the CV file (.pdf, .docx, or .doc)")
	optimizeCmd.Flags().StringVarP(&optJobPath, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	optimizeCmd.Flags().StringVar(&optJobURL, "job-url", "", "URL to fetch the job description from (mutually exclusive with --job)")
	optimizeCmd.Flags().StringVarP(&optTemplate, "template", "t", string(templates.DefaultName), "Template name (professional, modern, executive, creative)")
	optimizeCmd.Flags().StringVarP(&optOutputDir, "output-dir", "o", "output", "Directory for generated artifacts")
	optimizeCmd.Flags().StringVar(&optAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	optimizeCmd.Flags().Int32Var(&optMaxTokens, "max-tokens", 0, "Maximum response tokens (0 uses the default)")
	optimizeCmd.Flags().BoolVar(&optUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	optimizeCmd.Flags().BoolVarP(&optVerbose, "verbose", "v", false, "Print detailed progress information")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(optConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") || cfg.OutputDir == "" {
		cfg.OutputDir = optOutputDir
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = optAPIKey
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.MaxTokens = optMaxTokens
	}

	if optCVPath == "" {
		return fmt.Errorf("--cv is required")
	}
	if optJobPath == "" && optJobURL == "" {
		return fmt.Errorf("either --job or --job-url is required")
	}
	if optJobPath != "" && optJobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive")
	}

	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		return fmt.Errorf("no API key configured; set GEMINI_API_KEY or pass --api-key")
	}

	rec := session.NewRecord()

	// CV input.
	cvText, err := extractCVFile(optCVPath)
	if err != nil {
		return err
	}
	rec.SetCV(filepath.Base(optCVPath), cvText)

	// Job description input.
	jd, err := loadJobDescription(ctx, optJobPath, optJobURL, optUseBrowser)
	if err != nil {
		return err
	}
	if status := rec.SetJobDescription(jd); status != session.JDSufficient {
		return fmt.Errorf("job description too short: %d words, need at least %d", rec.WordCount, session.SufficientWords)
	}

	// Template.
	name := templates.Name(optTemplate)
	if !templates.Valid(name) {
		return fmt.Errorf("unknown template %q (valid: professional, modern, executive, creative)", optTemplate)
	}
	if err := rec.SelectTemplate(name); err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if optVerbose {
		printer.PrintSessionSummary(rec)
	}

	client, err := llm.NewClient(ctx, modelConfig(cfg), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	// Keyword side channel: best effort, the run proceeds without it.
	extractor := keywords.NewExtractor(client, cfg.OutputDir)
	if path, err := extractor.Extract(ctx, jd); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: keyword extraction failed: %v\n", err)
	} else {
		rec.SetKeywordsArtifact(path)
		if optVerbose {
			if payload, err := os.ReadFile(path); err == nil {
				printer.PrintKeywords(payload)
			}
		}
	}

	opts := pipeline.RunOptions{
		Client:    client,
		OutputDir: cfg.OutputDir,
		MaxTokens: cfg.MaxTokens,
	}
	if optVerbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			fmt.Printf("[%s] %s\n", event.Stage, event.Message)
		}
	}

	result, err := pipeline.Run(ctx, rec, opts)
	if err != nil {
		return err
	}

	if optVerbose {
		printer.PrintRunResult(result)
		return nil
	}

	fmt.Printf("Optimized CV written to %s\n", result.ArtifactPath)
	if result.PDFPath != "" {
		fmt.Printf("Rendered PDF written to %s\n", result.PDFPath)
	} else if result.Message != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", result.Message)
	}
	return nil
}

// extractCVFile reads and extracts text from a CV file on disk, inferring
// the MIME type from the extension.
func extractCVFile(path string) (string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read CV file: %w", err)
	}

	var declaredType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		declaredType = extraction.MIMEPDF
	case ".docx":
		declaredType = extraction.MIMEDocx
	case ".doc":
		declaredType = extraction.MIMEDoc
	default:
		return "", fmt.Errorf("unsupported CV file type %q: use .pdf, .docx, or .doc", filepath.Ext(path))
	}

	if err := extraction.ValidateUpload(filepath.Base(path), declaredType, int64(len(payload))); err != nil {
		return "", err
	}
	return extraction.Extract(filepath.Base(path), declaredType, payload)
}

// loadJobDescription reads the job description from a file or fetches and
// extracts it from a URL.
func loadJobDescription(ctx context.Context, path, url string, useBrowser bool) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read job description file: %w", err)
		}
		return string(data), nil
	}

	var html string
	if useBrowser {
		rendered, err := fetch.WithBrowser(ctx, url, fetch.DefaultTimeout)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		html = rendered
	} else {
		result, err := fetch.URL(ctx, url, nil)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		html = result.HTML
	}

	text, err := fetch.ExtractMainText(html, fetch.JobPostingSelectors())
	if err != nil {
		return "", err
	}
	// SPA pages come back nearly empty from a plain fetch; retry rendered.
	if !useBrowser && fetch.ShouldUseBrowser(text) {
		if rendered, err := fetch.WithBrowser(ctx, url, fetch.DefaultTimeout); err == nil {
			if browserText, err := fetch.ExtractMainText(rendered, fetch.JobPostingSelectors()); err == nil {
				text = browserText
			}
		}
	}
	if text == "" {
		return "", fmt.Errorf("no job description text found at %s", url)
	}
	return text, nil
}
