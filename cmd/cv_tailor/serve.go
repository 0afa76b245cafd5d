package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/server"
)

var (
	serveAddr       string
	serveOutputDir  string
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for the tailoring sessions and job automation.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveOutputDir, "output-dir", "", "Directory for generated artifacts (default output)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = serveOutputDir
	}

	// The server runs without a model client when no key is configured;
	// optimization triggers then fail with the credential error while
	// everything else keeps working.
	var client llm.Client
	if apiKey := cfg.ResolveAPIKey(); apiKey != "" {
		gemini, err := llm.NewClient(context.Background(), modelConfig(cfg), apiKey)
		if err != nil {
			return fmt.Errorf("failed to create model client: %w", err)
		}
		client = gemini
	} else {
		log.Println("GEMINI_API_KEY not set; optimization endpoints will be unavailable")
	}

	srv, err := server.New(cfg, client)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// modelConfig maps the configured model override onto the tier config.
// The override targets the optimization tier; the cheap structured tiers
// keep their defaults.
func modelConfig(cfg config.Config) *llm.Config {
	mc := llm.DefaultConfig()
	if cfg.Model != "" {
		mc = mc.WithModel(llm.TierAdvanced, cfg.Model)
	}
	return mc
}

// loadMergedConfig loads the optional config file and fills in package
// defaults.
func loadMergedConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg.MergeWithDefaults(config.Config{
		Addr:      config.DefaultAddr,
		OutputDir: config.DefaultOutputDir,
	}), nil
}
