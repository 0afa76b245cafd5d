package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	toolName = "rendercv"

	// RenderTimeout bounds one rendercv invocation. Rendering runs a full
	// typesetting pass, so this is generous.
	RenderTimeout = 2 * time.Minute

	// probeTimeout bounds the --version check.
	probeTimeout = 10 * time.Second

	// outputSubdir is where rendercv places its artifacts by default.
	outputSubdir = "rendercv_output"
)

// CheckAvailability probes for the rendercv tool and returns its version
// string. The PATH lookup runs first so a missing binary is distinguished
// from a broken one.
func CheckAvailability(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(toolName); err != nil {
		return "", &ToolMissingError{Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, toolName, "--version").CombinedOutput()
	if err != nil {
		return "", &RenderError{
			Message: "rendercv found but not working properly",
			Output:  string(out),
			Cause:   err,
		}
	}
	return strings.TrimSpace(string(out)), nil
}

// RenderPDF invokes rendercv against a YAML artifact and returns the path
// of the produced PDF. The command runs with the artifact's directory as
// working directory; rendercv resolves its output locations relative to it.
func RenderPDF(ctx context.Context, yamlPath string) (string, error) {
	if _, err := os.Stat(yamlPath); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("YAML file not found: %s", yamlPath), Cause: err}
	}
	if _, err := exec.LookPath(toolName); err != nil {
		return "", &ToolMissingError{Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, RenderTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, toolName, "render", yamlPath)
	cmd.Dir = filepath.Dir(yamlPath)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &RenderError{
			Message: msg,
			Output:  stdout.String() + stderr.String(),
			Cause:   err,
		}
	}

	return locateArtifact(yamlPath)
}

// locateArtifact finds the PDF rendercv produced. The tool's exact output
// naming is not under our control, so this scans its default output
// directory for the newest PDF and then tries known alternative layouts.
func locateArtifact(yamlPath string) (string, error) {
	dir := filepath.Dir(yamlPath)
	outputDir := filepath.Join(dir, outputSubdir)

	if info, err := os.Stat(outputDir); err == nil && info.IsDir() {
		if pdf := newestPDF(outputDir); pdf != "" {
			return pdf, nil
		}
		return "", &PDFNotFoundError{OutputDir: outputDir}
	}

	stem := strings.TrimSuffix(filepath.Base(yamlPath), filepath.Ext(yamlPath))
	for _, alt := range []string{
		filepath.Join(dir, stem+".pdf"),
		filepath.Join(dir, "output", stem+".pdf"),
		filepath.Join(dir, "rendered", stem+".pdf"),
	} {
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}

	return "", &PDFNotFoundError{OutputDir: outputDir}
}

// newestPDF returns the most recently modified PDF in dir, or "" when
// there is none.
func newestPDF(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	return newest
}
