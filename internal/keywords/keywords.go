// Package keywords implements the job-description keyword extraction
// side-channel. Extraction is best-effort: a response the model mangles is
// persisted raw rather than failing the run.
package keywords

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
)

// MinWords is the job-description length below which extraction is not
// attempted. Shorter postings do not carry enough signal to be worth a
// model call.
const MinWords = 50

// ArtifactName is the default output filename, overwritten on each run.
// It is only safe where one extraction owns the output directory; shared
// directories use SessionArtifactName instead.
const ArtifactName = "jd_extracted.json"

// SessionArtifactName returns the per-session artifact filename, keeping
// concurrent sessions in a shared output directory from overwriting each
// other.
func SessionArtifactName(sessionID string) string {
	return fmt.Sprintf("jd_extracted_%s.json", sessionID)
}

//go:embed schema.json
var resultSchema string

// InsufficientError indicates the job description is below the extraction
// threshold.
type InsufficientError struct {
	Words int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("job description too short for keyword extraction: %d words (need %d)", e.Words, MinWords)
}

// Extractor runs keyword extraction against an injected LLM client.
type Extractor struct {
	client    llm.Client
	outputDir string
	filename  string
}

// NewExtractor creates an Extractor writing artifacts to outputDir under
// the default ArtifactName.
func NewExtractor(client llm.Client, outputDir string) *Extractor {
	return &Extractor{client: client, outputDir: outputDir, filename: ArtifactName}
}

// WithFilename overrides the artifact filename for this extractor.
func (e *Extractor) WithFilename(name string) *Extractor {
	e.filename = name
	return e
}

// Extract runs one extraction call and persists the result, returning the
// artifact path. A response that is not valid JSON is persisted as an error
// envelope and still counts as success; only transport-level failures and
// too-short input return an error.
func (e *Extractor) Extract(ctx context.Context, jobDescription string) (string, error) {
	if words := len(strings.Fields(jobDescription)); words < MinWords {
		return "", &InsufficientError{Words: words}
	}

	prompt, err := prompts.AssembleKeywordExtraction(jobDescription)
	if err != nil {
		return "", err
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, prompts.KeywordSystem(), llm.TierLite)
	if err != nil {
		return "", fmt.Errorf("keyword extraction call failed: %w", err)
	}

	return e.persist(raw)
}

// persist writes the extraction result to the output directory. Parseable
// JSON is re-indented and advisory-checked; anything else is wrapped so the
// raw response is never lost.
func (e *Extractor) persist(raw string) (string, error) {
	var parsed any
	payload := []byte(raw)
	if err := json.Unmarshal(payload, &parsed); err != nil {
		envelope := map[string]string{
			"error":        "Failed to parse JSON",
			"raw_response": raw,
		}
		parsed = envelope
	} else {
		checkSchema(payload)
	}

	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode extraction result: %w", err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, e.filename)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write extraction result: %w", err)
	}

	return path, nil
}

// checkSchema validates the parsed result against the embedded schema.
// Violations are logged and otherwise ignored; the schema describes what we
// expect, not what we require.
func checkSchema(doc []byte) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(resultSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		log.Printf("keyword schema check skipped: %v", err)
		return
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			log.Printf("keyword result schema violation: %s", desc)
		}
	}
}

// Extract is a convenience wrapper that builds a Gemini client from an API
// key for one call. The HTTP layer and CLI use an injected Extractor
// instead.
func Extract(ctx context.Context, jobDescription, apiKey, outputDir string) (string, error) {
	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return NewExtractor(client, outputDir).Extract(ctx, jobDescription)
}
