package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/rendering"
	"github.com/jonathan/cv-tailor/internal/session"
)

// ProgressEvent represents a progress update during an optimization run.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	State   State  `json:"state"`
	Message string `json:"message"`
}

// ProgressCallback is called as the run moves between stages.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for one optimization run.
type RunOptions struct {
	// APIKey is the Gemini credential. Ignored when Client is set.
	APIKey string
	// Client overrides the key-built client; tests inject fakes here.
	Client llm.Client
	// OutputDir receives the YAML artifact and the renderer's output.
	OutputDir string
	// MaxTokens caps the optimization response; zero means the default.
	MaxTokens int32
	// Probe and Render override the rendercv wrappers; nil means the real
	// tool.
	Probe  func(ctx context.Context) (string, error)
	Render func(ctx context.Context, yamlPath string) (string, error)

	OnProgress ProgressCallback
}

// RunResult describes a completed run, including degraded-success detail
// when the renderer was unavailable or failed.
type RunResult struct {
	State             State
	ArtifactPath      string
	PDFPath           string
	RendererAvailable bool
	Message           string
}

func emitProgress(opts *RunOptions, stage string, state State, message string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Stage: stage, State: state, Message: message})
	}
}

// Run executes one optimization run for a ready session. Every entry
// re-runs all stages from scratch; nothing is cached between attempts. A
// stage failure returns a *StageError, leaves OptimizationComplete false,
// and does not touch the gates.
func Run(ctx context.Context, rec *session.Record, opts RunOptions) (*RunResult, error) {
	// All stage inputs come from one snapshot; the live record is only
	// touched through its setters so concurrent readers stay safe.
	view := rec.View()

	// Stage 1: re-validate the gates. A gate could have flipped false
	// between the readiness check and the trigger.
	emitProgress(&opts, StageGates, StateOptimizing, "Validating inputs")
	if err := checkGates(view); err != nil {
		return nil, err
	}

	// Stage 2: resolve the credential. Missing key is a configuration
	// error, reported distinctly from call failures.
	client := opts.Client
	if client == nil {
		if opts.APIKey == "" {
			return nil, &StageError{
				Stage:   StageCredential,
				Message: "no API key configured; set GEMINI_API_KEY",
			}
		}
		real, err := llm.NewClient(ctx, nil, opts.APIKey)
		if err != nil {
			return nil, &StageError{Stage: StageCredential, Cause: err}
		}
		defer real.Close()
		client = real
	}

	// Stage 3: probe the renderer. Unavailable is non-fatal; the run
	// degrades to a YAML-only outcome.
	probe := opts.Probe
	if probe == nil {
		probe = rendering.CheckAvailability
	}
	rendererAvailable := true
	var degradedMsg string
	if _, err := probe(ctx); err != nil {
		rendererAvailable = false
		degradedMsg = fmt.Sprintf("PDF generation unavailable: %v", err)
		rec.AddProcessingError(degradedMsg)
		emitProgress(&opts, StageProbe, StateOptimizing, degradedMsg)
	}

	// Stage 4: assemble the prompt.
	emitProgress(&opts, StagePrompt, StateOptimizing, "Assembling prompt")
	prompt, err := assemblePrompt(view, opts.OutputDir)
	if err != nil {
		return nil, &StageError{Stage: StagePrompt, Cause: err}
	}

	// Stage 5: the model call.
	emitProgress(&opts, StageOptimize, StateOptimizing, "Optimizing CV")
	optimized, err := client.Optimize(ctx, prompt, opts.MaxTokens)
	if err != nil {
		return nil, &StageError{Stage: StageOptimize, Cause: err}
	}
	artifact, err := persistArtifact(opts.OutputDir, string(view.SelectedTemplate), optimized)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, Cause: err}
	}
	rec.SetOptimized(optimized, artifact)

	result := &RunResult{
		ArtifactPath:      artifact,
		RendererAvailable: rendererAvailable,
		Message:           degradedMsg,
	}

	// Rendering: best effort. A failure here degrades the outcome, it
	// does not fail the run.
	if rendererAvailable {
		emitProgress(&opts, StageRender, StateRendering, "Rendering PDF")
		render := opts.Render
		if render == nil {
			render = rendering.RenderPDF
		}
		pdf, err := render(ctx, artifact)
		if err != nil {
			result.Message = fmt.Sprintf("PDF generation failed, YAML artifact is still available: %v", err)
			rec.AddProcessingError(result.Message)
		} else {
			result.PDFPath = pdf
			rec.SetRenderedPDF(pdf)
		}
	}

	rec.MarkOptimized()
	result.State = StateComplete
	emitProgress(&opts, StageRender, StateComplete, "Optimization complete")
	return result, nil
}

// checkGates reports the first unmet gate in pipeline order.
func checkGates(v session.View) error {
	switch {
	case !v.FileUploaded:
		return &StageError{Stage: StageGates, Message: "no CV uploaded"}
	case !v.JobDescriptionAdded:
		return &StageError{Stage: StageGates, Message: "no sufficient job description provided"}
	case !v.TemplateSelected:
		return &StageError{Stage: StageGates, Message: "no template selected"}
	}
	return nil
}

// assemblePrompt binds the session inputs into the optimization prompt.
// The keyword side-channel's artifact is picked up opportunistically when
// it exists; its absence is not an error. The session's own artifact path
// wins; the fixed default name is the single-session fallback.
func assemblePrompt(v session.View, outputDir string) (string, error) {
	if v.TemplateConfig == nil {
		return "", &prompts.MissingInputError{Field: "template configuration"}
	}
	structure, err := v.TemplateConfig.Structure()
	if err != nil {
		return "", err
	}

	in := prompts.Inputs{
		CVText:            v.CVText,
		JobDescription:    v.JobDescription,
		TemplateStructure: structure,
	}
	keywordsPath := v.KeywordsArtifact
	if keywordsPath == "" {
		keywordsPath = filepath.Join(outputDir, keywords.ArtifactName)
	}
	if data, err := os.ReadFile(keywordsPath); err == nil {
		in.ExtractedKeywords = string(data)
	}

	return prompts.AssembleOptimization(in)
}

// persistArtifact writes the raw model output to the output directory. The
// uuid suffix keeps concurrent sessions completing within the same second
// from colliding.
func persistArtifact(outputDir, template, content string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	suffix := strings.Split(uuid.New().String(), "-")[0]
	name := fmt.Sprintf("optimized_cv_%s_%s_%s.yaml", template, timestamp, suffix)

	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}
