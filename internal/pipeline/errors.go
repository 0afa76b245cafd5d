package pipeline

import "fmt"

// Stage identifiers carried by StageError and progress events.
const (
	StageGates      = "gates"
	StageCredential = "credential"
	StageProbe      = "renderer_probe"
	StagePrompt     = "prompt_assembly"
	StageOptimize   = "optimization"
	StagePersist    = "persistence"
	StageRender     = "rendering"
)

// StageError names the stage that short-circuited a run. The session
// record's gates are never touched by a stage failure; the user corrects
// the failing input and re-triggers.
type StageError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("pipeline failed at %s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
