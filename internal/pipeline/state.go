// Package pipeline orchestrates one CV optimization run: gate validation,
// credential resolution, renderer probing, prompt assembly, the model call,
// artifact persistence, and rendering.
package pipeline

import "github.com/jonathan/cv-tailor/internal/session"

// State is the observable position of a session in the tailoring flow.
type State string

const (
	StateInit             State = "init"
	StateCVUploaded       State = "cv_uploaded"
	StateJDAdded          State = "jd_added"
	StateTemplateSelected State = "template_selected"
	StateReady            State = "ready"
	StateOptimizing       State = "optimizing"
	StateRendering        State = "rendering"
	StateComplete         State = "complete"
	StateError            State = "error"
)

// CurrentState derives the resting state from a session snapshot. It is
// recomputed from the gates on every call, so a gate flipping false drops
// the session back out of readiness without an explicit transition event.
func CurrentState(v session.View) State {
	switch {
	case !v.FileUploaded:
		return StateInit
	case !v.JobDescriptionAdded:
		return StateCVUploaded
	case !v.TemplateSelected:
		return StateJDAdded
	case v.OptimizationComplete:
		return StateComplete
	default:
		return StateReady
	}
}
