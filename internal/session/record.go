// Package session holds the per-visit session record and its store. A
// record is shared between handler goroutines and a background
// optimization run, so reads take a View snapshot and writes go through
// the record's methods; the embedded lock covers both.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/templates"
)

// Job-description word-count bands. Only Sufficient arms the gate; the
// lower bands drive UI status text.
const (
	UsableWords     = 20
	SufficientWords = 50
)

// JDStatus describes how complete the pasted job description is.
type JDStatus string

const (
	JDNeedsMore  JDStatus = "needs_more"
	JDUsable     JDStatus = "usable"
	JDSufficient JDStatus = "sufficient"
)

// Record is the mutable state of one tailoring session. The three gate
// booleans each reflect a current, successfully validated input; they are
// never set optimistically. Direct field access is only safe before the
// record is shared; after that, use the methods and View.
type Record struct {
	mu sync.RWMutex

	ID uuid.UUID

	FileUploaded        bool
	JobDescriptionAdded bool
	TemplateSelected    bool

	SelectedTemplate templates.Name
	CVFilename       string
	CVText           string
	JobDescription   string
	WordCount        int
	TemplateConfig   *templates.Config

	OptimizedCV          string
	OptimizedArtifact    string
	RenderedPDF          string
	KeywordsArtifact     string
	OptimizationComplete bool

	ProcessingErrors []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// View is a consistent point-in-time copy of a record's state, safe to
// read without holding the record's lock.
type View struct {
	ID uuid.UUID

	FileUploaded        bool
	JobDescriptionAdded bool
	TemplateSelected    bool

	SelectedTemplate templates.Name
	CVFilename       string
	CVText           string
	JobDescription   string
	WordCount        int
	TemplateConfig   *templates.Config

	OptimizedCV          string
	OptimizedArtifact    string
	RenderedPDF          string
	KeywordsArtifact     string
	OptimizationComplete bool

	ProcessingErrors []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord creates a fresh session with the default template selection.
// The default is a display preference, not a selection: the gate stays
// false until a template is explicitly loaded.
func NewRecord() *Record {
	now := time.Now()
	return &Record{
		ID:               uuid.New(),
		SelectedTemplate: templates.DefaultName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// View snapshots the record under the read lock. The processing-error
// slice is copied so the snapshot stays stable while the record moves on.
func (r *Record) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := View{
		ID:                   r.ID,
		FileUploaded:         r.FileUploaded,
		JobDescriptionAdded:  r.JobDescriptionAdded,
		TemplateSelected:     r.TemplateSelected,
		SelectedTemplate:     r.SelectedTemplate,
		CVFilename:           r.CVFilename,
		CVText:               r.CVText,
		JobDescription:       r.JobDescription,
		WordCount:            r.WordCount,
		TemplateConfig:       r.TemplateConfig,
		OptimizedCV:          r.OptimizedCV,
		OptimizedArtifact:    r.OptimizedArtifact,
		RenderedPDF:          r.RenderedPDF,
		KeywordsArtifact:     r.KeywordsArtifact,
		OptimizationComplete: r.OptimizationComplete,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if len(r.ProcessingErrors) > 0 {
		v.ProcessingErrors = append([]string(nil), r.ProcessingErrors...)
	}
	return v
}

// Ready is the level-triggered readiness check on a snapshot: the
// conjunction of the three gates.
func (v View) Ready() bool {
	return v.FileUploaded && v.JobDescriptionAdded && v.TemplateSelected
}

// JobDescriptionStatus maps the snapshot's word count onto the UI band.
func (v View) JobDescriptionStatus() JDStatus {
	return statusForWords(v.WordCount)
}

// touch must be called with the write lock held.
func (r *Record) touch() {
	r.UpdatedAt = time.Now()
}

// SetCV records extracted CV text. Blank text clears the upload gate; the
// extractor never produces blank text on success, so this doubles as the
// clear path.
func (r *Record) SetCV(filename, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.touch()
	if strings.TrimSpace(text) == "" {
		r.clearCVLocked()
		return
	}
	r.CVFilename = filename
	r.CVText = text
	r.FileUploaded = true
}

// ClearCV removes the uploaded CV and resets its gate.
func (r *Record) ClearCV() {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.touch()
	r.clearCVLocked()
}

func (r *Record) clearCVLocked() {
	r.CVFilename = ""
	r.CVText = ""
	r.FileUploaded = false
}

// SetJobDescription replaces the pasted text and re-derives the gate from
// the current word count. Clearing the field or dropping below the
// sufficient band resets the gate even if it was previously armed.
func (r *Record) SetJobDescription(text string) JDStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.touch()
	r.JobDescription = text
	r.WordCount = len(strings.Fields(text))
	r.JobDescriptionAdded = r.WordCount >= SufficientWords
	return statusForWords(r.WordCount)
}

// JobDescriptionStatus maps the current word count onto the UI band.
func (r *Record) JobDescriptionStatus() JDStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return statusForWords(r.WordCount)
}

func statusForWords(count int) JDStatus {
	switch {
	case count >= SufficientWords:
		return JDSufficient
	case count >= UsableWords:
		return JDUsable
	default:
		return JDNeedsMore
	}
}

// SelectTemplate loads the named template configuration and replaces the
// previous one wholesale. An unknown name fails the load; the previous
// selection, config, and gate truth are all left untouched.
func (r *Record) SelectTemplate(name templates.Name) error {
	cfg, err := templates.Load(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SelectedTemplate = cfg.Name
	r.TemplateConfig = cfg
	r.TemplateSelected = true
	r.touch()
	return nil
}

// Ready is the level-triggered readiness check: the conjunction of the
// three gates, recomputed on every call.
func (r *Record) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.FileUploaded && r.JobDescriptionAdded && r.TemplateSelected
}

// SetOptimized records a successful optimization output and its persisted
// artifact path.
func (r *Record) SetOptimized(cv, artifactPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OptimizedCV = cv
	r.OptimizedArtifact = artifactPath
	r.touch()
}

// SetRenderedPDF records the rendered PDF path.
func (r *Record) SetRenderedPDF(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RenderedPDF = path
	r.touch()
}

// SetKeywordsArtifact records the path of the keyword-extraction artifact
// for this session.
func (r *Record) SetKeywordsArtifact(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.KeywordsArtifact = path
	r.touch()
}

// MarkOptimized flips the completion flag once a run has finished.
func (r *Record) MarkOptimized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OptimizationComplete = true
	r.touch()
}

// LastUpdated returns the record's last-touched time.
func (r *Record) LastUpdated() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.UpdatedAt
}

// AddProcessingError appends a non-fatal message. The list is append-only;
// it is cleared only by Reset.
func (r *Record) AddProcessingError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ProcessingErrors = append(r.ProcessingErrors, msg)
	r.touch()
}

// Reset returns the record to its initial state, keeping only its identity.
func (r *Record) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FileUploaded = false
	r.JobDescriptionAdded = false
	r.TemplateSelected = false
	r.SelectedTemplate = templates.DefaultName
	r.CVFilename = ""
	r.CVText = ""
	r.JobDescription = ""
	r.WordCount = 0
	r.TemplateConfig = nil
	r.OptimizedCV = ""
	r.OptimizedArtifact = ""
	r.RenderedPDF = ""
	r.KeywordsArtifact = ""
	r.OptimizationComplete = false
	r.ProcessingErrors = nil
	r.UpdatedAt = time.Now()
}
