package prompts

import "strings"

// Skeleton file and key names.
const (
	OptimizationFile = "optimization.json"
	KeywordsFile     = "keywords.json"

	optimizeKey        = "optimize-cv"
	optimizeMarkersKey = "optimize-cv-markers"
	keywordsKey        = "extract-keywords"
	keywordsMarkersKey = "extract-keywords-markers"
	systemKey          = "system"
)

// Positional marker tokens recognised by the marker-substitution path.
const (
	MarkerCV             = "[INSERT_CV]"
	MarkerJobDescription = "[INSERT_JOB_DESCRIPTION]"
	MarkerTemplate       = "[INSERT_TEMPLATE]"
	MarkerKeywords       = "[INSERT_JSON_STRING_HERE]"
)

// Inputs carries everything the optimization prompt binds. ExtractedKeywords
// is optional; an empty value is substituted as an empty JSON object so the
// prompt shape stays stable whether or not extraction ran.
type Inputs struct {
	CVText            string
	JobDescription    string
	TemplateStructure string
	ExtractedKeywords string
}

// checkPreconditions enforces the fixed ordering: skeleton availability is
// verified by the caller loading it first; then cv text, job description,
// and template structure, first miss wins.
func (in Inputs) checkPreconditions() error {
	if strings.TrimSpace(in.CVText) == "" {
		return &MissingInputError{Field: "CV text"}
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return &MissingInputError{Field: "job description"}
	}
	if strings.TrimSpace(in.TemplateStructure) == "" {
		return &MissingInputError{Field: "template configuration"}
	}
	return nil
}

func (in Inputs) keywordsOrEmpty() string {
	if strings.TrimSpace(in.ExtractedKeywords) == "" {
		return "{}"
	}
	return in.ExtractedKeywords
}

// AssembleOptimization builds the optimization prompt via named-slot
// substitution. This is the canonical assembly path.
func AssembleOptimization(in Inputs) (string, error) {
	skeleton, err := Get(OptimizationFile, optimizeKey)
	if err != nil {
		return "", err
	}
	if err := in.checkPreconditions(); err != nil {
		return "", err
	}
	return FormatStrict(skeleton, map[string]string{
		"CV":                in.CVText,
		"JobDescription":    in.JobDescription,
		"TemplateStructure": in.TemplateStructure,
		"ExtractedKeywords": in.keywordsOrEmpty(),
	})
}

// AssembleOptimizationMarkers builds the same prompt by replacing literal
// positional markers. The keywords marker may legitimately be absent from a
// skeleton; the three content markers may not.
func AssembleOptimizationMarkers(in Inputs) (string, error) {
	skeleton, err := Get(OptimizationFile, optimizeMarkersKey)
	if err != nil {
		return "", err
	}
	if err := in.checkPreconditions(); err != nil {
		return "", err
	}

	for _, required := range []string{MarkerCV, MarkerJobDescription, MarkerTemplate} {
		if !strings.Contains(skeleton, required) {
			return "", &UnresolvedSlotError{Slot: required}
		}
	}

	result := strings.ReplaceAll(skeleton, MarkerTemplate, in.TemplateStructure)
	result = strings.ReplaceAll(result, MarkerJobDescription, in.JobDescription)
	result = strings.ReplaceAll(result, MarkerCV, in.CVText)
	result = strings.ReplaceAll(result, MarkerKeywords, in.keywordsOrEmpty())
	return result, nil
}

// AssembleKeywordExtraction builds the keyword-extraction prompt for a job
// description.
func AssembleKeywordExtraction(jobDescription string) (string, error) {
	skeleton, err := Get(KeywordsFile, keywordsKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(jobDescription) == "" {
		return "", &MissingInputError{Field: "job description"}
	}
	return FormatStrict(skeleton, map[string]string{
		"JobDescription": jobDescription,
	})
}

// AssembleKeywordExtractionMarkers is the marker-substitution variant of
// AssembleKeywordExtraction.
func AssembleKeywordExtractionMarkers(jobDescription string) (string, error) {
	skeleton, err := Get(KeywordsFile, keywordsMarkersKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(jobDescription) == "" {
		return "", &MissingInputError{Field: "job description"}
	}
	if !strings.Contains(skeleton, MarkerJobDescription) {
		return "", &UnresolvedSlotError{Slot: MarkerJobDescription}
	}
	return strings.ReplaceAll(skeleton, MarkerJobDescription, jobDescription), nil
}

// OptimizationSystem returns the system instruction for CV optimization
// calls. The instruction pins the response format to RenderCV YAML starting
// with the cv: document marker.
func OptimizationSystem() string {
	return MustGet(OptimizationFile, systemKey)
}

// KeywordSystem returns the system instruction for keyword extraction calls.
func KeywordSystem() string {
	return MustGet(KeywordsFile, systemKey)
}
