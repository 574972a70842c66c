package azchat

// Content-filtering extension types. The wire carries no discriminator
// for the outcome union: a filtering result is either a structured
// category report or, when the filtering backend itself failed, a bare
// {code, message} object. The two are told apart by shape alone.

// Severity is the closed severity scale of a category report.
type Severity string

const (
	SeveritySafe   Severity = "safe"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func knownSeverity(s string) bool {
	switch Severity(s) {
	case SeveritySafe, SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// SeverityResult reports whether a category filtered the content and at
// what severity.
type SeverityResult struct {
	Filtered bool
	Severity *Severity
}

// DetectedResult reports a binary detection category.
type DetectedResult struct {
	Filtered bool
	Detected bool
}

// Citation points at licensed material detected in generated code.
type Citation struct {
	URL     string
	License string
}

// CitedDetection is a detection category that may carry a citation.
type CitedDetection struct {
	Filtered bool
	Detected bool
	Citation *Citation
}

// ChoiceFilterResults is the per-choice category report.
type ChoiceFilterResults struct {
	Sexual                *SeverityResult
	Violence              *SeverityResult
	Hate                  *SeverityResult
	SelfHarm              *SeverityResult
	Profanity             *DetectedResult
	ProtectedMaterialText *DetectedResult
	ProtectedMaterialCode *CitedDetection
}

// PromptFilterResults is the category report for one input prompt. It
// shares the base categories and adds prompt-only detections.
type PromptFilterResults struct {
	Sexual    *SeverityResult
	Violence  *SeverityResult
	Hate      *SeverityResult
	SelfHarm  *SeverityResult
	Profanity *DetectedResult
	Jailbreak *DetectedResult
}

// FilterError is the failure report of the filtering backend.
type FilterError struct {
	Code    string
	Message string
}

// ChoiceFilterOutcome is the filtering outcome for one choice: exactly
// one of Results or Err is set.
type ChoiceFilterOutcome struct {
	Results *ChoiceFilterResults
	Err     *FilterError
}

// PromptFilterOutcome is the filtering outcome for one prompt: exactly
// one of Results or Err is set.
type PromptFilterOutcome struct {
	Results *PromptFilterResults
	Err     *FilterError
}

// PromptFilterResult ties a filtering outcome to one input prompt. Its
// cardinality follows the number of prompts, not the number of choices.
type PromptFilterResult struct {
	PromptIndex          int64
	ContentFilterResults PromptFilterOutcome
}

// Category key sets used for structural resolution of the outcome
// union. The success shape is tried first; an object carrying none of
// the category keys but a code/message pair is the error shape;
// anything else is unsupported.
var choiceFilterCategories = map[string]struct{}{
	"sexual":                  {},
	"violence":                {},
	"hate":                    {},
	"self_harm":               {},
	"profanity":               {},
	"protected_material_text": {},
	"protected_material_code": {},
}

var promptFilterCategories = map[string]struct{}{
	"sexual":    {},
	"violence":  {},
	"hate":      {},
	"self_harm": {},
	"profanity": {},
	"jailbreak": {},
}
