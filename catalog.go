package azchat

// Field catalog: the fixed classification of recognized field names at
// each structural position. Static immutable tables, no state, no I/O.
// Unknown names are tolerated (forward compatibility with upstream
// schema additions); what happens to them is the caller's UnknownPolicy.

// FieldClass is the decode target of a recognized field.
type FieldClass int

const (
	// FieldUnknown is any name outside the catalog.
	FieldUnknown FieldClass = iota
	// FieldBaseOnly belongs to the canonical base schema.
	FieldBaseOnly
	// FieldExtensionOnly exists only under the augmented schema.
	FieldExtensionOnly
)

// Scope is the structural position a field name was seen at.
type Scope int

const (
	// ScopeTop is the top-level response object.
	ScopeTop Scope = iota
	// ScopeChoice is an element of the choices array.
	ScopeChoice
)

var topFields = map[string]FieldClass{
	"id":                    FieldBaseOnly,
	"choices":               FieldBaseOnly,
	"created":               FieldBaseOnly,
	"model":                 FieldBaseOnly,
	"service_tier":          FieldBaseOnly,
	"system_fingerprint":    FieldBaseOnly,
	"object":                FieldBaseOnly,
	"usage":                 FieldBaseOnly,
	"prompt_filter_results": FieldExtensionOnly,
}

var choiceFields = map[string]FieldClass{
	"index":                  FieldBaseOnly,
	"message":                FieldBaseOnly,
	"finish_reason":          FieldBaseOnly,
	"logprobs":               FieldBaseOnly,
	"content_filter_results": FieldExtensionOnly,
}

// requiredTopFields are checked after the walk; absence fails the
// decode. The required choice fields (index, message) are checked by
// the choice accumulator as it finishes each element.
var requiredTopFields = []string{"id", "choices", "created", "model", "object"}

// ClassifyField classifies a field name seen at the given scope.
func ClassifyField(scope Scope, name string) FieldClass {
	switch scope {
	case ScopeChoice:
		return choiceFields[name]
	default:
		return topFields[name]
	}
}
