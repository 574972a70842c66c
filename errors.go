package azchat

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// CodeParseError reports a document that is not well-formed JSON (or
	// YAML, for the strict YAML source). The whole decode fails.
	CodeParseError = "parse_error"
	// CodeRequired reports an absent required field; Path names it.
	CodeRequired = "required"
	// CodeDuplicateKey reports a second occurrence of a key within the
	// same object.
	CodeDuplicateKey = "duplicate_key"
	// CodeInvalidType reports a value whose JSON kind does not match the
	// field's expected kind. Hint carries the expected kind.
	CodeInvalidType = "invalid_type"
	// CodeInvalidEnum reports a string outside a closed literal set
	// (finish_reason, severity, service_tier, role).
	CodeInvalidEnum = "invalid_enum"
	// CodeCardinalityMismatch reports parallel collections of unequal
	// length. Params carries "base_len" and "extension_len".
	CodeCardinalityMismatch = "cardinality_mismatch"
	// CodeUnsupportedShape reports a filtering outcome matching neither
	// the severity-report shape nor the {code,message} error shape.
	CodeUnsupportedShape = "unsupported_shape"
	// CodeUnknownKey reports an unrecognized key under UnknownStrict.
	CodeUnknownKey = "unknown_key"
	// CodeTruncated reports input exceeding MaxBytes.
	CodeTruncated = "truncated"
)

// Issue represents a single decode problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /choices/2/index).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected kind, variant names, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"base_len":2,
	// "extension_len":1}) so callers can diagnose schema drift without
	// the original document.
	Params map[string]any
}

// Issues is a collection of decode errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether any issue carried by err has the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}
