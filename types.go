package azchat

// UnknownPolicy controls how unrecognized keys are handled.
//
// The wire format this package decodes is extended by some deployments
// and the upstream API adds fields over time, so the default is to
// tolerate unknown keys rather than reject them. Whether they should be
// dropped or preserved for lossless round-tripping is a deliberate,
// caller-visible choice; it is not baked in.
type UnknownPolicy int

const (
	// UnknownStrip drops unknown keys (default; matches the upstream
	// decoder's observed behavior).
	UnknownStrip UnknownPolicy = iota
	// UnknownPassthrough preserves unknown keys in order so Encode can
	// reproduce them.
	UnknownPassthrough
	// UnknownStrict rejects unknown keys with an unknown_key issue.
	UnknownStrict
)

// Strategy selects the decoding implementation. Both strategies honor
// the same contract; the difference is internal.
type Strategy int

const (
	// StrategyValue parses the document into an order-preserving generic
	// tree once, then routes every key through the field catalog.
	StrategyValue Strategy = iota
	// StrategyStream performs one field-by-field pass without
	// materializing a full tree, rejecting duplicate keys as seen.
	StrategyStream
)

// DecodeOpt bundles decoding options. The zero value is a sensible
// default: value strategy, unknown keys stripped, no size limits.
type DecodeOpt struct {
	Strategy Strategy
	Unknown  UnknownPolicy
	// MaxDepth limits container nesting; 0 means unlimited.
	MaxDepth int
	// MaxBytes limits consumed input; 0 means unlimited.
	MaxBytes int64
	// FailFast stops at the first issue instead of collecting all.
	FailFast bool
}

// EncodeMode exposes canonical vs preserving output intent at call sites.
type EncodeMode int

const (
	// EncodeCanonical omits absent and null optional fields.
	EncodeCanonical EncodeMode = iota
	// EncodePreserve re-emits explicit nulls recorded in presence
	// metadata. Requires a Decoded value; see EncodeWithDecoded.
	EncodePreserve
)
