package azchat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"

	eng "github.com/reoring/azchat/internal/engine"
	"github.com/reoring/azchat/i18n"
)

// Decode parses one document from src into a merged ChatCompletion.
// The source must carry a complete, already-buffered document; decoding
// either completes or fails synchronously and performs no I/O of its
// own beyond consuming src.
func Decode(ctx context.Context, src Source, opts ...DecodeOpt) (ChatCompletion, error) {
	dm, err := DecodeWithMeta(ctx, src, opts...)
	return dm.Value, err
}

// DecodeBytes decodes a raw JSON document.
func DecodeBytes(ctx context.Context, data []byte, opts ...DecodeOpt) (ChatCompletion, error) {
	return Decode(ctx, JSONBytes(data), opts...)
}

// DecodeReader decodes a JSON document from r. The reader is consumed
// up to the end of the first complete document.
func DecodeReader(ctx context.Context, r io.Reader, opts ...DecodeOpt) (ChatCompletion, error) {
	return Decode(ctx, JSONReader(r), opts...)
}

// DecodeWithMeta decodes like Decode and additionally returns presence
// metadata, which distinguishes explicit null from absence for optional
// fields (e.g. /system_fingerprint).
func DecodeWithMeta(ctx context.Context, src Source, opts ...DecodeOpt) (Decoded[ChatCompletion], error) {
	opt := pickOpt(opts)
	if opt.Strategy == StrategyStream {
		return decodeStreamWithMeta(ctx, src, opt)
	}
	es := eng.WrapWithEnforcement(EngineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: eng.DupError,
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	})
	v, err := eng.DecodeValueFromSource(es)
	if err != nil {
		var zero Decoded[ChatCompletion]
		return zero, toIssues(err)
	}
	return decodeValueWithMeta(v, opt)
}

// DecodeValue decodes an already-tokenized document: a generic value
// tree as produced by the source drivers (objects as *engine.Object or
// map[string]any, arrays as []any, numbers as json.Number, int64 or
// float64). This is the boundary for collaborators that hand over a
// parsed form instead of raw bytes (for example the strict YAML
// source).
func DecodeValue(ctx context.Context, v any, opts ...DecodeOpt) (ChatCompletion, error) {
	dm, err := DecodeValueWithMeta(ctx, v, opts...)
	return dm.Value, err
}

// DecodeValueWithMeta is DecodeValue with presence metadata.
func DecodeValueWithMeta(_ context.Context, v any, opts ...DecodeOpt) (Decoded[ChatCompletion], error) {
	return decodeValueWithMeta(normalizeValue(v), pickOpt(opts))
}

func pickOpt(opts []DecodeOpt) DecodeOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1] // last option wins
	}
	return DecodeOpt{}
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: -1}}
	}
	return Issues{Issue{Code: CodeParseError, Path: "/", Message: i18n.T(CodeParseError, nil), Cause: err, Offset: -1}}
}

// ---- value-first walk ----

func decodeValueWithMeta(v any, opt DecodeOpt) (Decoded[ChatCompletion], error) {
	var zero Decoded[ChatCompletion]
	acc := newTopAccumulator(opt)
	obj, iss := asObject("/", v)
	if iss != nil {
		return zero, iss
	}
	for i := range obj.Members {
		acc.field(obj.Members[i].Key, obj.Members[i].Value)
		if opt.FailFast && len(acc.iss) > 0 {
			break
		}
	}
	return acc.finish()
}

// topAccumulator routes classified top-level fields into a partial base
// record and a partial extension bundle. One accumulator per field; a
// second occurrence of a field name is a duplicate (relevant only for
// the streaming pass; token enforcement catches duplicates earlier on
// the value path).
type topAccumulator struct {
	opt DecodeOpt
	iss Issues
	pm  PresenceMap

	seen map[string]struct{}
	rec  ChatCompletion

	extSlots      []*ChoiceFilterOutcome
	bundlePresent bool
}

func newTopAccumulator(opt DecodeOpt) *topAccumulator {
	return &topAccumulator{opt: opt, pm: PresenceMap{}, seen: make(map[string]struct{}, 10)}
}

func (a *topAccumulator) dup(path, key string) bool {
	if _, ok := a.seen[key]; ok {
		a.iss = AppendIssues(a.iss, Issue{Path: path, Code: CodeDuplicateKey, Message: i18n.T(CodeDuplicateKey, nil), Hint: key, Offset: -1})
		return true
	}
	a.seen[key] = struct{}{}
	return false
}

func (a *topAccumulator) field(key string, v any) {
	path := "/" + key
	if a.dup(path, key) {
		return
	}
	a.pm.mark(path, PresenceSeen)
	if v == nil {
		a.pm.mark(path, PresenceWasNull)
	}

	switch ClassifyField(ScopeTop, key) {
	case FieldUnknown:
		a.unknown(path, key, v, &a.rec.Extra)
		return
	case FieldExtensionOnly:
		// prompt_filter_results is the only top-level extension field.
		if v == nil {
			return
		}
		res, m := decodePromptFilterResults(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			a.rec.PromptFilterResults = res
			a.bundlePresent = true
		}
		return
	}

	switch key {
	case "id":
		a.rec.ID = a.reqString(path, v)
	case "created":
		if v == nil {
			a.iss = AppendIssues(a.iss, typeIssue(path, "integer"))
			return
		}
		n, m := asInt64(path, v)
		a.iss = AppendIssues(a.iss, m...)
		a.rec.Created = n
	case "model":
		a.rec.Model = a.reqString(path, v)
	case "object":
		// The constant value ("chat.completion") is a caller concern;
		// only the kind is validated here.
		a.rec.Object = a.reqString(path, v)
	case "service_tier":
		if v == nil {
			return
		}
		s, m := asString(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			if !knownServiceTier(s) {
				a.iss = AppendIssues(a.iss, issueAt(path, CodeInvalidEnum, "service_tier"))
				return
			}
			st := ServiceTier(s)
			a.rec.ServiceTier = &st
		}
	case "system_fingerprint":
		if v == nil {
			return
		}
		s, m := asString(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			a.rec.SystemFingerprint = &s
		}
	case "usage":
		if v == nil {
			return
		}
		u, m := decodeUsage(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			a.rec.Usage = &u
		}
	case "choices":
		if v == nil {
			a.iss = AppendIssues(a.iss, typeIssue(path, "array"))
			return
		}
		arr, m := asArray(path, v)
		if m != nil {
			a.iss = AppendIssues(a.iss, m...)
			return
		}
		a.rec.Choices = make([]ChatChoice, 0, len(arr))
		a.extSlots = make([]*ChoiceFilterOutcome, 0, len(arr))
		for i, el := range arr {
			a.choiceElement(i, el)
			if a.opt.FailFast && len(a.iss) > 0 {
				return
			}
		}
	}
}

func (a *topAccumulator) reqString(path string, v any) string {
	if v == nil {
		a.iss = AppendIssues(a.iss, typeIssue(path, "string"))
		return ""
	}
	s, m := asString(path, v)
	a.iss = AppendIssues(a.iss, m...)
	return s
}

func (a *topAccumulator) unknown(path, key string, v any, extra *[]ExtraField) {
	switch a.opt.Unknown {
	case UnknownStrict:
		a.iss = AppendIssues(a.iss, Issue{Path: path, Code: CodeUnknownKey, Message: i18n.T(CodeUnknownKey, nil), Hint: key, Offset: -1})
	case UnknownPassthrough:
		*extra = append(*extra, ExtraField{Key: key, Value: v})
	}
	// UnknownStrip: deliberately ignored, never an error.
}

// choiceElement decodes one element of the choices array: base fields
// and the extension field live mixed in the same object, so the same
// classify-and-route procedure applies one level down.
func (a *topAccumulator) choiceElement(i int, v any) {
	path := "/choices/" + itoa(i)
	c := choiceAccumulator{top: a, path: path, seen: make(map[string]struct{}, 6)}
	obj, m := asObject(path, v)
	if m != nil {
		a.iss = AppendIssues(a.iss, m...)
		// Keep positions aligned even for broken elements.
		a.rec.Choices = append(a.rec.Choices, ChatChoice{})
		a.extSlots = append(a.extSlots, nil)
		return
	}
	for j := range obj.Members {
		c.field(obj.Members[j].Key, obj.Members[j].Value)
		if a.opt.FailFast && len(a.iss) > 0 {
			break
		}
	}
	c.finish()
}

type choiceAccumulator struct {
	top  *topAccumulator
	path string
	seen map[string]struct{}

	ch          ChatChoice
	slot        *ChoiceFilterOutcome
	indexSeen   bool
	messageSeen bool
}

func (c *choiceAccumulator) field(key string, v any) {
	a := c.top
	path := c.path + "/" + key
	if _, ok := c.seen[key]; ok {
		a.iss = AppendIssues(a.iss, Issue{Path: path, Code: CodeDuplicateKey, Message: i18n.T(CodeDuplicateKey, nil), Hint: key, Offset: -1})
		return
	}
	c.seen[key] = struct{}{}
	a.pm.mark(path, PresenceSeen)
	if v == nil {
		a.pm.mark(path, PresenceWasNull)
	}

	switch ClassifyField(ScopeChoice, key) {
	case FieldUnknown:
		a.unknown(path, key, v, &c.ch.Extra)
		return
	case FieldExtensionOnly:
		if v == nil {
			return
		}
		oc, m := decodeChoiceFilterOutcome(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			c.slot = &oc
			a.bundlePresent = true
		}
		return
	}

	switch key {
	case "index":
		c.indexSeen = true
		if v == nil {
			a.iss = AppendIssues(a.iss, typeIssue(path, "integer"))
			return
		}
		n, m := asInt64(path, v)
		a.iss = AppendIssues(a.iss, m...)
		c.ch.Index = n
	case "message":
		c.messageSeen = true
		if v == nil {
			a.iss = AppendIssues(a.iss, typeIssue(path, "object"))
			return
		}
		msg, m := decodeMessage(path, v)
		a.iss = AppendIssues(a.iss, m...)
		c.ch.Message = msg
	case "finish_reason":
		if v == nil {
			return
		}
		s, m := asString(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			if !knownFinishReason(s) {
				a.iss = AppendIssues(a.iss, issueAt(path, CodeInvalidEnum, "finish_reason"))
				return
			}
			fr := FinishReason(s)
			c.ch.FinishReason = &fr
		}
	case "logprobs":
		if v == nil {
			return
		}
		lp, m := decodeLogprobs(path, v)
		a.iss = AppendIssues(a.iss, m...)
		if m == nil {
			c.ch.Logprobs = &lp
		}
	}
}

func (c *choiceAccumulator) finish() {
	a := c.top
	if a.opt.FailFast && len(a.iss) > 0 {
		a.rec.Choices = append(a.rec.Choices, c.ch)
		a.extSlots = append(a.extSlots, c.slot)
		return
	}
	if !c.indexSeen {
		a.iss = AppendIssues(a.iss, issueAt(c.path+"/index", CodeRequired, ""))
	}
	if !c.messageSeen {
		a.iss = AppendIssues(a.iss, issueAt(c.path+"/message", CodeRequired, ""))
	}
	a.rec.Choices = append(a.rec.Choices, c.ch)
	a.extSlots = append(a.extSlots, c.slot)
}

func (a *topAccumulator) finish() (Decoded[ChatCompletion], error) {
	var zero Decoded[ChatCompletion]
	if a.opt.FailFast && len(a.iss) > 0 {
		return zero, a.iss
	}
	for _, name := range requiredTopFields {
		if _, ok := a.seen[name]; !ok {
			a.iss = AppendIssues(a.iss, issueAt("/"+name, CodeRequired, ""))
			if a.opt.FailFast {
				break
			}
		}
	}
	if len(a.iss) == 0 {
		merged, err := ZipChoices(a.rec.Choices, a.extSlots, a.bundlePresent)
		if err != nil {
			ii, _ := AsIssues(err)
			a.iss = AppendIssues(a.iss, ii...)
		} else {
			a.rec.Choices = merged
		}
	}
	if len(a.iss) > 0 {
		return zero, a.iss
	}
	return Decoded[ChatCompletion]{Value: a.rec, Presence: a.pm}, nil
}

// normalizeValue converts foreign generic trees (map[string]any, typed
// numbers) into the engine's canonical form. Map member order is not
// recoverable; keys are sorted for determinism.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := eng.NewObject(len(keys))
		for _, k := range keys {
			obj.Members = append(obj.Members, eng.Member{Key: k, Value: normalizeValue(t[k])})
		}
		return obj
	case *eng.Object:
		for i := range t.Members {
			t.Members[i].Value = normalizeValue(t.Members[i].Value)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	case int:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return v
	}
}
