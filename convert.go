package azchat

import (
	"encoding/json"

	eng "github.com/reoring/azchat/internal/engine"
	"github.com/reoring/azchat/i18n"
)

// Converters from generic tree values (see internal/engine) to typed
// record parts. Shared by both decode strategies so their observable
// behavior cannot drift. Every converter reports problems as Issues
// anchored at a JSON Pointer.

func issueAt(path, code, hint string) Issue {
	return Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint, Offset: -1}
}

func typeIssue(path, expected string) Issue {
	return issueAt(path, CodeInvalidType, "expected "+expected)
}

func asObject(path string, v any) (*eng.Object, Issues) {
	if o, ok := v.(*eng.Object); ok {
		return o, nil
	}
	return nil, Issues{typeIssue(path, "object")}
}

func asArray(path string, v any) ([]any, Issues) {
	if a, ok := v.([]any); ok {
		return a, nil
	}
	return nil, Issues{typeIssue(path, "array")}
}

func asString(path string, v any) (string, Issues) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", Issues{typeIssue(path, "string")}
}

func asBool(path string, v any) (bool, Issues) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, Issues{typeIssue(path, "boolean")}
}

func asInt64(path string, v any) (int64, Issues) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return 0, Issues{typeIssue(path, "integer")}
}

func asFloat64(path string, v any) (float64, Issues) {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return 0, Issues{typeIssue(path, "number")}
}

// objField returns the member value and whether the key was present.
// Present-with-null yields (nil, true).
func objField(o *eng.Object, key string) (any, bool) {
	return o.Get(key)
}

func decodeMessage(path string, v any) (ChatMessage, Issues) {
	var msg ChatMessage
	obj, iss := asObject(path, v)
	if iss != nil {
		return msg, iss
	}

	if rv, ok := objField(obj, "role"); ok && rv != nil {
		s, more := asString(path+"/role", rv)
		iss = AppendIssues(iss, more...)
		if more == nil {
			if !knownRole(s) {
				iss = AppendIssues(iss, issueAt(path+"/role", CodeInvalidEnum, "role"))
			} else {
				msg.Role = Role(s)
			}
		}
	} else {
		iss = AppendIssues(iss, issueAt(path+"/role", CodeRequired, ""))
	}

	if cv, ok := objField(obj, "content"); ok && cv != nil {
		s, more := asString(path+"/content", cv)
		iss = AppendIssues(iss, more...)
		if more == nil {
			msg.Content = &s
		}
	}
	if rv, ok := objField(obj, "refusal"); ok && rv != nil {
		s, more := asString(path+"/refusal", rv)
		iss = AppendIssues(iss, more...)
		if more == nil {
			msg.Refusal = &s
		}
	}
	if tv, ok := objField(obj, "tool_calls"); ok && tv != nil {
		calls, more := decodeToolCalls(path+"/tool_calls", tv)
		iss = AppendIssues(iss, more...)
		msg.ToolCalls = calls
	}
	if fv, ok := objField(obj, "function_call"); ok && fv != nil {
		fc, more := decodeFunctionCall(path+"/function_call", fv)
		iss = AppendIssues(iss, more...)
		if more == nil {
			msg.FunctionCall = &fc
		}
	}
	if len(iss) > 0 {
		return msg, iss
	}
	return msg, nil
}

func decodeToolCalls(path string, v any) ([]ToolCall, Issues) {
	arr, iss := asArray(path, v)
	if iss != nil {
		return nil, iss
	}
	out := make([]ToolCall, 0, len(arr))
	for i, el := range arr {
		p := path + "/" + itoa(i)
		obj, more := asObject(p, el)
		if more != nil {
			iss = AppendIssues(iss, more...)
			continue
		}
		var tc ToolCall
		if idv, ok := objField(obj, "id"); ok && idv != nil {
			s, m := asString(p+"/id", idv)
			iss = AppendIssues(iss, m...)
			tc.ID = s
		} else {
			iss = AppendIssues(iss, issueAt(p+"/id", CodeRequired, ""))
		}
		if tv, ok := objField(obj, "type"); ok && tv != nil {
			s, m := asString(p+"/type", tv)
			iss = AppendIssues(iss, m...)
			tc.Type = s
		} else {
			iss = AppendIssues(iss, issueAt(p+"/type", CodeRequired, ""))
		}
		if fv, ok := objField(obj, "function"); ok && fv != nil {
			fc, m := decodeFunctionCall(p+"/function", fv)
			iss = AppendIssues(iss, m...)
			tc.Function = fc
		} else {
			iss = AppendIssues(iss, issueAt(p+"/function", CodeRequired, ""))
		}
		out = append(out, tc)
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func decodeFunctionCall(path string, v any) (FunctionCall, Issues) {
	var fc FunctionCall
	obj, iss := asObject(path, v)
	if iss != nil {
		return fc, iss
	}
	if nv, ok := objField(obj, "name"); ok && nv != nil {
		s, m := asString(path+"/name", nv)
		iss = AppendIssues(iss, m...)
		fc.Name = s
	} else {
		iss = AppendIssues(iss, issueAt(path+"/name", CodeRequired, ""))
	}
	if av, ok := objField(obj, "arguments"); ok && av != nil {
		s, m := asString(path+"/arguments", av)
		iss = AppendIssues(iss, m...)
		fc.Arguments = s
	} else {
		iss = AppendIssues(iss, issueAt(path+"/arguments", CodeRequired, ""))
	}
	if len(iss) > 0 {
		return fc, iss
	}
	return fc, nil
}

func decodeUsage(path string, v any) (Usage, Issues) {
	var u Usage
	obj, iss := asObject(path, v)
	if iss != nil {
		return u, iss
	}
	req := func(key string, dst *int64) {
		fv, ok := objField(obj, key)
		if !ok || fv == nil {
			iss = AppendIssues(iss, issueAt(path+"/"+key, CodeRequired, ""))
			return
		}
		n, m := asInt64(path+"/"+key, fv)
		iss = AppendIssues(iss, m...)
		*dst = n
	}
	req("prompt_tokens", &u.PromptTokens)
	req("completion_tokens", &u.CompletionTokens)
	req("total_tokens", &u.TotalTokens)
	if len(iss) > 0 {
		return u, iss
	}
	return u, nil
}

func decodeLogprobs(path string, v any) (ChoiceLogprobs, Issues) {
	var lp ChoiceLogprobs
	obj, iss := asObject(path, v)
	if iss != nil {
		return lp, iss
	}
	if cv, ok := objField(obj, "content"); ok && cv != nil {
		list, more := decodeTokenLogprobs(path+"/content", cv)
		iss = AppendIssues(iss, more...)
		lp.Content = list
	}
	if rv, ok := objField(obj, "refusal"); ok && rv != nil {
		list, more := decodeTokenLogprobs(path+"/refusal", rv)
		iss = AppendIssues(iss, more...)
		lp.Refusal = list
	}
	if len(iss) > 0 {
		return lp, iss
	}
	return lp, nil
}

func decodeTokenLogprobs(path string, v any) ([]TokenLogprob, Issues) {
	arr, iss := asArray(path, v)
	if iss != nil {
		return nil, iss
	}
	out := make([]TokenLogprob, 0, len(arr))
	for i, el := range arr {
		p := path + "/" + itoa(i)
		obj, more := asObject(p, el)
		if more != nil {
			iss = AppendIssues(iss, more...)
			continue
		}
		var tl TokenLogprob
		iss = AppendIssues(iss, decodeLogprobCommon(p, obj, &tl.Token, &tl.Logprob, &tl.Bytes)...)
		if tv, ok := objField(obj, "top_logprobs"); ok && tv != nil {
			tops, m := decodeTopLogprobs(p+"/top_logprobs", tv)
			iss = AppendIssues(iss, m...)
			tl.TopLogprobs = tops
		}
		out = append(out, tl)
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func decodeTopLogprobs(path string, v any) ([]TopLogprob, Issues) {
	arr, iss := asArray(path, v)
	if iss != nil {
		return nil, iss
	}
	out := make([]TopLogprob, 0, len(arr))
	for i, el := range arr {
		p := path + "/" + itoa(i)
		obj, more := asObject(p, el)
		if more != nil {
			iss = AppendIssues(iss, more...)
			continue
		}
		var tl TopLogprob
		iss = AppendIssues(iss, decodeLogprobCommon(p, obj, &tl.Token, &tl.Logprob, &tl.Bytes)...)
		out = append(out, tl)
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func decodeLogprobCommon(p string, obj *eng.Object, token *string, logprob *float64, bs *[]byte) Issues {
	var iss Issues
	if tv, ok := objField(obj, "token"); ok && tv != nil {
		s, m := asString(p+"/token", tv)
		iss = AppendIssues(iss, m...)
		*token = s
	} else {
		iss = AppendIssues(iss, issueAt(p+"/token", CodeRequired, ""))
	}
	if lv, ok := objField(obj, "logprob"); ok && lv != nil {
		f, m := asFloat64(p+"/logprob", lv)
		iss = AppendIssues(iss, m...)
		*logprob = f
	} else {
		iss = AppendIssues(iss, issueAt(p+"/logprob", CodeRequired, ""))
	}
	if bv, ok := objField(obj, "bytes"); ok && bv != nil {
		b, m := decodeByteList(p+"/bytes", bv)
		iss = AppendIssues(iss, m...)
		*bs = b
	}
	return iss
}

func decodeByteList(path string, v any) ([]byte, Issues) {
	arr, iss := asArray(path, v)
	if iss != nil {
		return nil, iss
	}
	out := make([]byte, 0, len(arr))
	for i, el := range arr {
		n, more := asInt64(path+"/"+itoa(i), el)
		if more != nil {
			iss = AppendIssues(iss, more...)
			continue
		}
		out = append(out, byte(n))
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

// ---- filtering outcome union (structural resolution) ----

func decodeSeverityResult(path string, v any) (SeverityResult, Issues) {
	var sr SeverityResult
	obj, iss := asObject(path, v)
	if iss != nil {
		return sr, iss
	}
	if fv, ok := objField(obj, "filtered"); ok && fv != nil {
		b, m := asBool(path+"/filtered", fv)
		iss = AppendIssues(iss, m...)
		sr.Filtered = b
	} else {
		iss = AppendIssues(iss, issueAt(path+"/filtered", CodeRequired, ""))
	}
	if sv, ok := objField(obj, "severity"); ok && sv != nil {
		s, m := asString(path+"/severity", sv)
		iss = AppendIssues(iss, m...)
		if m == nil {
			if !knownSeverity(s) {
				iss = AppendIssues(iss, issueAt(path+"/severity", CodeInvalidEnum, "severity"))
			} else {
				sev := Severity(s)
				sr.Severity = &sev
			}
		}
	}
	if len(iss) > 0 {
		return sr, iss
	}
	return sr, nil
}

func decodeDetectedResult(path string, v any) (DetectedResult, Issues) {
	var dr DetectedResult
	obj, iss := asObject(path, v)
	if iss != nil {
		return dr, iss
	}
	req := func(key string, dst *bool) {
		fv, ok := objField(obj, key)
		if !ok || fv == nil {
			iss = AppendIssues(iss, issueAt(path+"/"+key, CodeRequired, ""))
			return
		}
		b, m := asBool(path+"/"+key, fv)
		iss = AppendIssues(iss, m...)
		*dst = b
	}
	req("filtered", &dr.Filtered)
	req("detected", &dr.Detected)
	if len(iss) > 0 {
		return dr, iss
	}
	return dr, nil
}

func decodeCitedDetection(path string, v any) (CitedDetection, Issues) {
	var cd CitedDetection
	dr, iss := decodeDetectedResult(path, v)
	cd.Filtered, cd.Detected = dr.Filtered, dr.Detected
	obj, ok := v.(*eng.Object)
	if !ok {
		return cd, iss
	}
	if cv, cok := objField(obj, "citation"); cok && cv != nil {
		cobj, more := asObject(path+"/citation", cv)
		if more != nil {
			iss = AppendIssues(iss, more...)
		} else {
			var cit Citation
			if uv, uok := objField(cobj, "url"); uok && uv != nil {
				s, m := asString(path+"/citation/url", uv)
				iss = AppendIssues(iss, m...)
				cit.URL = s
			}
			if lv, lok := objField(cobj, "license"); lok && lv != nil {
				s, m := asString(path+"/citation/license", lv)
				iss = AppendIssues(iss, m...)
				cit.License = s
			}
			cd.Citation = &cit
		}
	}
	if len(iss) > 0 {
		return cd, iss
	}
	return cd, nil
}

// filterShape classifies a filtering-outcome object by structure.
type filterShape int

const (
	shapeResults filterShape = iota
	shapeError
	shapeUnsupported
)

// resolveFilterShape tries the success shape first, then the error
// shape, per the wire contract: there is no tag field to dispatch on.
func resolveFilterShape(obj *eng.Object, categories map[string]struct{}) filterShape {
	if obj.Len() == 0 {
		return shapeResults
	}
	for i := range obj.Members {
		if _, ok := categories[obj.Members[i].Key]; ok {
			return shapeResults
		}
	}
	if obj.Has("code") && obj.Has("message") {
		return shapeError
	}
	return shapeUnsupported
}

func decodeFilterError(path string, obj *eng.Object) (FilterError, Issues) {
	var fe FilterError
	var iss Issues
	if cv, ok := objField(obj, "code"); ok && cv != nil {
		s, m := asString(path+"/code", cv)
		iss = AppendIssues(iss, m...)
		fe.Code = s
	}
	if mv, ok := objField(obj, "message"); ok && mv != nil {
		s, m := asString(path+"/message", mv)
		iss = AppendIssues(iss, m...)
		fe.Message = s
	}
	return fe, iss
}

func decodeChoiceFilterOutcome(path string, v any) (ChoiceFilterOutcome, Issues) {
	var out ChoiceFilterOutcome
	obj, iss := asObject(path, v)
	if iss != nil {
		return out, iss
	}
	switch resolveFilterShape(obj, choiceFilterCategories) {
	case shapeError:
		fe, more := decodeFilterError(path, obj)
		if more != nil {
			return out, more
		}
		out.Err = &fe
		return out, nil
	case shapeUnsupported:
		return out, Issues{issueAt(path, CodeUnsupportedShape, "filtering outcome")}
	}

	var res ChoiceFilterResults
	sev := func(key string, dst **SeverityResult) {
		if fv, ok := objField(obj, key); ok && fv != nil {
			sr, m := decodeSeverityResult(path+"/"+key, fv)
			iss = AppendIssues(iss, m...)
			if m == nil {
				*dst = &sr
			}
		}
	}
	det := func(key string, dst **DetectedResult) {
		if fv, ok := objField(obj, key); ok && fv != nil {
			dr, m := decodeDetectedResult(path+"/"+key, fv)
			iss = AppendIssues(iss, m...)
			if m == nil {
				*dst = &dr
			}
		}
	}
	sev("sexual", &res.Sexual)
	sev("violence", &res.Violence)
	sev("hate", &res.Hate)
	sev("self_harm", &res.SelfHarm)
	det("profanity", &res.Profanity)
	det("protected_material_text", &res.ProtectedMaterialText)
	if fv, ok := objField(obj, "protected_material_code"); ok && fv != nil {
		cd, m := decodeCitedDetection(path+"/protected_material_code", fv)
		iss = AppendIssues(iss, m...)
		if m == nil {
			res.ProtectedMaterialCode = &cd
		}
	}
	if len(iss) > 0 {
		return out, iss
	}
	out.Results = &res
	return out, nil
}

func decodePromptFilterOutcome(path string, v any) (PromptFilterOutcome, Issues) {
	var out PromptFilterOutcome
	obj, iss := asObject(path, v)
	if iss != nil {
		return out, iss
	}
	switch resolveFilterShape(obj, promptFilterCategories) {
	case shapeError:
		fe, more := decodeFilterError(path, obj)
		if more != nil {
			return out, more
		}
		out.Err = &fe
		return out, nil
	case shapeUnsupported:
		return out, Issues{issueAt(path, CodeUnsupportedShape, "filtering outcome")}
	}

	var res PromptFilterResults
	sev := func(key string, dst **SeverityResult) {
		if fv, ok := objField(obj, key); ok && fv != nil {
			sr, m := decodeSeverityResult(path+"/"+key, fv)
			iss = AppendIssues(iss, m...)
			if m == nil {
				*dst = &sr
			}
		}
	}
	det := func(key string, dst **DetectedResult) {
		if fv, ok := objField(obj, key); ok && fv != nil {
			dr, m := decodeDetectedResult(path+"/"+key, fv)
			iss = AppendIssues(iss, m...)
			if m == nil {
				*dst = &dr
			}
		}
	}
	sev("sexual", &res.Sexual)
	sev("violence", &res.Violence)
	sev("hate", &res.Hate)
	sev("self_harm", &res.SelfHarm)
	det("profanity", &res.Profanity)
	det("jailbreak", &res.Jailbreak)
	if len(iss) > 0 {
		return out, iss
	}
	out.Results = &res
	return out, nil
}

func decodePromptFilterResults(path string, v any) ([]PromptFilterResult, Issues) {
	arr, iss := asArray(path, v)
	if iss != nil {
		return nil, iss
	}
	out := make([]PromptFilterResult, 0, len(arr))
	for i, el := range arr {
		p := path + "/" + itoa(i)
		obj, more := asObject(p, el)
		if more != nil {
			iss = AppendIssues(iss, more...)
			continue
		}
		var pr PromptFilterResult
		if iv, ok := objField(obj, "prompt_index"); ok && iv != nil {
			n, m := asInt64(p+"/prompt_index", iv)
			iss = AppendIssues(iss, m...)
			pr.PromptIndex = n
		} else {
			iss = AppendIssues(iss, issueAt(p+"/prompt_index", CodeRequired, ""))
		}
		if cv, ok := objField(obj, "content_filter_results"); ok && cv != nil {
			oc, m := decodePromptFilterOutcome(p+"/content_filter_results", cv)
			iss = AppendIssues(iss, m...)
			pr.ContentFilterResults = oc
		} else {
			iss = AppendIssues(iss, issueAt(p+"/content_filter_results", CodeRequired, ""))
		}
		out = append(out, pr)
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func itoa(i int) string {
	if i >= 0 && i < 10 {
		return string(rune('0' + i))
	}
	// rare in practice; fall back to a small manual conversion
	var buf [20]byte
	bp := len(buf)
	for i > 0 {
		bp--
		buf[bp] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[bp:])
}
