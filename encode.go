package azchat

import (
	"encoding/json"
	"strconv"

	eng "github.com/reoring/azchat/internal/engine"
)

// Encode serializes a merged record back to the flattened wire shape:
// one JSON object per document, one object per choice, base and
// extension fields side by side at the nesting level they were read
// from. Unset optional fields are omitted.
func Encode(rec ChatCompletion) ([]byte, error) {
	return encodeWith(rec, nil, false)
}

// EncodeWithDecoded serializes a record using the given mode. In
// EncodePreserve mode, optional fields recorded as explicit null in the
// presence metadata are re-emitted as null instead of being omitted.
func EncodeWithDecoded(d Decoded[ChatCompletion], mode EncodeMode) ([]byte, error) {
	if mode == EncodePreserve && d.Presence != nil {
		return encodeWith(d.Value, d.Presence, true)
	}
	return encodeWith(d.Value, nil, false)
}

func encodeWith(rec ChatCompletion, pm PresenceMap, preserve bool) ([]byte, error) {
	tree := encodeRecord(rec, pm, preserve)
	return eng.AppendJSON(make([]byte, 0, 256), tree)
}

func numInt(i int64) json.Number { return json.Number(strconv.FormatInt(i, 10)) }

func numFloat(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// put appends key/value; optPut appends only when present, or as null
// in preserve mode when the input carried an explicit null.
func put(o *eng.Object, key string, v any) {
	o.Members = append(o.Members, eng.Member{Key: key, Value: v})
}

func optPut(o *eng.Object, key, path string, v any, present bool, pm PresenceMap, preserve bool) {
	if present {
		put(o, key, v)
		return
	}
	if preserve && pm.WasNull(path) {
		put(o, key, nil)
	}
}

func encodeRecord(rec ChatCompletion, pm PresenceMap, preserve bool) *eng.Object {
	o := eng.NewObject(10)
	put(o, "id", rec.ID)

	choices := make([]any, 0, len(rec.Choices))
	for i := range rec.Choices {
		choices = append(choices, encodeChoice("/choices/"+itoa(i), rec.Choices[i], pm, preserve))
	}
	put(o, "choices", choices)

	put(o, "created", numInt(rec.Created))
	put(o, "model", rec.Model)
	if rec.ServiceTier != nil {
		put(o, "service_tier", string(*rec.ServiceTier))
	} else {
		optPut(o, "service_tier", "/service_tier", nil, false, pm, preserve)
	}
	if rec.SystemFingerprint != nil {
		put(o, "system_fingerprint", *rec.SystemFingerprint)
	} else {
		optPut(o, "system_fingerprint", "/system_fingerprint", nil, false, pm, preserve)
	}
	put(o, "object", rec.Object)
	if rec.Usage != nil {
		put(o, "usage", encodeUsage(*rec.Usage))
	} else {
		optPut(o, "usage", "/usage", nil, false, pm, preserve)
	}
	if rec.PromptFilterResults != nil {
		arr := make([]any, 0, len(rec.PromptFilterResults))
		for i := range rec.PromptFilterResults {
			arr = append(arr, encodePromptFilterResult(rec.PromptFilterResults[i]))
		}
		put(o, "prompt_filter_results", arr)
	}
	for _, ex := range rec.Extra {
		put(o, ex.Key, ex.Value)
	}
	return o
}

func encodeChoice(path string, ch ChatChoice, pm PresenceMap, preserve bool) *eng.Object {
	o := eng.NewObject(6)
	put(o, "index", numInt(ch.Index))
	put(o, "message", encodeMessage(ch.Message))
	if ch.FinishReason != nil {
		put(o, "finish_reason", string(*ch.FinishReason))
	} else {
		optPut(o, "finish_reason", path+"/finish_reason", nil, false, pm, preserve)
	}
	if ch.Logprobs != nil {
		put(o, "logprobs", encodeLogprobs(*ch.Logprobs))
	} else {
		optPut(o, "logprobs", path+"/logprobs", nil, false, pm, preserve)
	}
	if ch.ContentFilterResults != nil {
		put(o, "content_filter_results", encodeChoiceFilterOutcome(*ch.ContentFilterResults))
	}
	for _, ex := range ch.Extra {
		put(o, ex.Key, ex.Value)
	}
	return o
}

func encodeMessage(msg ChatMessage) *eng.Object {
	o := eng.NewObject(4)
	put(o, "role", string(msg.Role))
	if msg.Content != nil {
		put(o, "content", *msg.Content)
	}
	if msg.Refusal != nil {
		put(o, "refusal", *msg.Refusal)
	}
	if msg.ToolCalls != nil {
		arr := make([]any, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			arr = append(arr, encodeToolCall(tc))
		}
		put(o, "tool_calls", arr)
	}
	if msg.FunctionCall != nil {
		put(o, "function_call", encodeFunctionCall(*msg.FunctionCall))
	}
	return o
}

func encodeToolCall(tc ToolCall) *eng.Object {
	o := eng.NewObject(3)
	put(o, "id", tc.ID)
	put(o, "type", tc.Type)
	put(o, "function", encodeFunctionCall(tc.Function))
	return o
}

func encodeFunctionCall(fc FunctionCall) *eng.Object {
	o := eng.NewObject(2)
	put(o, "name", fc.Name)
	put(o, "arguments", fc.Arguments)
	return o
}

func encodeUsage(u Usage) *eng.Object {
	o := eng.NewObject(3)
	put(o, "prompt_tokens", numInt(u.PromptTokens))
	put(o, "completion_tokens", numInt(u.CompletionTokens))
	put(o, "total_tokens", numInt(u.TotalTokens))
	return o
}

func encodeLogprobs(lp ChoiceLogprobs) *eng.Object {
	o := eng.NewObject(2)
	if lp.Content != nil {
		put(o, "content", encodeTokenLogprobs(lp.Content))
	}
	if lp.Refusal != nil {
		put(o, "refusal", encodeTokenLogprobs(lp.Refusal))
	}
	return o
}

func encodeTokenLogprobs(list []TokenLogprob) []any {
	arr := make([]any, 0, len(list))
	for _, tl := range list {
		o := eng.NewObject(4)
		put(o, "token", tl.Token)
		put(o, "logprob", numFloat(tl.Logprob))
		if tl.Bytes != nil {
			put(o, "bytes", encodeByteList(tl.Bytes))
		}
		if tl.TopLogprobs != nil {
			tops := make([]any, 0, len(tl.TopLogprobs))
			for _, top := range tl.TopLogprobs {
				to := eng.NewObject(3)
				put(to, "token", top.Token)
				put(to, "logprob", numFloat(top.Logprob))
				if top.Bytes != nil {
					put(to, "bytes", encodeByteList(top.Bytes))
				}
				tops = append(tops, to)
			}
			put(o, "top_logprobs", tops)
		}
		arr = append(arr, o)
	}
	return arr
}

func encodeByteList(bs []byte) []any {
	arr := make([]any, 0, len(bs))
	for _, b := range bs {
		arr = append(arr, numInt(int64(b)))
	}
	return arr
}

func encodeSeverityResult(sr SeverityResult) *eng.Object {
	o := eng.NewObject(2)
	put(o, "filtered", sr.Filtered)
	if sr.Severity != nil {
		put(o, "severity", string(*sr.Severity))
	}
	return o
}

func encodeDetectedResult(dr DetectedResult) *eng.Object {
	o := eng.NewObject(2)
	put(o, "filtered", dr.Filtered)
	put(o, "detected", dr.Detected)
	return o
}

func encodeCitedDetection(cd CitedDetection) *eng.Object {
	o := eng.NewObject(3)
	put(o, "filtered", cd.Filtered)
	put(o, "detected", cd.Detected)
	if cd.Citation != nil {
		c := eng.NewObject(2)
		put(c, "url", cd.Citation.URL)
		put(c, "license", cd.Citation.License)
		put(o, "citation", c)
	}
	return o
}

func encodeFilterError(fe FilterError) *eng.Object {
	o := eng.NewObject(2)
	put(o, "code", fe.Code)
	put(o, "message", fe.Message)
	return o
}

func encodeChoiceFilterOutcome(oc ChoiceFilterOutcome) *eng.Object {
	if oc.Err != nil {
		return encodeFilterError(*oc.Err)
	}
	o := eng.NewObject(7)
	if oc.Results == nil {
		return o
	}
	r := *oc.Results
	if r.Sexual != nil {
		put(o, "sexual", encodeSeverityResult(*r.Sexual))
	}
	if r.Violence != nil {
		put(o, "violence", encodeSeverityResult(*r.Violence))
	}
	if r.Hate != nil {
		put(o, "hate", encodeSeverityResult(*r.Hate))
	}
	if r.SelfHarm != nil {
		put(o, "self_harm", encodeSeverityResult(*r.SelfHarm))
	}
	if r.Profanity != nil {
		put(o, "profanity", encodeDetectedResult(*r.Profanity))
	}
	if r.ProtectedMaterialText != nil {
		put(o, "protected_material_text", encodeDetectedResult(*r.ProtectedMaterialText))
	}
	if r.ProtectedMaterialCode != nil {
		put(o, "protected_material_code", encodeCitedDetection(*r.ProtectedMaterialCode))
	}
	return o
}

func encodePromptFilterOutcome(oc PromptFilterOutcome) *eng.Object {
	if oc.Err != nil {
		return encodeFilterError(*oc.Err)
	}
	o := eng.NewObject(6)
	if oc.Results == nil {
		return o
	}
	r := *oc.Results
	if r.Sexual != nil {
		put(o, "sexual", encodeSeverityResult(*r.Sexual))
	}
	if r.Violence != nil {
		put(o, "violence", encodeSeverityResult(*r.Violence))
	}
	if r.Hate != nil {
		put(o, "hate", encodeSeverityResult(*r.Hate))
	}
	if r.SelfHarm != nil {
		put(o, "self_harm", encodeSeverityResult(*r.SelfHarm))
	}
	if r.Profanity != nil {
		put(o, "profanity", encodeDetectedResult(*r.Profanity))
	}
	if r.Jailbreak != nil {
		put(o, "jailbreak", encodeDetectedResult(*r.Jailbreak))
	}
	return o
}

func encodePromptFilterResult(pr PromptFilterResult) *eng.Object {
	o := eng.NewObject(2)
	put(o, "prompt_index", numInt(pr.PromptIndex))
	put(o, "content_filter_results", encodePromptFilterOutcome(pr.ContentFilterResults))
	return o
}
