package azchat

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

var bothStrategies = []struct {
	name string
	s    Strategy
}{
	{"value", StrategyValue},
	{"stream", StrategyStream},
}

const filteredDoc = `{"id":"c1","object":"chat.completion","created":1700000000,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"content_filter_results":{"hate":{"filtered":false,"severity":"safe"}}}]}`

func TestDecode_FilteredChoice(t *testing.T) {
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			rec, err := DecodeBytes(context.Background(), []byte(filteredDoc), DecodeOpt{Strategy: st.s})
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if rec.ID != "c1" || rec.Model != "m" || rec.Created != 1700000000 || rec.Object != "chat.completion" {
				t.Fatalf("base fields wrong: %+v", rec)
			}
			if len(rec.Choices) != 1 {
				t.Fatalf("expected 1 choice, got %d", len(rec.Choices))
			}
			ch := rec.Choices[0]
			if ch.Message.Role != RoleAssistant || ch.Message.Content == nil || *ch.Message.Content != "hi" {
				t.Fatalf("message wrong: %+v", ch.Message)
			}
			cfr := ch.ContentFilterResults
			if cfr == nil || cfr.Results == nil || cfr.Err != nil {
				t.Fatalf("expected severity report, got %+v", cfr)
			}
			hate := cfr.Results.Hate
			if hate == nil || hate.Filtered || hate.Severity == nil || *hate.Severity != SeveritySafe {
				t.Fatalf("hate category wrong: %+v", hate)
			}
		})
	}
}

func TestDecode_EncodeKeepsFilterInsideChoice(t *testing.T) {
	rec, err := DecodeBytes(context.Background(), []byte(filteredDoc))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	out, err := Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("encoded output not valid JSON: %v", err)
	}
	if _, ok := m["content_filter_results"]; ok {
		t.Fatalf("filter results leaked to top level: %s", out)
	}
	choice := m["choices"].([]any)[0].(map[string]any)
	if _, ok := choice["content_filter_results"]; !ok {
		t.Fatalf("filter results missing from choice object: %s", out)
	}
	// no wrapper keys anywhere
	for _, k := range []string{"base", "extension", "extra", "vanilla"} {
		if _, ok := m[k]; ok {
			t.Fatalf("unexpected wrapper key %q: %s", k, out)
		}
	}
}

func TestDecode_NoExtensionBundle(t *testing.T) {
	doc := `{"id":"c2","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"a"}},{"index":1,"message":{"role":"assistant","content":"b"},"finish_reason":"stop"}]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			rec, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: st.s})
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if len(rec.Choices) != 2 {
				t.Fatalf("expected 2 choices, got %d", len(rec.Choices))
			}
			for i, ch := range rec.Choices {
				if ch.ContentFilterResults != nil {
					t.Fatalf("choice %d: extension slot should be unset", i)
				}
			}
			if fr := rec.Choices[1].FinishReason; fr == nil || *fr != FinishReasonStop {
				t.Fatalf("finish_reason wrong: %v", fr)
			}
		})
	}
}

func TestDecode_DuplicateTopLevelID(t *testing.T) {
	doc := `{"id":"a","id":"b","object":"o","created":1,"model":"m","choices":[]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			_, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: st.s})
			if !HasCode(err, CodeDuplicateKey) {
				t.Fatalf("expected duplicate_key, got %v", err)
			}
			iss, _ := AsIssues(err)
			if iss[0].Path != "/id" {
				t.Fatalf("expected path /id, got %q", iss[0].Path)
			}
		})
	}
}

func TestDecode_DuplicateKeyInsideChoice(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant"},"index":1}]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			_, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: st.s})
			if !HasCode(err, CodeDuplicateKey) {
				t.Fatalf("expected duplicate_key, got %v", err)
			}
			iss, _ := AsIssues(err)
			if iss[0].Path != "/choices/0/index" {
				t.Fatalf("expected path /choices/0/index, got %q", iss[0].Path)
			}
		})
	}
}

func TestDecode_MissingRequiredFields(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"choices":[]}` // model missing
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			_, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: st.s})
			if !HasCode(err, CodeRequired) {
				t.Fatalf("expected required, got %v", err)
			}
			iss, _ := AsIssues(err)
			found := false
			for _, it := range iss {
				if it.Code == CodeRequired && it.Path == "/model" {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected required at /model, got %v", iss)
			}
		})
	}
}

func TestDecode_MissingChoiceRequired(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","choices":[{"index":0}]}`
	_, err := DecodeBytes(context.Background(), []byte(doc))
	iss, _ := AsIssues(err)
	found := false
	for _, it := range iss {
		if it.Code == CodeRequired && it.Path == "/choices/0/message" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected required at /choices/0/message, got %v", err)
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
	}{
		{"created string", `{"id":"a","object":"o","created":"x","model":"m","choices":[]}`, "/created"},
		{"choices object", `{"id":"a","object":"o","created":1,"model":"m","choices":{}}`, "/choices"},
		{"id number", `{"id":7,"object":"o","created":1,"model":"m","choices":[]}`, "/id"},
		{"index string", `{"id":"a","object":"o","created":1,"model":"m","choices":[{"index":"0","message":{"role":"assistant"}}]}`, "/choices/0/index"},
	}
	for _, tc := range cases {
		for _, st := range bothStrategies {
			t.Run(tc.name+"/"+st.name, func(t *testing.T) {
				_, err := DecodeBytes(context.Background(), []byte(tc.doc), DecodeOpt{Strategy: st.s})
				if !HasCode(err, CodeInvalidType) {
					t.Fatalf("expected invalid_type, got %v", err)
				}
				iss, _ := AsIssues(err)
				found := false
				for _, it := range iss {
					if it.Code == CodeInvalidType && it.Path == tc.path {
						found = true
					}
				}
				if !found {
					t.Fatalf("expected invalid_type at %s, got %v", tc.path, iss)
				}
			})
		}
	}
}

func TestDecode_InvalidFinishReason(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant"},"finish_reason":"banana"}]}`
	_, err := DecodeBytes(context.Background(), []byte(doc))
	if !HasCode(err, CodeInvalidEnum) {
		t.Fatalf("expected invalid_enum, got %v", err)
	}
}

func TestDecode_NullVsAbsentSystemFingerprint(t *testing.T) {
	withNull := `{"id":"a","object":"o","created":1,"model":"m","system_fingerprint":null,"choices":[]}`
	without := `{"id":"a","object":"o","created":1,"model":"m","choices":[]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			a, err := DecodeBytes(context.Background(), []byte(withNull), DecodeOpt{Strategy: st.s})
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			b, err := DecodeBytes(context.Background(), []byte(without), DecodeOpt{Strategy: st.s})
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if !reflect.DeepEqual(a, b) {
				t.Fatalf("null and absent should decode identically:\n%+v\n%+v", a, b)
			}
			if a.SystemFingerprint != nil {
				t.Fatalf("explicit null must contribute an absent value")
			}
		})
	}
}

func TestDecode_UnknownFieldTolerance(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","beta_flag":true,"choices":[]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			rec, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: st.s})
			if err != nil {
				t.Fatalf("unknown field should be tolerated: %v", err)
			}
			out, err := Encode(rec)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			var m map[string]any
			if err := json.Unmarshal(out, &m); err != nil {
				t.Fatalf("encoded output not valid JSON: %v", err)
			}
			if _, ok := m["beta_flag"]; ok {
				t.Fatalf("stripped unknown key must not reappear in encode: %s", out)
			}
		})
	}
}

func TestDecode_UnknownStrict(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","beta_flag":true,"choices":[]}`
	_, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Unknown: UnknownStrict})
	if !HasCode(err, CodeUnknownKey) {
		t.Fatalf("expected unknown_key, got %v", err)
	}
}

func TestDecode_UnknownPassthrough(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","beta_flag":true,"choices":[{"index":0,"message":{"role":"assistant"},"trace_id":"t1"}]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			opt := DecodeOpt{Strategy: st.s, Unknown: UnknownPassthrough}
			rec, err := DecodeBytes(context.Background(), []byte(doc), opt)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if len(rec.Extra) != 1 || rec.Extra[0].Key != "beta_flag" {
				t.Fatalf("expected beta_flag preserved, got %+v", rec.Extra)
			}
			if len(rec.Choices[0].Extra) != 1 || rec.Choices[0].Extra[0].Key != "trace_id" {
				t.Fatalf("expected trace_id preserved, got %+v", rec.Choices[0].Extra)
			}
			out, err := Encode(rec)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			again, err := DecodeBytes(context.Background(), out, opt)
			if err != nil {
				t.Fatalf("re-decode: %v", err)
			}
			if !reflect.DeepEqual(rec, again) {
				t.Fatalf("passthrough round-trip drifted:\n%+v\n%+v", rec, again)
			}
		})
	}
}

func TestDecode_PromptFilterResults(t *testing.T) {
	doc := `{"id":"a","object":"o","created":1,"model":"m","prompt_filter_results":[{"prompt_index":0,"content_filter_results":{"jailbreak":{"filtered":false,"detected":false}}},{"prompt_index":1,"content_filter_results":{"code":"timeout","message":"filter backend timed out"}}],"choices":[{"index":0,"message":{"role":"assistant"}}]}`
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			rec, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: st.s})
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			// prompt results have independent cardinality from choices
			if len(rec.PromptFilterResults) != 2 || len(rec.Choices) != 1 {
				t.Fatalf("cardinalities wrong: %d prompts, %d choices", len(rec.PromptFilterResults), len(rec.Choices))
			}
			p0 := rec.PromptFilterResults[0]
			if p0.PromptIndex != 0 || p0.ContentFilterResults.Results == nil || p0.ContentFilterResults.Results.Jailbreak == nil {
				t.Fatalf("prompt 0 wrong: %+v", p0)
			}
			p1 := rec.PromptFilterResults[1]
			if p1.ContentFilterResults.Err == nil || p1.ContentFilterResults.Err.Code != "timeout" {
				t.Fatalf("prompt 1 should carry the error shape: %+v", p1)
			}
		})
	}
}

func TestDecode_StrategiesAgree(t *testing.T) {
	docs := []string{
		filteredDoc,
		`{"id":"a","object":"o","created":1,"model":"m","choices":[]}`,
		`{"id":"a","object":"o","created":1,"model":"m","service_tier":"scale","system_fingerprint":"fp_1","usage":{"prompt_tokens":3,"completion_tokens":5,"total_tokens":8},"choices":[{"index":0,"message":{"role":"assistant","content":"x","tool_calls":[{"id":"t1","type":"function","function":{"name":"f","arguments":"{}"}}]},"finish_reason":"tool_calls","logprobs":{"content":[{"token":"x","logprob":-0.25,"bytes":[120],"top_logprobs":[{"token":"x","logprob":-0.25}]}]}}]}`,
		`{"id":"a","object":"o","created":1,"model":"m","prompt_filter_results":[{"prompt_index":0,"content_filter_results":{"sexual":{"filtered":false,"severity":"safe"}}}],"choices":[{"index":0,"message":{"role":"assistant"},"content_filter_results":{"code":"500","message":"boom"}}]}`,
	}
	for i, doc := range docs {
		v, verr := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: StrategyValue})
		s, serr := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{Strategy: StrategyStream})
		if (verr == nil) != (serr == nil) {
			t.Fatalf("doc %d: strategies disagree on error: %v vs %v", i, verr, serr)
		}
		if verr == nil && !reflect.DeepEqual(v, s) {
			t.Fatalf("doc %d: strategies disagree on value:\n%+v\n%+v", i, v, s)
		}
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			_, err := DecodeBytes(context.Background(), []byte(`{"id":`), DecodeOpt{Strategy: st.s})
			if !HasCode(err, CodeParseError) {
				t.Fatalf("expected parse_error, got %v", err)
			}
		})
	}
}

func TestDecode_TopLevelNotObject(t *testing.T) {
	for _, st := range bothStrategies {
		t.Run(st.name, func(t *testing.T) {
			_, err := DecodeBytes(context.Background(), []byte(`[1,2]`), DecodeOpt{Strategy: st.s})
			if !HasCode(err, CodeInvalidType) {
				t.Fatalf("expected invalid_type, got %v", err)
			}
		})
	}
}

func TestDecodeValue_FromGenericTree(t *testing.T) {
	doc := map[string]any{
		"id":      "a",
		"object":  "o",
		"created": int64(1),
		"model":   "m",
		"choices": []any{map[string]any{
			"index":   int64(0),
			"message": map[string]any{"role": "assistant", "content": "hi"},
		}},
	}
	rec, err := DecodeValue(context.Background(), doc)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rec.ID != "a" || len(rec.Choices) != 1 || *rec.Choices[0].Message.Content != "hi" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestDecode_FailFastStopsAtFirstIssue(t *testing.T) {
	doc := `{"id":5,"object":7,"created":"x","model":"m","choices":[]}`
	_, err := DecodeBytes(context.Background(), []byte(doc), DecodeOpt{FailFast: true})
	iss, ok := AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected exactly one issue, got %v", err)
	}
	_, err = DecodeBytes(context.Background(), []byte(doc))
	if iss, _ = AsIssues(err); len(iss) < 3 {
		t.Fatalf("expected all issues collected, got %v", err)
	}
}
