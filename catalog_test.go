package azchat

import "testing"

func TestClassifyField(t *testing.T) {
	cases := []struct {
		scope Scope
		name  string
		want  FieldClass
	}{
		{ScopeTop, "id", FieldBaseOnly},
		{ScopeTop, "choices", FieldBaseOnly},
		{ScopeTop, "created", FieldBaseOnly},
		{ScopeTop, "model", FieldBaseOnly},
		{ScopeTop, "object", FieldBaseOnly},
		{ScopeTop, "service_tier", FieldBaseOnly},
		{ScopeTop, "system_fingerprint", FieldBaseOnly},
		{ScopeTop, "usage", FieldBaseOnly},
		{ScopeTop, "prompt_filter_results", FieldExtensionOnly},
		{ScopeTop, "content_filter_results", FieldUnknown},
		{ScopeTop, "beta_flag", FieldUnknown},
		{ScopeChoice, "index", FieldBaseOnly},
		{ScopeChoice, "message", FieldBaseOnly},
		{ScopeChoice, "finish_reason", FieldBaseOnly},
		{ScopeChoice, "logprobs", FieldBaseOnly},
		{ScopeChoice, "content_filter_results", FieldExtensionOnly},
		{ScopeChoice, "prompt_filter_results", FieldUnknown},
		{ScopeChoice, "trace_id", FieldUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyField(tc.scope, tc.name); got != tc.want {
			t.Fatalf("ClassifyField(%v, %q) = %v, want %v", tc.scope, tc.name, got, tc.want)
		}
	}
}
