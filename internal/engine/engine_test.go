package engine_test

import (
	"encoding/json"
	"io"
	"testing"

	eng "github.com/reoring/azchat/internal/engine"
	jsonsrc "github.com/reoring/azchat/source/json"
)

func decodeTree(t *testing.T, doc string) any {
	t.Helper()
	v, err := eng.DecodeValueFromSource(jsonsrc.NewBytes([]byte(doc)))
	if err != nil {
		t.Fatalf("decode %q: %v", doc, err)
	}
	return v
}

func TestDecodeValue_ObjectKeepsMemberOrder(t *testing.T) {
	obj := decodeTree(t, `{"b":1,"a":2,"c":3}`).(*eng.Object)
	keys := make([]string, 0, obj.Len())
	for _, m := range obj.Members {
		keys = append(keys, m.Key)
	}
	if len(keys) != 3 || keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Fatalf("member order not preserved: %v", keys)
	}
}

func TestDecodeValue_Scalars(t *testing.T) {
	obj := decodeTree(t, `{"s":"x","n":1.5,"i":7,"b":true,"z":null,"a":[1,"y"]}`).(*eng.Object)
	if v, _ := obj.Get("s"); v != "x" {
		t.Fatalf("string: %v", v)
	}
	if v, _ := obj.Get("n"); v != json.Number("1.5") {
		t.Fatalf("number: %v", v)
	}
	if v, _ := obj.Get("i"); v != json.Number("7") {
		t.Fatalf("integer stays textual: %v", v)
	}
	if v, _ := obj.Get("b"); v != true {
		t.Fatalf("bool: %v", v)
	}
	if v, ok := obj.Get("z"); !ok || v != nil {
		t.Fatalf("null must be present-with-nil: %v %v", v, ok)
	}
	arr, _ := obj.Get("a")
	if a := arr.([]any); len(a) != 2 || a[0] != json.Number("1") || a[1] != "y" {
		t.Fatalf("array: %v", arr)
	}
}

func TestEnforcement_DuplicateKeyPath(t *testing.T) {
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(`{"choices":[{"x":1,"x":2}]}`)), eng.EnforceOptions{OnDuplicate: eng.DupError})
	_, err := eng.DecodeValueFromSource(src)
	var ie eng.IssueError
	if !asIssueError(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "duplicate_key" || ie.Path != "/choices/0/x" {
		t.Fatalf("issue wrong: %+v", ie)
	}
}

func TestEnforcement_DupWarnCollects(t *testing.T) {
	var got []eng.SimpleIssue
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(`{"x":1,"x":2}`)), eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink:   func(si eng.SimpleIssue) { got = append(got, si) },
	})
	if _, err := eng.DecodeValueFromSource(src); err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/x" {
		t.Fatalf("collected issues wrong: %v", got)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(`{"a":{"b":{"c":{}}}}`)), eng.EnforceOptions{MaxDepth: 2})
	_, err := eng.DecodeValueFromSource(src)
	var ie eng.IssueError
	if !asIssueError(err, &ie) || ie.Code != "parse_error" {
		t.Fatalf("expected depth failure, got %v", err)
	}
}

func TestEnforcement_MaxBytes(t *testing.T) {
	doc := `{"pad":"0123456789012345678901234567890123456789"}`
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(doc)), eng.EnforceOptions{MaxBytes: 8})
	_, err := eng.DecodeValueFromSource(src)
	var ie eng.IssueError
	if !asIssueError(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("expected truncation, got %v", err)
	}
}

func TestEnforcement_EscapedPointerTokens(t *testing.T) {
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(`{"a/b":1,"a/b":2}`)), eng.EnforceOptions{OnDuplicate: eng.DupError})
	_, err := eng.DecodeValueFromSource(src)
	var ie eng.IssueError
	if !asIssueError(err, &ie) || ie.Path != "/a~1b" {
		t.Fatalf("expected escaped pointer /a~1b, got %v", err)
	}
}

func TestAppendJSON_RoundTrip(t *testing.T) {
	docs := []string{
		`{"b":1,"a":"x","c":[true,null,{"k":1.5}],"d":{}}`,
		`{"id":"c1","choices":[{"index":0}]}`,
		`[]`,
		`{"quote":"a\"b","unicode":"é"}`,
	}
	for _, doc := range docs {
		v := decodeTree(t, doc)
		out, err := eng.AppendJSON(nil, v)
		if err != nil {
			t.Fatalf("append %q: %v", doc, err)
		}
		again, err := eng.DecodeValueFromSource(jsonsrc.NewBytes(out))
		if err != nil {
			t.Fatalf("re-decode %q -> %q: %v", doc, out, err)
		}
		if !treeEqual(v, again) {
			t.Fatalf("round trip drifted: %q -> %q", doc, out)
		}
	}
}

func treeEqual(a, b any) bool {
	switch av := a.(type) {
	case *eng.Object:
		bv, ok := b.(*eng.Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i := range av.Members {
			if av.Members[i].Key != bv.Members[i].Key || !treeEqual(av.Members[i].Value, bv.Members[i].Value) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !treeEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func asIssueError(err error, out *eng.IssueError) bool {
	if err == nil {
		return false
	}
	ie, ok := err.(eng.IssueError)
	if !ok {
		return false
	}
	*out = ie
	return true
}

func TestTokenSource_EOFAfterDocument(t *testing.T) {
	src := jsonsrc.NewBytes([]byte(`{}`))
	if tok, err := src.NextToken(); err != nil || tok.Kind != eng.KindBeginObject {
		t.Fatalf("first token: %v %v", tok, err)
	}
	if tok, err := src.NextToken(); err != nil || tok.Kind != eng.KindEndObject {
		t.Fatalf("second token: %v %v", tok, err)
	}
	if _, err := src.NextToken(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}
