package azchat

import "testing"

func TestZipChoices_NoBundle(t *testing.T) {
	base := []ChatChoice{{Index: 0}, {Index: 1}}
	merged, err := ZipChoices(base, nil, false)
	if err != nil {
		t.Fatalf("absent bundle must not be an error: %v", err)
	}
	for i := range merged {
		if merged[i].ContentFilterResults != nil {
			t.Fatalf("choice %d: slot should be unset", i)
		}
	}
}

func TestZipChoices_LengthMismatch(t *testing.T) {
	base := []ChatChoice{{Index: 0}, {Index: 1}}
	ext := []*ChoiceFilterOutcome{{}}
	_, err := ZipChoices(base, ext, true)
	if !HasCode(err, CodeCardinalityMismatch) {
		t.Fatalf("expected cardinality_mismatch, got %v", err)
	}
	iss, _ := AsIssues(err)
	if iss[0].Path != "/choices" {
		t.Fatalf("expected path /choices, got %q", iss[0].Path)
	}
	if iss[0].Params["base_len"] != 2 || iss[0].Params["extension_len"] != 1 {
		t.Fatalf("expected lengths 2 and 1 in params, got %v", iss[0].Params)
	}
}

func TestZipChoices_Positional(t *testing.T) {
	base := []ChatChoice{{Index: 0}, {Index: 1}, {Index: 2}}
	safe := SeveritySafe
	ext := []*ChoiceFilterOutcome{
		nil,
		{Results: &ChoiceFilterResults{Hate: &SeverityResult{Filtered: false, Severity: &safe}}},
		{Err: &FilterError{Code: "500", Message: "boom"}},
	}
	merged, err := ZipChoices(base, ext, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if merged[0].ContentFilterResults != nil {
		t.Fatalf("choice 0 should stay unset")
	}
	if merged[1].ContentFilterResults == nil || merged[1].ContentFilterResults.Results.Hate == nil {
		t.Fatalf("choice 1 should carry the hate report")
	}
	if merged[2].ContentFilterResults == nil || merged[2].ContentFilterResults.Err == nil {
		t.Fatalf("choice 2 should carry the error")
	}
}
