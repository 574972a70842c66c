package azchat

import "github.com/reoring/azchat/i18n"

// ZipChoices pairs base choices with their extension slots by position.
// Position is the only correspondence the wire provides (there is no
// shared key), so it is validated rather than assumed:
//
//   - bundlePresent false: the document carried no extension bundle at
//     all; every slot stays unset and that is not an error.
//   - bundlePresent true with len(ext) != len(base): the parallel
//     collections disagree and the decode fails with a
//     cardinality_mismatch carrying both lengths.
//   - otherwise merged[i] = base[i] plus ext[i].
//
// The base slice is modified in place and returned.
func ZipChoices(base []ChatChoice, ext []*ChoiceFilterOutcome, bundlePresent bool) ([]ChatChoice, error) {
	if !bundlePresent {
		for i := range base {
			base[i].ContentFilterResults = nil
		}
		return base, nil
	}
	if len(ext) != len(base) {
		return nil, Issues{Issue{
			Path:    "/choices",
			Code:    CodeCardinalityMismatch,
			Message: i18n.T(CodeCardinalityMismatch, nil),
			Offset:  -1,
			Params:  map[string]any{"base_len": len(base), "extension_len": len(ext)},
		}}
	}
	for i := range base {
		base[i].ContentFilterResults = ext[i]
	}
	return base, nil
}
