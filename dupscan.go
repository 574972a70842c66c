package azchat

import (
	"io"

	eng "github.com/reoring/azchat/internal/engine"
	"github.com/reoring/azchat/i18n"
)

// Standalone duplicate-key scanning. Useful for checking stored
// documents without running a full decode; the decoder itself already
// rejects duplicates.

// DetectDuplicateKeysBytes scans a JSON byte slice and reports every
// duplicated object key. maxIssues < 0 means unlimited; 0 disables
// collection; > 0 caps the list and appends a truncated marker.
func DetectDuplicateKeysBytes(data []byte, maxIssues int) (Issues, error) {
	return detectDuplicateKeys(JSONBytes(data), maxIssues)
}

// DetectDuplicateKeysReader scans a JSON stream from r. The reader is
// consumed fully.
func DetectDuplicateKeysReader(r io.Reader, maxIssues int) (Issues, error) {
	return detectDuplicateKeys(JSONReader(r), maxIssues)
}

func detectDuplicateKeys(src Source, maxIssues int) (Issues, error) {
	var iss Issues
	full := false
	sink := func(si eng.SimpleIssue) {
		if maxIssues == 0 || full {
			return
		}
		iss = AppendIssues(iss, Issue{Code: si.Code, Path: si.Path, Message: si.Message, Offset: -1})
		if maxIssues > 0 && len(iss) >= maxIssues {
			iss = AppendIssues(iss, Issue{Code: CodeTruncated, Path: "/", Message: i18n.T(CodeTruncated, nil), Offset: -1})
			full = true
		}
	}
	es := eng.WrapWithEnforcement(EngineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink:   sink,
	})
	for {
		_, err := es.NextToken()
		if err == io.EOF {
			return iss, nil
		}
		if err != nil {
			iss = AppendIssues(iss, Issue{Code: CodeParseError, Path: "/", Message: i18n.T(CodeParseError, nil), Cause: err, Offset: -1})
			return iss, nil
		}
	}
}
