package azchat

import (
	"context"
	"io"

	eng "github.com/reoring/azchat/internal/engine"
	"github.com/reoring/azchat/i18n"
)

// Streaming-field variant: one field-by-field pass over the token
// stream. No full generic tree is materialized; each classified field
// feeds its own accumulator, and only the subtree of the field under
// inspection is ever held in memory. Duplicate keys are rejected as
// they are seen by the token enforcement layer, before any value is
// built. The observable contract is identical to the value-first walk:
// both routes share the converters and the accumulators.
func decodeStreamWithMeta(_ context.Context, src Source, opt DecodeOpt) (Decoded[ChatCompletion], error) {
	var zero Decoded[ChatCompletion]
	es := eng.WrapWithEnforcement(EngineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: eng.DupError,
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	})
	acc := newTopAccumulator(opt)

	tok, err := es.NextToken()
	if err != nil {
		return zero, streamIssues(err)
	}
	if tok.Kind != eng.KindBeginObject {
		return zero, Issues{typeIssue("/", "object")}
	}

	for {
		kt, err := es.NextToken()
		if err != nil {
			return zero, streamIssues(err)
		}
		if kt.Kind == eng.KindEndObject {
			break
		}
		if kt.Kind != eng.KindKey {
			return zero, Issues{issueAt("/", CodeParseError, "")}
		}
		key := kt.String

		vt, err := es.NextToken()
		if err != nil {
			return zero, streamIssues(err)
		}
		if key == "choices" && vt.Kind == eng.KindBeginArray {
			if err := streamChoices(acc, es); err != nil {
				return zero, streamIssues(err)
			}
		} else {
			v, err := eng.DecodeValue(es, vt)
			if err != nil {
				return zero, streamIssues(err)
			}
			acc.field(key, v)
		}
		if opt.FailFast && len(acc.iss) > 0 {
			break
		}
	}
	return acc.finish()
}

// streamChoices walks the choices array element-by-element, and each
// element field-by-field: choice objects mix base and extension fields
// at the same nesting level, so classification has to happen inside
// the element rather than on the array as a whole.
func streamChoices(a *topAccumulator, es eng.TokenSource) error {
	a.seen["choices"] = struct{}{}
	a.pm.mark("/choices", PresenceSeen)
	a.rec.Choices = make([]ChatChoice, 0, 1)
	a.extSlots = make([]*ChoiceFilterOutcome, 0, 1)

	for i := 0; ; i++ {
		et, err := es.NextToken()
		if err != nil {
			return err
		}
		if et.Kind == eng.KindEndArray {
			return nil
		}
		path := "/choices/" + itoa(i)
		if et.Kind != eng.KindBeginObject {
			// Consume the element to stay aligned with the stream.
			if _, err := eng.DecodeValue(es, et); err != nil {
				return err
			}
			a.iss = AppendIssues(a.iss, typeIssue(path, "object"))
			a.rec.Choices = append(a.rec.Choices, ChatChoice{})
			a.extSlots = append(a.extSlots, nil)
			continue
		}

		c := choiceAccumulator{top: a, path: path, seen: make(map[string]struct{}, 6)}
		for {
			kt, err := es.NextToken()
			if err != nil {
				return err
			}
			if kt.Kind == eng.KindEndObject {
				break
			}
			if kt.Kind != eng.KindKey {
				return io.ErrUnexpectedEOF
			}
			vt, err := es.NextToken()
			if err != nil {
				return err
			}
			v, err := eng.DecodeValue(es, vt)
			if err != nil {
				return err
			}
			c.field(kt.String, v)
			if a.opt.FailFast && len(a.iss) > 0 {
				break
			}
		}
		c.finish()
		if a.opt.FailFast && len(a.iss) > 0 {
			return nil
		}
	}
}

func streamIssues(err error) Issues {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return Issues{Issue{Code: CodeParseError, Path: "/", Message: i18n.T(CodeParseError, nil), Cause: err, Offset: -1}}
	}
	return toIssues(err)
}
