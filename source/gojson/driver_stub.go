//go:build !gojson

package gojson

import (
	"io"

	azchat "github.com/reoring/azchat"
	jsonsrc "github.com/reoring/azchat/source/json"
)

// Driver returns a stub driver when the gojson tag is not enabled.
// It delegates to the encoding/json-based source directly to avoid recursion.
func Driver() azchat.JSONDriver { return stub{} }

type stub struct{}

func (stub) NewReader(r io.Reader) azchat.Source {
	return azchat.SourceFromEngine(jsonsrc.NewReader(r))
}
func (stub) NewBytes(b []byte) azchat.Source {
	return azchat.SourceFromEngine(jsonsrc.NewBytes(b))
}
func (stub) Name() string { return "encoding/json (gojson stub)" }
