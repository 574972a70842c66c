package source

import (
	azchat "github.com/reoring/azchat"
	drvgojson "github.com/reoring/azchat/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { azchat.SetJSONDriver(drvgojson.Driver()) }
