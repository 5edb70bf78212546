package unpoly

import "errors"

// ErrEventNotObject is returned by EmitEvent and EmitEventLayer when the
// event payload does not encode to a JSON object.
// Use errors.Is() to check against it.
var ErrEventNotObject = errors.New("event payload does not encode to a JSON object")
