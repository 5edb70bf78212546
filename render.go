package unpoly

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Headers renders the accumulated X-Up response headers, plus a Vary
// header naming every request header that influenced the response.
//
// Call it after the handler is done reading request values: the accessors
// are what populate the Vary set. Absent fields contribute no header at
// all, never an empty one.
func (up *Unpoly) Headers() (http.Header, error) {
	headers := make(http.Header)
	if up.responseTitle != "" {
		headers.Set(HeaderTitle, up.responseTitle)
	}
	if up.responseLocation != "" {
		headers.Set(HeaderLocation, up.responseLocation)
	}
	switch up.layer.kind {
	case layerResultAccept:
		headers.Set(HeaderAcceptLayer, string(up.layer.value))
	case layerResultDismiss:
		headers.Set(HeaderDismissLayer, string(up.layer.value))
	}
	if up.responseContext != nil {
		headers.Set(HeaderContext, string(up.responseContext))
	}
	if up.hasResponseTarget && up.responseTarget != "" {
		headers.Set(HeaderTarget, up.responseTarget)
	}
	if up.responseMethod != "" {
		headers.Set(HeaderMethod, up.responseMethod)
	}
	if up.responseEvictCache != "" {
		headers.Set(HeaderEvictCache, up.responseEvictCache)
	}
	if up.responseExpireCache != "" {
		headers.Set(HeaderExpireCache, up.responseExpireCache)
	}
	if len(up.events) > 0 {
		events, err := json.Marshal(up.events)
		if err != nil {
			return nil, fmt.Errorf("encoding events: %w", err)
		}
		headers.Set(HeaderEvents, string(events))
	}
	if len(up.vary) > 0 {
		headers.Set(HeaderVary, up.vary.header())
	}
	return headers, nil
}
