package unpoly

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderLookup reads one request header. It returns the raw value and
// whether the header was present on the request.
type HeaderLookup func(name string) (string, bool)

var jsonNull = json.RawMessage("null")

// requestState is the immutable snapshot of the X-Up request headers,
// parsed once when the Unpoly instance is created and never mutated.
type requestState struct {
	version    string
	hasVersion bool

	// nil when the header was absent. A context header with malformed
	// JSON degrades to a JSON null instead of failing, so the header
	// still counts as present.
	context     json.RawMessage
	failContext json.RawMessage

	mode     LayerMode
	failMode LayerMode

	target        string
	hasTarget     bool
	failTarget    string
	hasFailTarget bool

	validate []string
}

func parseRequestState(lookup HeaderLookup) requestState {
	var rs requestState
	rs.version, rs.hasVersion = lookup(HeaderVersion)
	rs.target, rs.hasTarget = lookup(HeaderTarget)
	rs.failTarget, rs.hasFailTarget = lookup(HeaderFailTarget)
	rs.context = parseContextHeader(lookup, HeaderContext)
	rs.failContext = parseContextHeader(lookup, HeaderFailContext)
	rs.mode = parseModeHeader(lookup, HeaderMode)
	rs.failMode = parseModeHeader(lookup, HeaderFailMode)
	rs.validate = parseValidateHeader(lookup, HeaderValidate)
	return rs
}

// parseContextHeader compacts a JSON-valued header, leaving the raw bytes
// otherwise untouched so numbers survive exactly as sent. Malformed JSON
// degrades to a JSON null rather than an error.
func parseContextHeader(lookup HeaderLookup, name string) json.RawMessage {
	raw, ok := lookup(name)
	if !ok {
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(raw)); err != nil {
		return jsonNull
	}
	return compact.Bytes()
}

func parseModeHeader(lookup HeaderLookup, name string) LayerMode {
	raw, ok := lookup(name)
	if !ok {
		return ModeRoot
	}
	return ParseLayerMode(raw)
}

// parseValidateHeader splits the header on whitespace, dropping empty
// tokens. An absent header yields an empty list.
func parseValidateHeader(lookup HeaderLookup, name string) []string {
	raw, ok := lookup(name)
	if !ok {
		return nil
	}
	return strings.Fields(raw)
}

// New builds an Unpoly instance for a single request, reading the X-Up
// request headers through the given lookup.
func New(lookup HeaderLookup) *Unpoly {
	return &Unpoly{req: parseRequestState(lookup)}
}

// FromRequest builds an Unpoly instance from the request's X-Up headers.
func FromRequest(r *http.Request) *Unpoly {
	return New(func(name string) (string, bool) {
		values := r.Header.Values(name)
		if len(values) == 0 {
			return "", false
		}
		return values[0], true
	})
}
