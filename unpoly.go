// Package unpoly implements the server side of the Unpoly frontend
// protocol: it reads the X-Up request headers sent by the Unpoly client,
// lets handlers branch on them, and accumulates the X-Up response headers
// together with a Vary header for correct caching of fragment responses.
//
// See https://unpoly.com/up.protocol
package unpoly

import (
	"encoding/json"
	"fmt"
)

type layerResultKind int

const (
	layerResultNone layerResultKind = iota
	layerResultAccept
	layerResultDismiss
)

// layerResult holds the accept-layer or dismiss-layer response value.
// A single slot keeps the two mutually exclusive: setting one replaces
// the other.
type layerResult struct {
	kind  layerResultKind
	value json.RawMessage
}

// Unpoly processes the X-Up headers of a single request.
//
// Reading a request-derived value through one of the accessors records the
// header's name for the Vary response header, so caches know the response
// depends on it. Which headers end up in Vary therefore depends on which
// accessors the handler actually calls.
//
// Several accessors resolve differently once SetSuccess has been called:
// Mode, Context and Target switch to the X-Up-Fail-* request headers when
// handling a failure case. The success state is consulted on every read,
// never captured.
//
// An instance belongs to exactly one request and is not safe for
// concurrent use. Create it with New or FromRequest, call accessors and
// setters while handling the request, then render with Headers.
type Unpoly struct {
	req requestState

	success      bool
	successKnown bool

	responseContext     json.RawMessage
	responseTarget      string
	hasResponseTarget   bool
	responseTitle       string
	responseLocation    string
	responseMethod      string
	responseEvictCache  string
	responseExpireCache string
	layer               layerResult
	events              []json.RawMessage

	vary varySet
}

// IsUp reports whether the request was made by the Unpoly frontend,
// signalled by the X-Up-Version header.
func (up *Unpoly) IsUp() bool {
	if up.req.hasVersion {
		up.addVary(HeaderVersion)
		return true
	}
	return false
}

// Success returns the current success state. known is false until
// SetSuccess has been called.
func (up *Unpoly) Success() (success, known bool) {
	return up.success, up.successKnown
}

// SetSuccess marks the request as handled successfully or not. It also
// pre-sets the response target from the X-Up-Target (success) or
// X-Up-Fail-Target (failure) request header, and switches Mode and
// Context to the fail variants for a failure.
func (up *Unpoly) SetSuccess(success bool) {
	up.success = success
	up.successKnown = true
	if success {
		up.addVary(HeaderTarget)
		up.responseTarget, up.hasResponseTarget = up.req.target, up.req.hasTarget
	} else {
		up.addVary(HeaderFailTarget)
		up.responseTarget, up.hasResponseTarget = up.req.failTarget, up.req.hasFailTarget
	}
}

// Mode returns the mode of the layer the request targets. It returns the
// X-Up-Fail-Mode value when handling a failure case, the X-Up-Mode value
// otherwise.
func (up *Unpoly) Mode() LayerMode {
	if up.successKnown && !up.success {
		up.addVary(HeaderFailMode)
		return up.req.failMode
	}
	up.addVary(HeaderMode)
	return up.req.mode
}

// Context returns the layer context: the override set via SetContext when
// present, otherwise the X-Up-Context (or, for a failure case,
// X-Up-Fail-Context) request header.
func (up *Unpoly) Context() (json.RawMessage, bool) {
	if up.responseContext != nil {
		return up.responseContext, true
	}
	if up.successKnown && !up.success {
		if up.req.failContext != nil && up.IsUp() {
			up.addVary(HeaderFailContext)
		}
		return up.req.failContext, up.req.failContext != nil
	}
	if up.req.context != nil && up.IsUp() {
		up.addVary(HeaderContext)
	}
	return up.req.context, up.req.context != nil
}

// SetContext sets the X-Up-Context response header, overriding the
// request context for both Context and the rendered headers.
func (up *Unpoly) SetContext(value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	up.responseContext = encoded
	return nil
}

// Target returns the CSS selector for the fragment the response should
// update: the response target when set (via SetTarget or SetSuccess),
// otherwise the X-Up-Target (or, for a failure case, X-Up-Fail-Target)
// request header.
func (up *Unpoly) Target() (string, bool) {
	if up.hasResponseTarget {
		return up.responseTarget, true
	}
	if up.successKnown && !up.success {
		up.addVary(HeaderFailTarget)
		return up.req.failTarget, up.req.hasFailTarget
	}
	up.addVary(HeaderTarget)
	return up.req.target, up.req.hasTarget
}

// SetTarget sets the X-Up-Target response header, changing the fragment
// the frontend will update.
func (up *Unpoly) SetTarget(target string) {
	up.responseTarget = target
	up.hasResponseTarget = true
}

// Validate returns the names of the form fields being validated, from the
// X-Up-Validate request header. An empty list means the request is not a
// validation probe.
//
// See https://unpoly.com/up-validate
func (up *Unpoly) Validate() []string {
	if len(up.req.validate) > 0 && up.IsUp() {
		up.addVary(HeaderValidate)
	}
	return up.req.validate
}

// Title returns the response title override, or "" when unset.
func (up *Unpoly) Title() string {
	return up.responseTitle
}

// SetTitle sets the document title the frontend applies after the
// fragment update.
func (up *Unpoly) SetTitle(title string) {
	up.responseTitle = title
}

// Location returns the response location override, or "" when unset.
func (up *Unpoly) Location() string {
	return up.responseLocation
}

// SetLocation sets the URL the frontend shows in the address bar.
func (up *Unpoly) SetLocation(location string) {
	up.responseLocation = location
}

// Method returns the response method override, or "" when unset.
func (up *Unpoly) Method() string {
	return up.responseMethod
}

// SetMethod sets the request method the frontend associates with the
// response's location.
func (up *Unpoly) SetMethod(method string) {
	up.responseMethod = method
}

// AcceptLayer tells the frontend to accept (close with result) the
// overlay that made the request, passing the given value to the layer's
// onAccepted callback. Any pending dismissal is replaced.
func (up *Unpoly) AcceptLayer(value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding accept-layer value: %w", err)
	}
	up.layer = layerResult{kind: layerResultAccept, value: encoded}
	return nil
}

// AcceptLayerWithoutValue accepts the overlay with a JSON null result.
func (up *Unpoly) AcceptLayerWithoutValue() error {
	return up.AcceptLayer(nil)
}

// DismissLayer tells the frontend to dismiss the overlay that made the
// request, passing the given value to the layer's onDismissed callback.
// Any pending acceptance is replaced.
func (up *Unpoly) DismissLayer(value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding dismiss-layer value: %w", err)
	}
	up.layer = layerResult{kind: layerResultDismiss, value: encoded}
	return nil
}

// DismissLayerWithoutValue dismisses the overlay with a JSON null result.
func (up *Unpoly) DismissLayerWithoutValue() error {
	return up.DismissLayer(nil)
}

// EmitEvent queues a frontend event of the given type. The payload must
// encode to a JSON object; the type is appended to it under the "type"
// key. Events are delivered in the order they were emitted.
func (up *Unpoly) EmitEvent(eventType string, payload any) error {
	event, err := encodeEvent(eventType, payload, nil)
	if err != nil {
		return err
	}
	up.events = append(up.events, event)
	return nil
}

// EmitEventLayer is EmitEvent scoped to the given layer, which is
// appended to the payload under the "layer" key.
func (up *Unpoly) EmitEventLayer(eventType string, payload any, layer MatchingLayer) error {
	event, err := encodeEvent(eventType, payload, &layer)
	if err != nil {
		return err
	}
	up.events = append(up.events, event)
	return nil
}

// SetEvictCache tells the frontend to remove cache entries matching the
// given URL pattern.
func (up *Unpoly) SetEvictCache(pattern string) {
	up.responseEvictCache = pattern
}

// SetExpireCache tells the frontend to mark cache entries matching the
// given URL pattern as stale.
func (up *Unpoly) SetExpireCache(pattern string) {
	up.responseExpireCache = pattern
}
