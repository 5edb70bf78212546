package unpoly

import (
	"errors"
	"testing"
)

// fullRequestHeaders is the header set used by the branch tests.
func fullRequestHeaders() map[string]string {
	return map[string]string{
		HeaderVersion:     "1.0.0",
		HeaderContext:     `{"lives": 42}`,
		HeaderFailContext: `{"lives": 2}`,
		HeaderTarget:      "main",
		HeaderFailTarget:  "root",
		HeaderMode:        "root",
		HeaderFailMode:    "cover",
		HeaderValidate:    "name",
	}
}

func TestNoHeadersMeansNoVary(t *testing.T) {
	up := New(lookupFrom(nil))
	if up.IsUp() {
		t.Fatal("request without X-Up-Version recognized as Unpoly")
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if len(headers) != 0 {
		t.Fatalf("headers are %v", headers)
	}
	if _, ok := headers[HeaderVary]; ok {
		t.Fatal("Vary header present")
	}
}

func TestVaryVersionOnly(t *testing.T) {
	up := New(lookupFrom(map[string]string{HeaderVersion: "1.0.0"}))
	if !up.IsUp() {
		t.Fatal("request not recognized as Unpoly")
	}
	up.SetSuccess(true)
	up.Mode()

	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "X-Up-Mode,X-Up-Target,X-Up-Version" {
		t.Fatalf("Vary is %q", vary)
	}

	up = New(lookupFrom(map[string]string{HeaderVersion: "1.0.0"}))
	up.IsUp()
	up.SetSuccess(false)
	up.Mode()

	headers, err = up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "X-Up-Fail-Mode,X-Up-Fail-Target,X-Up-Version" {
		t.Fatalf("Vary is %q", vary)
	}
}

func TestSuccessBranch(t *testing.T) {
	up := New(lookupFrom(fullRequestHeaders()))
	up.SetSuccess(true)
	up.IsUp()

	if ctx, ok := up.Context(); !ok || string(ctx) != `{"lives":42}` {
		t.Fatalf("context is %s (present %v)", ctx, ok)
	}
	if target, ok := up.Target(); !ok || target != "main" {
		t.Fatalf("target is %q (present %v)", target, ok)
	}
	if mode := up.Mode(); mode != ModeRoot {
		t.Fatalf("mode is %q", mode)
	}

	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "X-Up-Context,X-Up-Mode,X-Up-Target,X-Up-Version" {
		t.Fatalf("Vary is %q", vary)
	}
}

func TestFailureBranch(t *testing.T) {
	up := New(lookupFrom(fullRequestHeaders()))
	up.SetSuccess(false)
	up.IsUp()

	if ctx, ok := up.Context(); !ok || string(ctx) != `{"lives":2}` {
		t.Fatalf("context is %s (present %v)", ctx, ok)
	}
	if target, ok := up.Target(); !ok || target != "root" {
		t.Fatalf("target is %q (present %v)", target, ok)
	}
	if mode := up.Mode(); mode != ModeCover {
		t.Fatalf("mode is %q", mode)
	}

	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "X-Up-Fail-Context,X-Up-Fail-Mode,X-Up-Fail-Target,X-Up-Version" {
		t.Fatalf("Vary is %q", vary)
	}
}

func TestVaryIndependentOfAccessorOrder(t *testing.T) {
	first := New(lookupFrom(fullRequestHeaders()))
	first.SetSuccess(true)
	first.Context()
	first.Target()
	first.Mode()

	second := New(lookupFrom(fullRequestHeaders()))
	second.SetSuccess(true)
	second.Mode()
	second.Mode()
	second.Target()
	second.Context()
	second.Context()

	firstHeaders, err := first.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	secondHeaders, err := second.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if firstHeaders.Get(HeaderVary) != secondHeaders.Get(HeaderVary) {
		t.Fatalf("Vary differs: %q vs %q",
			firstHeaders.Get(HeaderVary), secondHeaders.Get(HeaderVary))
	}
}

func TestTargetFollowsSuccess(t *testing.T) {
	headers := map[string]string{
		HeaderTarget:     "main",
		HeaderFailTarget: "root",
	}

	up := New(lookupFrom(headers))
	up.SetSuccess(true)
	if target, _ := up.Target(); target != "main" {
		t.Fatalf("target is %q", target)
	}

	up = New(lookupFrom(headers))
	up.SetSuccess(false)
	if target, _ := up.Target(); target != "root" {
		t.Fatalf("target is %q", target)
	}
}

func TestValidateAddsVaryWhenUp(t *testing.T) {
	up := New(lookupFrom(map[string]string{
		HeaderVersion:  "1.0.0",
		HeaderValidate: "name",
	}))
	if fields := up.Validate(); len(fields) != 1 || fields[0] != "name" {
		t.Fatalf("validate is %v", fields)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "X-Up-Validate,X-Up-Version" {
		t.Fatalf("Vary is %q", vary)
	}
}

func TestSetContextOverridesBranches(t *testing.T) {
	up := New(lookupFrom(fullRequestHeaders()))
	if err := up.SetContext(map[string]int{"lives": 43}); err != nil {
		t.Fatalf("Error: %v", err)
	}

	up.SetSuccess(false)
	if ctx, ok := up.Context(); !ok || string(ctx) != `{"lives":43}` {
		t.Fatalf("context is %s (present %v)", ctx, ok)
	}
	up.SetSuccess(true)
	if ctx, ok := up.Context(); !ok || string(ctx) != `{"lives":43}` {
		t.Fatalf("context is %s (present %v)", ctx, ok)
	}

	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if got := headers.Get(HeaderContext); got != `{"lives":43}` {
		t.Fatalf("context header is %q", got)
	}
}

func TestOverriddenTargetSkipsVary(t *testing.T) {
	up := New(lookupFrom(map[string]string{HeaderTarget: "main"}))
	up.SetTarget(".sidebar")
	if target, ok := up.Target(); !ok || target != ".sidebar" {
		t.Fatalf("target is %q (present %v)", target, ok)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "" {
		t.Fatalf("Vary is %q", vary)
	}
	if got := headers.Get(HeaderTarget); got != ".sidebar" {
		t.Fatalf("target header is %q", got)
	}
}

func TestAcceptDismissAreExclusive(t *testing.T) {
	up := New(lookupFrom(nil))
	if err := up.DismissLayer("bye"); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if err := up.AcceptLayer(map[string]int{"id": 5}); err != nil {
		t.Fatalf("Error: %v", err)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if got := headers.Get(HeaderAcceptLayer); got != `{"id":5}` {
		t.Fatalf("accept-layer header is %q", got)
	}
	if _, ok := headers[HeaderDismissLayer]; ok {
		t.Fatal("dismiss-layer header present after accept")
	}

	if err := up.DismissLayerWithoutValue(); err != nil {
		t.Fatalf("Error: %v", err)
	}
	headers, err = up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if got := headers.Get(HeaderDismissLayer); got != "null" {
		t.Fatalf("dismiss-layer header is %q", got)
	}
	if _, ok := headers[HeaderAcceptLayer]; ok {
		t.Fatal("accept-layer header present after dismiss")
	}
}

func TestEmitEventRejectsNonObject(t *testing.T) {
	up := New(lookupFrom(nil))
	if err := up.EmitEvent("t", 5); !errors.Is(err, ErrEventNotObject) {
		t.Fatalf("Error is %v", err)
	}
	if err := up.EmitEvent("t", "not an object"); !errors.Is(err, ErrEventNotObject) {
		t.Fatalf("Error is %v", err)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if _, ok := headers[HeaderEvents]; ok {
		t.Fatal("events header present after failed emits")
	}
}

func TestEmitEventAppendsType(t *testing.T) {
	up := New(lookupFrom(nil))
	if err := up.EmitEvent("t", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Error: %v", err)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if got := headers.Get(HeaderEvents); got != `[{"a":1,"type":"t"}]` {
		t.Fatalf("events header is %q", got)
	}
}

func TestEmitEventPreservesOrder(t *testing.T) {
	up := New(lookupFrom(nil))
	if err := up.EmitEvent("first", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if err := up.EmitEvent("second", struct{}{}); err != nil {
		t.Fatalf("Error: %v", err)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	want := `[{"a":1,"type":"first"},{"type":"second"}]`
	if got := headers.Get(HeaderEvents); got != want {
		t.Fatalf("events header is %q", got)
	}
}

func TestEmitEventReplacesSyntheticKeys(t *testing.T) {
	up := New(lookupFrom(nil))
	err := up.EmitEvent("t", map[string]any{"a": 1, "type": "shadowed"})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	// a payload "layer" key is only synthetic for layer-scoped emission
	err = up.EmitEvent("t", map[string]any{"layer": 5})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	err = up.EmitEventLayer("t", map[string]any{"layer": 5}, LayerParent)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	want := `[{"a":1,"type":"t"},` +
		`{"layer":5,"type":"t"},` +
		`{"layer":"parent","type":"t"}]`
	if got := headers.Get(HeaderEvents); got != want {
		t.Fatalf("events header is %q", got)
	}
}

func TestEmitEventLayer(t *testing.T) {
	up := New(lookupFrom(nil))
	if err := up.EmitEventLayer("user:created", map[string]int{"id": 152}, LayerCurrent); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if err := up.EmitEventLayer("user:created", map[string]int{"id": 153}, LayerAt(2)); err != nil {
		t.Fatalf("Error: %v", err)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	want := `[{"id":152,"layer":"current","type":"user:created"},` +
		`{"id":153,"layer":2,"type":"user:created"}]`
	if got := headers.Get(HeaderEvents); got != want {
		t.Fatalf("events header is %q", got)
	}
}

func TestResponseSetters(t *testing.T) {
	up := New(lookupFrom(nil))
	up.SetTitle("Hello")
	up.SetLocation("https://unpoly.com/")
	up.SetMethod("PUT")
	up.SetEvictCache("/tasks/*")
	up.SetExpireCache("/tasks")

	if up.Title() != "Hello" || up.Location() != "https://unpoly.com/" || up.Method() != "PUT" {
		t.Fatal("getters do not round-trip")
	}

	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if got := headers.Get(HeaderTitle); got != "Hello" {
		t.Fatalf("title header is %q", got)
	}
	if got := headers.Get(HeaderLocation); got != "https://unpoly.com/" {
		t.Fatalf("location header is %q", got)
	}
	if got := headers.Get(HeaderMethod); got != "PUT" {
		t.Fatalf("method header is %q", got)
	}
	if got := headers.Get(HeaderEvictCache); got != "/tasks/*" {
		t.Fatalf("evict-cache header is %q", got)
	}
	if got := headers.Get(HeaderExpireCache); got != "/tasks" {
		t.Fatalf("expire-cache header is %q", got)
	}
	// setters alone declare no variance
	if _, ok := headers[HeaderVary]; ok {
		t.Fatal("Vary header present")
	}
}

func TestZeroValueCollectsVary(t *testing.T) {
	var up Unpoly
	if up.IsUp() {
		t.Fatal("zero value recognized as Unpoly request")
	}
	up.SetSuccess(true)
	up.Mode()
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if vary := headers.Get(HeaderVary); vary != "X-Up-Mode,X-Up-Target" {
		t.Fatalf("Vary is %q", vary)
	}
}

func TestSuccessTriState(t *testing.T) {
	up := New(lookupFrom(nil))
	if _, known := up.Success(); known {
		t.Fatal("success known before SetSuccess")
	}
	up.SetSuccess(false)
	if success, known := up.Success(); !known || success {
		t.Fatalf("success is %v (known %v)", success, known)
	}
	up.SetSuccess(true)
	if success, known := up.Success(); !known || !success {
		t.Fatalf("success is %v (known %v)", success, known)
	}
}

func TestContextVaryNeedsVersion(t *testing.T) {
	// without X-Up-Version, reading the context must not declare variance
	up := New(lookupFrom(map[string]string{HeaderContext: `{"a":1}`}))
	if ctx, ok := up.Context(); !ok || string(ctx) != `{"a":1}` {
		t.Fatalf("context is %s (present %v)", ctx, ok)
	}
	headers, err := up.Headers()
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if _, ok := headers[HeaderVary]; ok {
		t.Fatal("Vary header present")
	}
}
