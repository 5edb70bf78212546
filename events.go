package unpoly

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// encodeEvent marshals an event payload and appends the synthetic "layer"
// and "type" keys after the payload's own keys. The payload must encode to
// a JSON object.
//
// The payload's members are copied from the encoded bytes, so their order
// is preserved. A payload key that one of the synthetic keys would
// duplicate is dropped: the synthetic value replaces it.
func encodeEvent(eventType string, payload any, layer *MatchingLayer) (json.RawMessage, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %q event payload: %w", eventType, err)
	}
	obj := bytes.TrimSpace(encoded)
	if len(obj) < 2 || obj[0] != '{' || obj[len(obj)-1] != '}' {
		return nil, ErrEventNotObject
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	empty := true
	appendMember := func(key string, value []byte) {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		// a JSON object key decoded into a string always re-encodes
		encodedKey, _ := json.Marshal(key)
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(value)
	}

	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading %q event payload: %w", eventType, err)
	}
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading %q event payload: %w", eventType, err)
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, ErrEventNotObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading %q event payload: %w", eventType, err)
		}
		if key == "type" || (layer != nil && key == "layer") {
			continue
		}
		appendMember(key, value)
	}

	if layer != nil {
		layerValue, err := layer.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %q event layer: %w", eventType, err)
		}
		appendMember("layer", layerValue)
	}
	typeValue, err := json.Marshal(eventType)
	if err != nil {
		return nil, fmt.Errorf("encoding %q event type: %w", eventType, err)
	}
	appendMember("type", typeValue)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
