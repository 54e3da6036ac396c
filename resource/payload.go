package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// Payload is a JSON object: unique string keys mapped to arbitrary JSON
// values. Key order is kept for display only; Equal ignores it.
//
// Numbers decode as json.Number so they re-encode exactly as received.
// Nested objects and arrays decode to map[string]any and []any.
type Payload struct {
	keys   []string
	values map[string]any
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{values: make(map[string]any)}
}

// PayloadFromMap builds a payload from m. Keys are taken in the map's
// iteration order, which Go leaves unspecified.
func PayloadFromMap(m map[string]any) *Payload {
	p := NewPayload()
	for k, v := range m {
		p.Set(k, v)
	}
	return p
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position.
func (p *Payload) Set(key string, value any) *Payload {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value stored under key.
func (p *Payload) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key.
func (p *Payload) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *Payload) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of keys.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Map returns a shallow copy of the key/value pairs.
func (p *Payload) Map() map[string]any {
	out := make(map[string]any, p.Len())
	if p == nil {
		return out
	}
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clone returns a copy with its own key order and value map. Nested
// values are shared.
func (p *Payload) Clone() *Payload {
	out := NewPayload()
	for _, k := range p.Keys() {
		out.Set(k, p.values[k])
	}
	return out
}

// Equal reports whether p and other hold the same keys and deeply equal
// values, regardless of key order.
func (p *Payload) Equal(other *Payload) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.values) != len(other.values) {
		return false
	}
	for k, v := range p.values {
		ov, ok := other.values[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the payload as a JSON object in key order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("payload key %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order. Anything
// other than an object, including null, is rejected. A repeated key keeps
// its first position and its last value.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("payload: expected a JSON object, got %s", describeToken(tok))
	}

	out := Payload{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("payload: expected an object key, got %s", describeToken(tok))
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("payload key %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("payload: unexpected data after object")
	}

	*p = out
	return nil
}

// String renders the payload as compact JSON in key order.
func (p *Payload) String() string {
	if p == nil {
		return "<nil>"
	}
	data, err := p.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", p.values)
	}
	return string(data)
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return fmt.Sprintf("%q", v.String())
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
