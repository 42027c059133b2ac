package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Spec is one key of the key-specification tree.
// Children is non-nil for a nested mapping; otherwise Value holds a leaf:
// string, json.Number, bool, nil, or []any whose elements follow the same rules
// (a mapping inside a list is a Specs).
type Spec struct {
	Key      string
	Value    any
	Children Specs
}

// IsMapping reports whether the spec holds a nested mapping.
func (s Spec) IsMapping() bool { return s.Children != nil }

// Specs is an ordered key-specification tree. JSON key order is preserved.
type Specs []Spec

// MarshalJSON encodes the tree as a JSON object in stored key order.
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sp := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sp.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal spec key: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if sp.IsMapping() {
			val, err = sp.Children.MarshalJSON()
		} else {
			val, err = json.Marshal(sp.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("marshal spec %q: %w", sp.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object (or null) keeping key order.
func (s *Specs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode specifications: %w", err)
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("decode specifications: expected object")
	}
	out, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("decode specifications: %w", err)
	}
	*s = out
	return nil
}

// decodeObject reads key/value pairs after the opening brace, consuming the closing one.
func decodeObject(dec *json.Decoder) (Specs, error) {
	out := Specs{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		val, children, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, Spec{Key: key, Value: val, Children: children})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, Specs, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			children, err := decodeObject(dec)
			return nil, children, err
		case '[':
			list, err := decodeArray(dec)
			return list, nil, err
		default:
			return nil, nil, fmt.Errorf("unexpected delimiter %v", v)
		}
	default:
		return v, nil, nil
	}
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	list := []any{}
	for dec.More() {
		val, children, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if children != nil {
			list = append(list, children)
			continue
		}
		list = append(list, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return list, nil
}
