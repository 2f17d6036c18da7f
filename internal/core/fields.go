package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single key/value pair of a Fields mapping.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered string mapping. Iteration and JSON encoding follow
// insertion order; setting an existing key replaces its value in place.
type Fields struct {
	entries []Field
	index   map[string]int
}

// NewFields returns an empty mapping with room for n entries.
func NewFields(n int) *Fields {
	return &Fields{
		entries: make([]Field, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set stores value under key.
func (f *Fields) Set(key, value string) {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if i, ok := f.index[key]; ok {
		f.entries[i].Value = value
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	i, ok := f.index[key]
	if !ok {
		return "", false
	}
	return f.entries[i].Value, true
}

// Len returns the number of entries.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, len(f.entries))
	for i, e := range f.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (f *Fields) Entries() []Field {
	if f == nil {
		return nil
	}
	out := make([]Field, len(f.entries))
	copy(out, f.entries)
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if f != nil {
		for i, e := range f.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(&buf, e.Key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONString(&buf, e.Value); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the order of its members.
// Non-string scalar values are kept as their JSON text.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = Fields{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields: expected object, got %v", tok)
	}

	out := NewFields(8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fields: expected string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case string:
			out.Set(key, v)
		case json.Number:
			out.Set(key, v.String())
		case bool:
			out.Set(key, fmt.Sprint(v))
		case nil:
			out.Set(key, "")
		default:
			return fmt.Errorf("fields: unsupported value for %q", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = *out
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
