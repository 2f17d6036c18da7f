// Package sidecar stores the header labels of the last ingestion next to the
// game database.
//
// Labels are kept as a small JSON document, {"headers": [...]}, either in a
// file or under a Redis key. Loading never fails the caller: a missing or
// unreadable document yields no labels and is logged.
package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type document struct {
	Headers []string `json:"headers"`
}

func encode(labels []string) ([]byte, error) {
	if labels == nil {
		labels = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{Headers: labels}); err != nil {
		return nil, fmt.Errorf("encode headers: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decode accepts only an object whose headers member is an array. Non-string
// entries are kept as their JSON text.
func decode(data []byte) ([]string, error) {
	var doc struct {
		Headers []json.RawMessage `json:"headers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode headers: %w", err)
	}
	if doc.Headers == nil {
		return nil, fmt.Errorf("decode headers: missing headers array")
	}

	labels := make([]string, len(doc.Headers))
	for i, raw := range doc.Headers {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(bytes.TrimSpace(raw))
		}
		labels[i] = s
	}
	return labels, nil
}
