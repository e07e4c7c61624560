package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is one collected value.
type Answer struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Record is the ordered mapping of field name to answer text.
// It serializes as a JSON object whose keys keep catalog order.
type Record []Answer

// Get returns the answer stored under name.
func (r Record) Get(name string) (string, bool) {
	for _, a := range r {
		if a.Field == name {
			return a.Value, true
		}
	}
	return "", false
}

// Len returns the number of answers.
func (r Record) Len() int {
	return len(r)
}

// Clone returns a copy that shares nothing with r.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Map returns the answers as a plain map. Order is lost.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, a := range r {
		m[a.Field] = a.Value
	}
	return m
}

// MarshalJSON encodes the record as an object, preserving order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the input.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	out := Record{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected string key, got %v", keyTok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		out = append(out, Answer{Field: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
