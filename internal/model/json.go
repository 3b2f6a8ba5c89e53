package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is an arbitrary key/value settings document stored as JSON text.
type Document map[string]any

func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func (d *Document) Scan(src any) error {
	raw, err := rawJSON(src)
	if err != nil {
		return err
	}
	doc := Document{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
	}
	*d = doc
	return nil
}

// Clone returns a deep copy so a snapshot never shares maps with live data.
func (d Document) Clone() Document {
	out := Document{}
	if len(d) == 0 {
		return out
	}
	raw, err := json.Marshal(d)
	if err != nil {
		for k, v := range d {
			out[k] = v
		}
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// TaskSnapshots is the ordered task list of a backup stored as JSON text.
type TaskSnapshots []TaskSnapshot

func (s TaskSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return string(raw), nil
}

func (s *TaskSnapshots) Scan(src any) error {
	raw, err := rawJSON(src)
	if err != nil {
		return err
	}
	out := TaskSnapshots{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decode tasks: %w", err)
		}
	}
	*s = out
	return nil
}

func rawJSON(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", src)
	}
}
