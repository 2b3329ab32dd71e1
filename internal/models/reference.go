package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reference points at an entity either by bare ID (unresolved) or with an
// embedded snapshot (resolved). On the wire it is a JSON string or an object.
type Reference[T any] struct {
	id    string
	value *T
}

// Unresolved builds a reference holding only an ID.
func Unresolved[T any](id string) Reference[T] {
	return Reference[T]{id: id}
}

// Resolved builds a reference carrying the referenced snapshot.
func Resolved[T any](id string, v T) Reference[T] {
	return Reference[T]{id: id, value: &v}
}

// ID returns the referenced identifier in both forms.
func (r Reference[T]) ID() string { return r.id }

// IsResolved reports whether a snapshot is embedded.
func (r Reference[T]) IsResolved() bool { return r.value != nil }

// Value returns the snapshot when resolved.
func (r Reference[T]) Value() (T, bool) {
	if r.value == nil {
		var zero T
		return zero, false
	}
	return *r.value, true
}

// ReferenceField extracts a field from a resolved reference, else returns fallback.
func ReferenceField[T, D any](r Reference[T], extract func(T) D, fallback D) D {
	v, ok := r.Value()
	if !ok {
		return fallback
	}
	return extract(v)
}

func (r Reference[T]) MarshalJSON() ([]byte, error) {
	if r.value != nil {
		return json.Marshal(*r.value)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

func (r *Reference[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Reference[T]{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Unresolved[T](id)
		return nil
	case data[0] == '{':
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		var key struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &key); err != nil {
			return err
		}
		*r = Resolved(key.ID, v)
		return nil
	default:
		return fmt.Errorf("reference must be a string or an object, got %s", data)
	}
}
