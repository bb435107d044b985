// Package configmerge migrates stored settings against code-defined defaults.
package configmerge

import (
	"encoding/json"
	"fmt"
)

// Merge copies every key present in defaults but missing from stored, or present with a
// different structural kind, into stored. Nested maps are merged recursively. Keys already
// present and well-typed are never overwritten, and stored-only keys are never removed.
// It reports whether stored changed; running it again on its own output reports false.
func Merge(defaults, stored map[string]any) bool {
	changed := false
	for key, def := range defaults {
		cur, ok := stored[key]
		if !ok {
			stored[key] = clone(def)
			changed = true
			continue
		}

		defMap, defIsMap := def.(map[string]any)
		if defIsMap {
			curMap, curIsMap := cur.(map[string]any)
			if !curIsMap {
				stored[key] = clone(def)
				changed = true
				continue
			}
			if Merge(defMap, curMap) {
				changed = true
			}
			continue
		}

		if !sameKind(def, cur) {
			stored[key] = clone(def)
			changed = true
		}
	}
	return changed
}

type kind int

const (
	kindNull kind = iota
	kindBool
	kindNumber
	kindString
	kindList
	kindMap
	kindOther
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return kindNumber
	case string:
		return kindString
	case []any:
		return kindList
	case map[string]any:
		return kindMap
	default:
		return kindOther
	}
}

// sameKind reports whether a stored value is acceptable where def is expected.
// A null default accepts anything.
func sameKind(def, cur any) bool {
	dk := kindOf(def)
	return dk == kindNull || dk == kindOther || dk == kindOf(cur)
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = clone(val)
		}
		return out
	default:
		return v
	}
}

// ToMap converts a value to the generic keyed form Merge works on, via its JSON encoding.
func ToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	return out, nil
}
