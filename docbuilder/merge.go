package docbuilder

import (
	"encoding/json"
	"fmt"

	"github.com/nbittich/mu-search/search"
)

// smartMerge combines two composite sub-documents field by field: null
// absorbs non-null, arrays concatenate and dedup, hashes merge
// recursively, and distinct scalars combine into an array (equal scalars
// stay a single value, so merging a document with itself yields the
// same document). Language-string objects are not merged per language:
// two of them combine into an array of objects. Any other combination
// cannot be resolved structurally and is reported as a fatal build error.
func smartMerge(a, b search.Document) (search.Document, error) {
	out := make(search.Document, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		existing, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		merged, err := mergeValue(existing, v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = merged
	}
	return out, nil
}

func mergeValue(a, b interface{}) (interface{}, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}

	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: hash vs %T", ErrIncompatibleMerge, b)
		}
		merged := make(map[string]interface{}, len(av)+len(bv))
		for k, v := range av {
			merged[k] = v
		}
		for k, v := range bv {
			existing, ok := merged[k]
			if !ok {
				merged[k] = v
				continue
			}
			m, err := mergeValue(existing, v)
			if err != nil {
				return nil, err
			}
			merged[k] = m
		}
		return merged, nil

	case search.Document:
		bv, ok := b.(search.Document)
		if !ok {
			return nil, fmt.Errorf("%w: hash vs %T", ErrIncompatibleMerge, b)
		}
		return smartMerge(av, bv)

	case []interface{}:
		return dedupAppend(av, toSlice(b)), nil

	default:
		if isScalar(b) {
			combined := dedupAppend(toSlice(a), toSlice(b))
			if len(combined) == 1 {
				return combined[0], nil
			}
			return combined, nil
		}
		return nil, fmt.Errorf("%w: scalar vs %T", ErrIncompatibleMerge, b)
	}
}

func toSlice(v interface{}) []interface{} {
	if arr, ok := v.([]interface{}); ok {
		return arr
	}
	return []interface{}{v}
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, search.Document, []interface{}:
		return false
	default:
		return true
	}
}

// dedupAppend concatenates a and b, dropping later duplicates. Elements
// are keyed by their JSON encoding rather than the Go value itself
// because nested/attachment properties carry map[string]interface{}
// elements, which are not comparable and would panic a plain map key.
// An element that fails to marshal is always kept rather than dropped.
func dedupAppend(a, b []interface{}) []interface{} {
	seen := make(map[string]struct{}, len(a))
	out := make([]interface{}, 0, len(a)+len(b))
	appendUnique := func(v interface{}) {
		key, err := json.Marshal(v)
		if err != nil {
			out = append(out, v)
			return
		}
		if _, ok := seen[string(key)]; ok {
			return
		}
		seen[string(key)] = struct{}{}
		out = append(out, v)
	}
	for _, v := range a {
		appendUnique(v)
	}
	for _, v := range b {
		appendUnique(v)
	}
	return out
}
