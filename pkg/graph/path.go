package graph

import "fmt"

// PathSegment is one step of the accumulated path a proxy carries back
// to the root object that holds it: either an object field name or a
// container key (string map key or int slice index).
type PathSegment struct {
	Field string
	Key   any
}

// FieldSeg builds a segment that addresses an object field.
func FieldSeg(name string) PathSegment { return PathSegment{Field: name} }

// KeySeg builds a segment that addresses a container cell.
func KeySeg(key any) PathSegment { return PathSegment{Key: key} }

func (s PathSegment) isField() bool { return s.Key == nil }

// containerAt returns the child container/value stored at key within c,
// where c is one of the two container shapes the decoder ever produces:
// map[string]any (JSON object) or []any (JSON array).
func containerAt(c any, key any) (any, error) {
	switch v := c.(type) {
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("graph: map container needs a string key, got %T", key)
		}
		return v[k], nil
	case []any:
		i, ok := key.(int)
		if !ok {
			return nil, fmt.Errorf("graph: slice container needs an int key, got %T", key)
		}
		if i < 0 || i >= len(v) {
			return nil, fmt.Errorf("graph: index %d out of range (len %d)", i, len(v))
		}
		return v[i], nil
	default:
		return nil, fmt.Errorf("graph: %T is not a container", c)
	}
}

// setContainerAt mutates c in place at key. Because map[string]any and
// []any are reference types in Go, this mutation is visible through
// every other holder of c without any further bookkeeping — the "single
// indexed mutation" the lazy proxy needs to rewrite its slot.
func setContainerAt(c any, key any, value any) error {
	switch v := c.(type) {
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return fmt.Errorf("graph: map container needs a string key, got %T", key)
		}
		v[k] = value
		return nil
	case []any:
		i, ok := key.(int)
		if !ok {
			return fmt.Errorf("graph: slice container needs an int key, got %T", key)
		}
		if i < 0 || i >= len(v) {
			return fmt.Errorf("graph: index %d out of range (len %d)", i, len(v))
		}
		v[i] = value
		return nil
	default:
		return fmt.Errorf("graph: %T is not a container", c)
	}
}
