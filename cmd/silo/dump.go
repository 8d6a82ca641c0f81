package main

import (
	"github.com/cuemby/silo/pkg/fields"
	"github.com/cuemby/silo/pkg/graph"
)

// dump renders a decoded object into a plain map[string]any suitable
// for JSON printing: unresolved proxies show up as a "<proxy:UUID>"
// placeholder rather than being forced to load.
func dump(v any) any {
	switch x := v.(type) {
	case *graph.Proxy:
		if x.Loaded() {
			loaded, err := x.Get()
			if err == nil {
				return dump(loaded)
			}
		}
		return "<proxy:" + x.UUID() + ">"
	case fields.Accessor:
		out := map[string]any{}
		for _, name := range x.FieldNames() {
			v, ok := x.FieldValue(name)
			if !ok {
				continue
			}
			out[name] = dump(v)
		}
		if classed, ok := x.(fields.Classed); ok {
			out["__class"] = classed.ClassName()
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = dump(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = dump(vv)
		}
		return out
	default:
		return v
	}
}
