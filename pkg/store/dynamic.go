package store

import "github.com/cuemby/silo/pkg/fields"

// DynamicObject is the "empty anonymous class" the decoder instantiates
// when a persisted class name is unknown at runtime:
// a fully dynamic fields.Accessor backed by a map, admitting any field
// under any value including proxies. It is also usable directly by
// callers who want a schema-less composite.
type DynamicObject struct {
	class  string
	uuid   string
	values map[string]any
	set    map[string]bool
}

// NewDynamicObject creates an empty dynamic object reporting class as
// its persisted class name.
func NewDynamicObject(class string) *DynamicObject {
	return &DynamicObject{class: class, values: map[string]any{}, set: map[string]bool{}}
}

func (d *DynamicObject) ClassName() string { return d.class }

func (d *DynamicObject) GetUUID() string    { return d.uuid }
func (d *DynamicObject) SetUUID(id string)  { d.uuid = id }

func (d *DynamicObject) FieldNames() []string {
	names := make([]string, 0, len(d.values))
	for name := range d.values {
		names = append(names, name)
	}
	return names
}

// FieldKind is always Proxyable: a dynamic object admits a proxy in any
// slot, per the admissibility rule's "dynamically typed" clause.
func (d *DynamicObject) FieldKind(name string) fields.Kind { return fields.Proxyable }

func (d *DynamicObject) FieldValue(name string) (any, bool) {
	return d.values[name], d.set[name]
}

func (d *DynamicObject) SetFieldValue(name string, value any) error {
	d.values[name] = value
	d.set[name] = true
	return nil
}

func (d *DynamicObject) UnsetFieldValue(name string) error {
	delete(d.values, name)
	delete(d.set, name)
	return nil
}
