// Package fields defines the capability a persisted type implements to
// let the engine enumerate, read, write, and test its fields without
// reaching into private state via a reflection adapter. The engine
// never synthesizes fields;
// it only ever calls through this capability.
package fields

import "fmt"

// Kind classifies how a field's declared type interacts with lazy
// proxies, per the admissibility rule.
type Kind int

const (
	// Scalar fields hold one of {int, float, bool, string} and are
	// assigned directly, with coercion on mismatch.
	Scalar Kind = iota
	// Composite fields hold a single embedded composite whose declared
	// type is concrete: a proxy placed there is forced to load eagerly.
	Composite
	// Proxyable fields admit a lazy proxy in place of the real value:
	// the proxy variant itself, any/interface{}, or a union that
	// includes one of those.
	Proxyable
	// Container fields hold an ordered key->value mapping (array or
	// map) whose composite cells may themselves be proxies.
	Container
)

// Accessor is the capability a persisted class implements. A value
// registers its own accessors (or derives them via a generator) rather
// than letting the engine synthesize them through reflection.
type Accessor interface {
	// FieldNames returns the node's declared field names, in any order;
	// the serializer sorts them before use.
	FieldNames() []string
	// FieldKind reports how the named field interacts with proxies.
	FieldKind(name string) Kind
	// FieldValue returns the field's current value and whether it has
	// been initialized. An uninitialized field is skipped during
	// serialization.
	FieldValue(name string) (value any, initialized bool)
	// SetFieldValue assigns value to the named field. Used both by the
	// decoder (component 8) and by a lazy proxy rewriting its slot on
	// first load.
	SetFieldValue(name string, value any) error
	// UnsetFieldValue marks the named field as uninitialized.
	UnsetFieldValue(name string) error
}

// Classed is implemented by any persisted value to report the class
// name recorded in its metadata. Types that do not implement
// Classed fall back to their Go type name (ClassNameOf).
type Classed interface {
	ClassName() string
}

// Factory instantiates a zero value of a registered class without
// running any constructor: instantiate without invoking its
// constructor. Implementations typically return
// &MyType{}.
type Factory func() Accessor

// Typed is an optional capability an Accessor implements to report a
// zero-value sample of a scalar field's declared Go type, enabling the
// decoder's coercion between the four scalar kinds.
// An Accessor that doesn't implement Typed simply receives the decoded
// JSON scalar as-is.
type Typed interface {
	FieldSample(name string) any
}

// Hook is the optional lifecycle hook invoked around both
// serialization and decoding. BeforeStore receives the node being
// stored itself, not a copy, and may return a field-selection list
// restricting what gets serialized; a nil/empty list means "no
// restriction". AfterLoad receives the reconstructed object.
type Hook interface {
	BeforeStore(clone Accessor) (fieldSubset []string)
	AfterLoad(obj Accessor)
}

// ErrTypeConversion is wrapped into the error returned when a scalar
// coercion cannot be performed.
var ErrTypeConversion = fmt.Errorf("fields: type conversion failed")

// CoerceTo converts v to the concrete Go type named by sample (one of
// int, int64, float64, bool, string), implementing coercion between
// the four scalar kinds. It returns ErrTypeConversion
// wrapped with context when no conversion is possible.
func CoerceTo(v any, sample any) (any, error) {
	switch sample.(type) {
	case string:
		return toString(v)
	case bool:
		return toBool(v)
	case float64:
		return toFloat64(v)
	case int:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return int(n.(int64)), nil
	case int64:
		return toInt(v)
	default:
		return v, nil
	}
}

func toString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return trimFloat(x), nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %T to string", ErrTypeConversion, v)
	}
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch x {
		case "true", "1":
			return true, nil
		case "false", "0", "":
			return false, nil
		}
		return nil, fmt.Errorf("%w: cannot convert %q to bool", ErrTypeConversion, x)
	case float64:
		return x != 0, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %T to bool", ErrTypeConversion, v)
	}
}

func toFloat64(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case bool:
		if x {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%g", &f); err != nil {
			return nil, fmt.Errorf("%w: cannot convert %q to float64", ErrTypeConversion, x)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %T to float64", ErrTypeConversion, v)
	}
}

func toInt(v any) (any, error) {
	f, err := toFloat64(v)
	if err != nil {
		return nil, err
	}
	return int64(f.(float64)), nil
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// ClassNameOf returns v's persisted class name: v.ClassName() if it
// implements Classed, else its Go type name via fmt's %T (a stdlib
// fallback — no third-party type-name helper exists in the dependency
// set this module draws from, and %T is already how the rest of this
// codebase's error messages report types).
func ClassNameOf(v any) string {
	if c, ok := v.(Classed); ok {
		return c.ClassName()
	}
	return fmt.Sprintf("%T", v)
}
