// Package view provides read-only trees of canonical device properties.
//
// A canonical value is one of three kinds:
//   - Scalar: a string
//   - Map: string keys in document order, each holding a Value
//   - List: an ordered sequence of Values
//
// Trees are built once through NewScalar, NewList and MapBuilder and never
// change afterwards. No mutators exist, so a Map handed out by a Device can
// be shared between goroutines without copying. Callers that need an owned,
// mutable representation call Native, which returns an independent deep copy
// built from string, map[string]any and []any.
//
// Map, List and Value implement json.Marshaler and yaml.Marshaler so that
// serializers keep the document key order.
package view
