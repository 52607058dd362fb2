// Package identifier implements the device-identifier algebra.
//
// # Device Identifiers
//
// A DeviceIdentifier is a property bag naming one concrete hardware part.
// Its naming schema is a template with {key} placeholders:
//
//	id := identifier.NewWithSchema("{platform}{family}{name}")
//	id.Set("platform", "stm32")
//	id.Set("family", "f1")
//	id.Set("name", "03")
//	name, _ := id.Render() // "stm32f103"
//
// Identity is defined by the schema plus the sorted key/value pairs, never
// by the rendered name: two identifiers with different properties that
// happen to render identically are distinct.
//
// # Multi Device Identifiers
//
// A MultiDeviceIdentifier is a deduplicated collection of identifiers sorted
// by rendered name. It supports Cartesian expansion (FromProduct), set
// operations, and the minimal distinguishing key searches used to decide
// which selector attributes a shared document node needs:
//
//   - MinimalSubtract: smallest key combination whose value sets carve the
//     collection out of a universe
//   - MinimalInvertibleSubtract: the same, computed on the smaller side of
//     the universe and returned with an inclusion or exclusion Sign
//   - MinimalSubtractPartition: fewest groups that can each be carved out of
//     a parent with one shared key combination
//
// Key combinations are searched by increasing cardinality, then in
// lexicographic order of the sorted keys. The first matching combination
// wins.
package identifier
