// Package devicefile implements the selector engine over conditional device
// documents.
//
// A conditional document describes a whole family of devices in one tree.
// Nodes carry selector attributes of the form device-<key>="v1|v2" that
// restrict them to identifiers whose <key> property is one of the listed
// values. Canonicalizing the document for one identifier drops every node
// whose selectors do not match and flattens the rest into a view.Map:
//
//	<device platform="stm32" family="f1" name="03|05">
//	  <naming-schema>{platform}{family}{name}</naming-schema>
//	  <driver name="gpio" type="stm32-f1"/>
//	  <driver name="adc" device-name="05"/>
//	</device>
//
// canonicalizes for stm32f103 to {driver: [{name: gpio, type: stm32-f1}]}.
//
// Canonicalization rules:
//   - comments and device-* attributes never reach the output
//   - at the document root, attributes named like identifier keys are
//     dropped, and so are the naming-schema, valid-device and
//     invalid-device metadata children
//   - children are grouped by tag into lists, even single ones
//   - an attribute-<name> child is demoted to the single value <name>
//   - a node left with only a value attribute collapses to that scalar
//
// Any error aborts the whole document/identifier pair. No partial tree is
// ever returned.
package devicefile
