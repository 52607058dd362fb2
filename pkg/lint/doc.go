// Package lint checks resolved device trees for consistency problems.
//
// Rules are registered in a Registry, can be enabled, disabled or given a
// different severity per rule ID or category, and report Violations
// pointing at inspect paths inside the device tree:
//
//	reg := rules.NewDefaultRegistry()
//	reg.SetSeverity("GPIO-002", lint.SeverityError)
//	result := lint.NewValidator(reg).Validate(dev)
//	if result.HasErrors() {
//	    ...
//	}
//
// # Rule IDs
//
// Rule IDs have the form CATEGORY-NNN:
//   - DRV: drivers (name present, no duplicates)
//   - INST: driver instances
//   - GPIO: pins and their alternate-function signals
package lint
