// Package rules contains the built-in device lint rules.
package rules

import "github.com/modm-io/modm-devices-go/pkg/lint"

// RegisterAllRules registers all lint rules with the given registry.
func RegisterAllRules(registry *lint.Registry) {
	RegisterDriverRules(registry)
	RegisterGPIORules(registry)
}

// NewDefaultRegistry creates a new registry with all rules registered.
func NewDefaultRegistry() *lint.Registry {
	registry := lint.NewRegistry()
	RegisterAllRules(registry)
	return registry
}
