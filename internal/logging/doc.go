// Package logging provides the operational slog logger of the modm-devices
// tools. Resolution events are captured separately by pkg/log.
package logging
