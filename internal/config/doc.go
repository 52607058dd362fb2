// Package config loads modm-devices configuration.
//
// Configuration is read from an optional YAML file and can be overridden by
// environment variables prefixed MODM_DEVICES_. A minimal file:
//
//	devices:
//	  paths:
//	    - ./devices/stm32
//	logging:
//	  level: debug
//	resolve:
//	  workers: 8
package config
