// Package device provides per-device access to canonical device data.
//
// A Device pairs one identifier with the document describing it. Its
// property tree is canonicalized lazily, at most once, and shared by all
// readers:
//
//	devices, err := device.FromFile(file)
//	for _, dev := range devices {
//	    uarts, err := dev.FindDrivers("usart", "uart:stm32*")
//	    ...
//	}
//
// Driver and Instance are read-only views into that tree.
package device
