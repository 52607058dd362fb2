package rules

import (
	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/devicefile"
	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/lint"
)

var (
	a  = devicefile.A
	el = devicefile.NewElement
)

// testDevice builds stm32f407 with the given children below the device node.
func testDevice(children ...*devicefile.Node) *device.Device {
	root := el("device", a("platform", "stm32"), a("name", "f407")).Append(
		el("naming-schema").WithText("{platform}{name}"),
	)
	root.Append(children...)

	id := identifier.NewWithSchema("{platform}{name}")
	id.Set("platform", "stm32")
	id.Set("name", "f407")
	return device.New(id, devicefile.New("test.xml", root))
}

func gpioDriver(pins ...*devicefile.Node) *devicefile.Node {
	return el("driver", a("name", "gpio"), a("type", "stm32")).Append(pins...)
}

func signal(driver, instance, name string) *devicefile.Node {
	attrs := []devicefile.Attr{a("driver", driver), a("name", name)}
	if instance != "" {
		attrs = append(attrs, a("instance", instance))
	}
	return el("signal", attrs...)
}

func ruleIDs(violations []lint.Violation) []string {
	var ids []string
	for _, v := range violations {
		ids = append(ids, v.RuleID)
	}
	return ids
}
