package domain

// SwitchState is the literal value sent with a switch command.
type SwitchState string

const (
	SwitchOn  SwitchState = "on"
	SwitchOff SwitchState = "off"
)

const (
	ComponentMain = "main"

	CapabilitySwitch       = "switch"
	CapabilityColorControl = "colorControl"

	CommandSetColor = "setColor"
)

// DeviceConfig is the requested state for one light. A nil Switch sends no
// switch command; when any colour channel is set, the missing ones count as 0.
type DeviceConfig struct {
	Switch *SwitchState `json:"switch,omitempty"`
	Red    *int         `json:"red,omitempty"`
	Green  *int         `json:"green,omitempty"`
	Blue   *int         `json:"blue,omitempty"`
}

// BatchConfig maps a device name to its requested state.
type BatchConfig map[string]DeviceConfig

// DeviceCommand is a single command in the device-control wire format.
type DeviceCommand struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
	Command    string `json:"command"`
	Arguments  []any  `json:"arguments,omitempty"`
}

// HasColor reports whether any colour channel is set.
func (c DeviceConfig) HasColor() bool {
	return c.Red != nil || c.Green != nil || c.Blue != nil
}

// Compile turns the config into device commands. The switch command, when
// present, always comes before the colour command. Missing colour channels
// are treated as 0.
func (c DeviceConfig) Compile() []DeviceCommand {
	commands := make([]DeviceCommand, 0, 2)

	if c.Switch != nil {
		commands = append(commands, DeviceCommand{
			Component:  ComponentMain,
			Capability: CapabilitySwitch,
			Command:    string(*c.Switch),
		})
	}

	if c.HasColor() {
		h, s := ToHueSaturation(channel(c.Red), channel(c.Green), channel(c.Blue))
		commands = append(commands, DeviceCommand{
			Component:  ComponentMain,
			Capability: CapabilityColorControl,
			Command:    CommandSetColor,
			Arguments:  []any{HueSaturation{Hue: h, Saturation: s}},
		})
	}

	return commands
}

func channel(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
