package ofono

import (
	"slices"

	"github.com/godbus/dbus/v5"
)

// Modem is an org.ofono.Modem. It also serves its VoiceCallManager and the
// stub interfaces at the same path.
type Modem struct {
	reg   *Registry
	path  dbus.ObjectPath
	props Properties
	voice *VoiceCallManager
}

func newModem(reg *Registry, path dbus.ObjectPath) *Modem {
	return &Modem{
		reg:  reg,
		path: path,
		props: Properties{
			"Online":       true,
			"Powered":      true,
			"Lockdown":     false,
			"Emergency":    false,
			"Manufacturer": "Fakesys",
			"Model":        "Mock Modem",
			"Revision":     "0815.42",
			"Type":         "hardware",
			"Interfaces":   []string{CallVolumeInterface, VoiceCallManagerInterface},
			"Features":     []string{"gprs"},
		},
		voice: newVoiceCallManager(reg, path),
	}
}

func (m *Modem) ObjectPath() dbus.ObjectPath {
	return m.path
}

func (m *Modem) Interfaces() []string {
	return append([]string{ModemInterface, VoiceCallManagerInterface}, StubInterfaces()...)
}

func (m *Modem) VoiceCallManager() *VoiceCallManager {
	return m.voice
}

func (m *Modem) GetProperties() Properties {
	return m.props.Clone()
}

// SetProperty stores value under name, known or not, and emits
// PropertyChanged.
func (m *Modem) SetProperty(name string, value any) {
	if s, ok := value.([]string); ok {
		value = slices.Clone(s)
	}
	m.props[name] = value

	m.reg.emit(Signal{
		Path:      m.path,
		Interface: ModemInterface,
		Member:    "PropertyChanged",
		Signature: "sv",
		Body:      []any{name, value},
	})
}
