// Package ofono models the org.ofono object tree served by the mock: the
// Manager, its Modems, each Modem's VoiceCallManager and the VoiceCalls
// dialed on it.
//
// Nothing in this package locks. Callers must serialize every operation on a
// Registry, which internal/service does for both the bus and the admin API.
package ofono

import (
	"slices"

	"github.com/godbus/dbus/v5"
)

const (
	BusName          = "org.ofono"
	ManagerPath      = dbus.ObjectPath("/")
	DefaultModemName = "ril_0"

	ManagerInterface          = "org.ofono.Manager"
	ModemInterface            = "org.ofono.Modem"
	VoiceCallManagerInterface = "org.ofono.VoiceCallManager"
	VoiceCallInterface        = "org.ofono.VoiceCall"
	CallVolumeInterface       = "org.ofono.CallVolume"

	// MockInterface carries the administrative methods a harness uses to
	// seed state. It is not part of the oFono protocol.
	MockInterface = "org.freedesktop.DBus.Mock"
)

// Object is one entry of the Registry. The concrete type is one of *Manager,
// *Modem or *VoiceCall; a Modem also serves its VoiceCallManager at the same
// path.
type Object interface {
	ObjectPath() dbus.ObjectPath
	Interfaces() []string
}

// Properties is a property snapshot keyed by name. Values set by the mock are
// bool, string or []string; SetProperty accepts anything.
type Properties map[string]any

// Clone returns a copy that shares no slices with p.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		if s, ok := v.([]string); ok {
			v = slices.Clone(s)
		}
		out[k] = v
	}
	return out
}

// PathProperties pairs an object path with a property snapshot, the element
// type of GetModems and GetCalls.
type PathProperties struct {
	Path       dbus.ObjectPath `json:"path"`
	Properties Properties      `json:"properties"`
}
