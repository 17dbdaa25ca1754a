package ofono

import (
	"github.com/godbus/dbus/v5"
)

const CallStateDialing = "dialing"

// VoiceCall is one org.ofono.VoiceCall. It refers to its manager by path only;
// the manager's call list is the owning side.
type VoiceCall struct {
	reg     *Registry
	path    dbus.ObjectPath
	manager dbus.ObjectPath
	props   Properties
}

func newVoiceCall(reg *Registry, path, manager dbus.ObjectPath, number string) *VoiceCall {
	return &VoiceCall{
		reg:     reg,
		path:    path,
		manager: manager,
		props: Properties{
			"State":              CallStateDialing,
			"LineIdentification": number,
			"Name":               "",
			"Multiparty":         false,
			"RemoteHeld":         false,
			"RemoteMultiparty":   false,
			"Emergency":          false,
		},
	}
}

func (c *VoiceCall) ObjectPath() dbus.ObjectPath {
	return c.path
}

func (c *VoiceCall) Interfaces() []string {
	return []string{VoiceCallInterface}
}

// Manager returns the path of the voice call manager that dialed c.
func (c *VoiceCall) Manager() dbus.ObjectPath {
	return c.manager
}

func (c *VoiceCall) GetProperties() Properties {
	return c.props.Clone()
}

func (c *VoiceCall) Deflect(number string) error {
	return notImplemented(VoiceCallInterface, "Deflect")
}

func (c *VoiceCall) Answer() error {
	return notImplemented(VoiceCallInterface, "Answer")
}

// Hangup removes the call from its manager and the registry, then emits
// CallRemoved on the manager's interface. Hanging up a call that is already
// gone fails with ErrUnknownObject.
func (c *VoiceCall) Hangup() error {
	if !c.reg.live(c) {
		return unknownObject(c.path)
	}
	vcm, err := c.reg.VoiceCallManager(c.manager)
	if err != nil {
		return err
	}

	if !vcm.forget(c.path) {
		return unknownObject(c.path)
	}
	if err := c.reg.remove(c.path); err != nil {
		return err
	}

	c.reg.emit(Signal{
		Path:      c.manager,
		Interface: VoiceCallManagerInterface,
		Member:    "CallRemoved",
		Signature: "o",
		Body:      []any{c.path},
	})
	return nil
}
