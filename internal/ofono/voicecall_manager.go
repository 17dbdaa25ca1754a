package ofono

import (
	"fmt"
	"slices"

	"github.com/godbus/dbus/v5"
)

// VoiceCallManager is the org.ofono.VoiceCallManager of one modem. It lives at
// the modem's path and tracks the calls dialed on it.
type VoiceCallManager struct {
	reg   *Registry
	path  dbus.ObjectPath
	props Properties
	calls []dbus.ObjectPath
}

func newVoiceCallManager(reg *Registry, path dbus.ObjectPath) *VoiceCallManager {
	return &VoiceCallManager{
		reg:  reg,
		path: path,
		props: Properties{
			// Not real emergency numbers, so a test run against a production
			// oFono cannot reach an operator.
			"EmergencyNumbers": []string{"911", "13373"},
		},
	}
}

func (v *VoiceCallManager) ObjectPath() dbus.ObjectPath {
	return v.path
}

func (v *VoiceCallManager) GetProperties() Properties {
	return v.props.Clone()
}

// Calls returns the tracked call paths in dial order.
func (v *VoiceCallManager) Calls() []dbus.ObjectPath {
	return slices.Clone(v.calls)
}

func (v *VoiceCallManager) GetCalls() []PathProperties {
	out := make([]PathProperties, 0, len(v.calls))
	for _, p := range v.calls {
		call, err := v.reg.VoiceCall(p)
		if err != nil {
			panic(fmt.Sprintf("ofono: %s tracks %s but it does not resolve: %v", v.path, p, err))
		}
		out = append(out, PathProperties{Path: p, Properties: call.GetProperties()})
	}
	return out
}

// Dial creates a call in state "dialing" and announces it with CallAdded.
//
// The call number is len(calls)+1, so numbers are reused once earlier calls
// hang up. If that path is still taken by a live call, Dial fails with
// ErrDuplicateObject and nothing changes. hideCallerID is accepted and
// ignored.
func (v *VoiceCallManager) Dial(number, hideCallerID string) (dbus.ObjectPath, error) {
	path := dbus.ObjectPath(fmt.Sprintf("%s/voicecall%02d", v.path, len(v.calls)+1))

	call := newVoiceCall(v.reg, path, v.path, number)
	if err := v.reg.add(call); err != nil {
		return "", err
	}
	v.calls = append(v.calls, path)

	v.reg.emit(Signal{
		Path:      v.path,
		Interface: VoiceCallManagerInterface,
		Member:    "CallAdded",
		Signature: "oa{sv}",
		Body:      []any{path, call.GetProperties()},
	})
	return path, nil
}

// HangupAll hangs up every tracked call in dial order. It panics if any call
// is still tracked afterwards.
func (v *VoiceCallManager) HangupAll() error {
	// Hangup mutates v.calls, so walk a copy.
	for _, p := range slices.Clone(v.calls) {
		call, err := v.reg.VoiceCall(p)
		if err != nil {
			return err
		}
		if err := call.Hangup(); err != nil {
			return err
		}
	}

	if len(v.calls) != 0 {
		panic(fmt.Sprintf("ofono: HangupAll on %s left calls %v", v.path, v.calls))
	}
	return nil
}

func (v *VoiceCallManager) PrivateChat(call dbus.ObjectPath) ([]dbus.ObjectPath, error) {
	return nil, notImplemented(VoiceCallManagerInterface, "PrivateChat")
}

func (v *VoiceCallManager) CreateMultiparty() (dbus.ObjectPath, error) {
	return "", notImplemented(VoiceCallManagerInterface, "CreateMultiparty")
}

func (v *VoiceCallManager) HangupMultiparty() error {
	return notImplemented(VoiceCallManagerInterface, "HangupMultiparty")
}

// forget drops path from the tracked calls and reports whether it was there.
func (v *VoiceCallManager) forget(path dbus.ObjectPath) bool {
	i := slices.Index(v.calls, path)
	if i < 0 {
		return false
	}
	v.calls = slices.Delete(v.calls, i, i+1)
	return true
}
