package bus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/pccr10001/ofonomock/internal/ofono"
)

// pathProperties marshals as the D-Bus struct (oa{sv}).
type pathProperties struct {
	Path       dbus.ObjectPath
	Properties map[string]dbus.Variant
}

type managerObject struct {
	s *Server
}

func (o managerObject) GetModems() ([]pathProperties, *dbus.Error) {
	out, err := o.s.call(ofono.ManagerPath, ofono.ManagerInterface, "GetModems")
	if err != nil {
		return nil, err
	}
	return toPathProperties(out[0].([]ofono.PathProperties)), nil
}

type mockObject struct {
	s *Server
}

func (o mockObject) AddModem(name string, properties map[string]dbus.Variant) (string, *dbus.Error) {
	out, err := o.s.call(ofono.ManagerPath, ofono.MockInterface, "AddModem", name, properties)
	if err != nil {
		return "", err
	}
	return string(out[0].(dbus.ObjectPath)), nil
}

type modemObject struct {
	s    *Server
	path dbus.ObjectPath
}

func (o modemObject) GetProperties() (map[string]dbus.Variant, *dbus.Error) {
	out, err := o.s.call(o.path, ofono.ModemInterface, "GetProperties")
	if err != nil {
		return nil, err
	}
	return variantMap(out[0].(ofono.Properties)), nil
}

func (o modemObject) SetProperty(name string, value dbus.Variant) *dbus.Error {
	_, err := o.s.call(o.path, ofono.ModemInterface, "SetProperty", name, value)
	return err
}

type voiceCallManagerObject struct {
	s    *Server
	path dbus.ObjectPath
}

func (o voiceCallManagerObject) do(member string, args ...any) ([]any, *dbus.Error) {
	return o.s.call(o.path, ofono.VoiceCallManagerInterface, member, args...)
}

func (o voiceCallManagerObject) GetProperties() (map[string]dbus.Variant, *dbus.Error) {
	out, err := o.do("GetProperties")
	if err != nil {
		return nil, err
	}
	return variantMap(out[0].(ofono.Properties)), nil
}

func (o voiceCallManagerObject) Dial(number, hideCallerID string) (dbus.ObjectPath, *dbus.Error) {
	out, err := o.do("Dial", number, hideCallerID)
	if err != nil {
		return "", err
	}
	return out[0].(dbus.ObjectPath), nil
}

func (o voiceCallManagerObject) Transfer() *dbus.Error {
	_, err := o.do("Transfer")
	return err
}

func (o voiceCallManagerObject) SwapCalls() *dbus.Error {
	_, err := o.do("SwapCalls")
	return err
}

func (o voiceCallManagerObject) ReleaseAndAnswer() *dbus.Error {
	_, err := o.do("ReleaseAndAnswer")
	return err
}

func (o voiceCallManagerObject) ReleaseAndSwap() *dbus.Error {
	_, err := o.do("ReleaseAndSwap")
	return err
}

func (o voiceCallManagerObject) HoldAndAnswer() *dbus.Error {
	_, err := o.do("HoldAndAnswer")
	return err
}

func (o voiceCallManagerObject) HangupAll() *dbus.Error {
	_, err := o.do("HangupAll")
	return err
}

func (o voiceCallManagerObject) PrivateChat(call dbus.ObjectPath) ([]dbus.ObjectPath, *dbus.Error) {
	out, err := o.do("PrivateChat", call)
	if err != nil {
		return nil, err
	}
	return out[0].([]dbus.ObjectPath), nil
}

func (o voiceCallManagerObject) CreateMultiparty() (dbus.ObjectPath, *dbus.Error) {
	out, err := o.do("CreateMultiparty")
	if err != nil {
		return "", err
	}
	return out[0].(dbus.ObjectPath), nil
}

func (o voiceCallManagerObject) HangupMultiparty() *dbus.Error {
	_, err := o.do("HangupMultiparty")
	return err
}

func (o voiceCallManagerObject) SendTones(tones string) *dbus.Error {
	_, err := o.do("SendTones", tones)
	return err
}

func (o voiceCallManagerObject) GetCalls() ([]pathProperties, *dbus.Error) {
	out, err := o.do("GetCalls")
	if err != nil {
		return nil, err
	}
	return toPathProperties(out[0].([]ofono.PathProperties)), nil
}

type voiceCallObject struct {
	s    *Server
	path dbus.ObjectPath
}

func (o voiceCallObject) GetProperties() (map[string]dbus.Variant, *dbus.Error) {
	out, err := o.s.call(o.path, ofono.VoiceCallInterface, "GetProperties")
	if err != nil {
		return nil, err
	}
	return variantMap(out[0].(ofono.Properties)), nil
}

func (o voiceCallObject) Deflect(number string) *dbus.Error {
	_, err := o.s.call(o.path, ofono.VoiceCallInterface, "Deflect", number)
	return err
}

func (o voiceCallObject) Hangup() *dbus.Error {
	_, err := o.s.call(o.path, ofono.VoiceCallInterface, "Hangup")
	return err
}

func (o voiceCallObject) Answer() *dbus.Error {
	_, err := o.s.call(o.path, ofono.VoiceCallInterface, "Answer")
	return err
}

// stubTable builds the method table of an interface whose methods all fail.
// Calls still go through the service so they are journaled.
func (s *Server) stubTable(path dbus.ObjectPath, iface string) map[string]any {
	table := make(map[string]any)
	for _, m := range ofono.Methods(iface) {
		name := m.Name
		call := func(args ...any) *dbus.Error {
			_, err := s.call(path, iface, name, args...)
			return err
		}

		switch m.In {
		case "":
			table[name] = func() *dbus.Error { return call() }
		case "s":
			table[name] = func(a string) *dbus.Error { return call(a) }
		case "ss":
			table[name] = func(a, b string) *dbus.Error { return call(a, b) }
		case "sss":
			table[name] = func(a, b, c string) *dbus.Error { return call(a, b, c) }
		case "sv":
			table[name] = func(a string, b dbus.Variant) *dbus.Error { return call(a, b) }
		case "o":
			table[name] = func(a dbus.ObjectPath) *dbus.Error { return call(a) }
		case "y":
			table[name] = func(a byte) *dbus.Error { return call(a) }
		default:
			panic(fmt.Sprintf("no stub handler for %s.%s(%s)", iface, name, m.In))
		}
	}
	return table
}

func toPathProperties(list []ofono.PathProperties) []pathProperties {
	out := make([]pathProperties, 0, len(list))
	for _, pp := range list {
		out = append(out, pathProperties{Path: pp.Path, Properties: variantMap(pp.Properties)})
	}
	return out
}

// variantMap wraps every value for an a{sv} reply. Nil values have no D-Bus
// type and are dropped.
func variantMap(props ofono.Properties) map[string]dbus.Variant {
	out := make(map[string]dbus.Variant, len(props))
	for k, v := range props {
		if v == nil {
			continue
		}
		out[k] = toVariant(v)
	}
	return out
}

func toVariant(v any) dbus.Variant {
	switch x := v.(type) {
	case dbus.Variant:
		return x
	case ofono.Properties:
		return dbus.MakeVariant(variantMap(x))
	case []any:
		return dbus.MakeVariant(variantSlice(x))
	default:
		return dbus.MakeVariant(v)
	}
}

func variantSlice(list []any) []dbus.Variant {
	out := make([]dbus.Variant, 0, len(list))
	for _, v := range list {
		if v != nil {
			out = append(out, toVariant(v))
		}
	}
	return out
}

// encodeBody converts a signal body to D-Bus values following its signature.
func encodeBody(sig string, body []any) ([]any, error) {
	types, err := ofono.SplitSignature(sig)
	if err != nil {
		return nil, err
	}
	if len(types) != len(body) {
		return nil, fmt.Errorf("signature %q does not match %d values", sig, len(body))
	}

	out := make([]any, len(body))
	for i, t := range types {
		switch t {
		case "v":
			if body[i] == nil {
				return nil, fmt.Errorf("value %d: nil variant", i)
			}
			out[i] = toVariant(body[i])
		case "a{sv}":
			props, ok := body[i].(ofono.Properties)
			if !ok {
				return nil, fmt.Errorf("value %d: want properties, got %T", i, body[i])
			}
			out[i] = variantMap(props)
		default:
			out[i] = body[i]
		}
	}
	return out, nil
}
