package ofono

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"
)

type handler func(r *Registry, path dbus.ObjectPath, args []any) ([]any, error)

// Method is one entry of the dispatch table. In and Out are D-Bus
// signatures.
type Method struct {
	Name string
	In   string
	Out  string

	call handler
}

// SignalInfo declares a signal an interface may emit.
type SignalInfo struct {
	Name      string
	Signature string
}

const (
	SimManagerInterface          = "org.ofono.SimManager"
	NetworkRegistrationInterface = "org.ofono.NetworkRegistration"
	MessageManagerInterface      = "org.ofono.MessageManager"
	ConnectionManagerInterface   = "org.ofono.ConnectionManager"
	NetworkTimeInterface         = "org.ofono.NetworkTime"
)

var stubInterfaces = []string{
	SimManagerInterface,
	NetworkRegistrationInterface,
	MessageManagerInterface,
	ConnectionManagerInterface,
	NetworkTimeInterface,
}

var methods = map[string][]Method{
	ManagerInterface: {
		{Name: "GetModems", Out: "a(oa{sv})", call: getModems},
	},
	MockInterface: {
		{Name: "AddModem", In: "sa{sv}", Out: "s", call: addModem},
	},
	ModemInterface: {
		{Name: "GetProperties", Out: "a{sv}", call: modemGetProperties},
		{Name: "SetProperty", In: "sv", call: modemSetProperty},
	},
	VoiceCallManagerInterface: {
		{Name: "GetProperties", Out: "a{sv}", call: vcmGetProperties},
		{Name: "Dial", In: "ss", Out: "o", call: dial},
		{Name: "Transfer", call: acknowledge},
		{Name: "SwapCalls", call: acknowledge},
		{Name: "ReleaseAndAnswer", call: acknowledge},
		{Name: "ReleaseAndSwap", call: acknowledge},
		{Name: "HoldAndAnswer", call: acknowledge},
		{Name: "HangupAll", call: hangupAll},
		{Name: "PrivateChat", In: "o", Out: "ao", call: privateChat},
		{Name: "CreateMultiparty", Out: "o", call: createMultiparty},
		{Name: "HangupMultiparty", call: hangupMultiparty},
		{Name: "SendTones", In: "s", call: acknowledge},
		{Name: "GetCalls", Out: "a(oa{sv})", call: getCalls},
	},
	VoiceCallInterface: {
		{Name: "GetProperties", Out: "a{sv}", call: callGetProperties},
		{Name: "Deflect", In: "s", call: deflect},
		{Name: "Hangup", call: hangup},
		{Name: "Answer", call: answer},
	},

	SimManagerInterface: stubs(SimManagerInterface,
		Method{Name: "GetProperties", Out: "a{sv}"},
		Method{Name: "SetProperty", In: "sv"},
		Method{Name: "ChangePin", In: "sss"},
		Method{Name: "EnterPin", In: "ss"},
		Method{Name: "ResetPin", In: "sss"},
		Method{Name: "LockPin", In: "ss"},
		Method{Name: "UnlockPin", In: "ss"},
		Method{Name: "GetIcon", In: "y", Out: "ay"},
	),
	NetworkRegistrationInterface: stubs(NetworkRegistrationInterface,
		Method{Name: "GetProperties", Out: "a{sv}"},
		Method{Name: "Register"},
		Method{Name: "GetOperators", Out: "a(oa{sv})"},
		Method{Name: "Scan", Out: "a(oa{sv})"},
	),
	MessageManagerInterface: stubs(MessageManagerInterface,
		Method{Name: "GetProperties", Out: "a{sv}"},
		Method{Name: "SetProperty", In: "sv"},
		Method{Name: "SendMessage", In: "ss", Out: "o"},
		Method{Name: "GetMessages", Out: "a(oa{sv})"},
	),
	ConnectionManagerInterface: stubs(ConnectionManagerInterface,
		Method{Name: "GetProperties", Out: "a{sv}"},
		Method{Name: "SetProperty", In: "sv"},
		Method{Name: "AddContext", In: "s", Out: "o"},
		Method{Name: "RemoveContext", In: "o"},
		Method{Name: "DeactivateAll"},
		Method{Name: "GetContexts", Out: "a(oa{sv})"},
	),
	NetworkTimeInterface: stubs(NetworkTimeInterface,
		Method{Name: "GetNetworkTime", Out: "a{sv}"},
	),
}

var signals = map[string][]SignalInfo{
	ManagerInterface: {
		{Name: "ModemAdded", Signature: "oa{sv}"},
		{Name: "ModemRemoved", Signature: "o"},
	},
	ModemInterface: {
		{Name: "PropertyChanged", Signature: "sv"},
	},
	VoiceCallManagerInterface: {
		{Name: "Forwarded", Signature: "s"},
		{Name: "BarringActive", Signature: "s"},
		{Name: "PropertyChanged", Signature: "sv"},
		{Name: "CallAdded", Signature: "oa{sv}"},
		{Name: "CallRemoved", Signature: "o"},
	},
	SimManagerInterface: {
		{Name: "PropertyChanged", Signature: "sv"},
	},
	NetworkRegistrationInterface: {
		{Name: "PropertyChanged", Signature: "sv"},
	},
	MessageManagerInterface: {
		{Name: "PropertyChanged", Signature: "sv"},
		{Name: "IncomingMessage", Signature: "sa{sv}"},
		{Name: "ImmediateMessage", Signature: "sa{sv}"},
		{Name: "MessageAdded", Signature: "oa{sv}"},
		{Name: "MessageRemoved", Signature: "o"},
	},
	ConnectionManagerInterface: {
		{Name: "PropertyChanged", Signature: "sv"},
		{Name: "ContextAdded", Signature: "ov"},
		{Name: "ContextRemoved", Signature: "o"},
	},
	NetworkTimeInterface: {
		{Name: "NetworkTimeChanged", Signature: "a{sv}"},
	},
}

func stubs(iface string, ms ...Method) []Method {
	for i := range ms {
		name := ms[i].Name
		ms[i].call = func(*Registry, dbus.ObjectPath, []any) ([]any, error) {
			return nil, notImplemented(iface, name)
		}
	}
	return ms
}

// StubInterfaces lists the modem interfaces whose methods all fail with
// ErrNotImplemented.
func StubInterfaces() []string {
	return slices.Clone(stubInterfaces)
}

// Methods returns the dispatch table entries of iface in declaration order.
func Methods(iface string) []Method {
	return slices.Clone(methods[iface])
}

func Signals(iface string) []SignalInfo {
	return slices.Clone(signals[iface])
}

func lookupMethod(iface, member string) (Method, bool) {
	for _, m := range methods[iface] {
		if m.Name == member {
			return m, true
		}
	}
	return Method{}, false
}

// Call dispatches member of iface on the object at path. Arguments are checked
// against the method's input signature and normalized: object paths become
// dbus.ObjectPath, variants are unwrapped and property maps become Properties.
func (r *Registry) Call(path dbus.ObjectPath, iface, member string, args ...any) ([]any, error) {
	obj, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(obj.Interfaces(), iface) {
		return nil, fmt.Errorf("%s does not implement %s: %w", path, iface, ErrUnknownMethod)
	}
	m, ok := lookupMethod(iface, member)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", iface, member, ErrUnknownMethod)
	}

	in, err := coerceArgs(m.In, args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", iface, member, err)
	}
	return m.call(r, path, in)
}

func getModems(r *Registry, _ dbus.ObjectPath, _ []any) ([]any, error) {
	m, err := r.Manager()
	if err != nil {
		return nil, err
	}
	return []any{m.GetModems()}, nil
}

func addModem(r *Registry, _ dbus.ObjectPath, args []any) ([]any, error) {
	m, err := r.Manager()
	if err != nil {
		return nil, err
	}
	path, err := m.AddModem(args[0].(string), args[1].(Properties))
	if err != nil {
		return nil, err
	}
	return []any{path}, nil
}

func modemGetProperties(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	m, err := r.Modem(path)
	if err != nil {
		return nil, err
	}
	return []any{m.GetProperties()}, nil
}

func modemSetProperty(r *Registry, path dbus.ObjectPath, args []any) ([]any, error) {
	m, err := r.Modem(path)
	if err != nil {
		return nil, err
	}
	m.SetProperty(args[0].(string), args[1])
	return nil, nil
}

func vcmGetProperties(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	return []any{v.GetProperties()}, nil
}

func dial(r *Registry, path dbus.ObjectPath, args []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	call, err := v.Dial(args[0].(string), args[1].(string))
	if err != nil {
		return nil, err
	}
	return []any{call}, nil
}

func hangupAll(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	return nil, v.HangupAll()
}

func getCalls(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	return []any{v.GetCalls()}, nil
}

func privateChat(r *Registry, path dbus.ObjectPath, args []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	calls, err := v.PrivateChat(args[0].(dbus.ObjectPath))
	if err != nil {
		return nil, err
	}
	return []any{calls}, nil
}

func createMultiparty(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	call, err := v.CreateMultiparty()
	if err != nil {
		return nil, err
	}
	return []any{call}, nil
}

func hangupMultiparty(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	v, err := r.VoiceCallManager(path)
	if err != nil {
		return nil, err
	}
	return nil, v.HangupMultiparty()
}

// acknowledge accepts a call whose feature the mock does not model.
func acknowledge(*Registry, dbus.ObjectPath, []any) ([]any, error) {
	return nil, nil
}

func callGetProperties(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	c, err := r.VoiceCall(path)
	if err != nil {
		return nil, err
	}
	return []any{c.GetProperties()}, nil
}

func deflect(r *Registry, path dbus.ObjectPath, args []any) ([]any, error) {
	c, err := r.VoiceCall(path)
	if err != nil {
		return nil, err
	}
	return nil, c.Deflect(args[0].(string))
}

func hangup(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	c, err := r.VoiceCall(path)
	if err != nil {
		return nil, err
	}
	return nil, c.Hangup()
}

func answer(r *Registry, path dbus.ObjectPath, _ []any) ([]any, error) {
	c, err := r.VoiceCall(path)
	if err != nil {
		return nil, err
	}
	return nil, c.Answer()
}

// SplitSignature splits a D-Bus signature into its complete types, e.g.
// "sa{sv}" into "s" and "a{sv}".
func SplitSignature(sig string) ([]string, error) {
	var out []string
	for len(sig) > 0 {
		n, err := completeType(sig)
		if err != nil {
			return nil, err
		}
		out = append(out, sig[:n])
		sig = sig[n:]
	}
	return out, nil
}

func completeType(sig string) (int, error) {
	switch c := sig[0]; c {
	case 'a':
		if len(sig) < 2 {
			return 0, fmt.Errorf("array without element type in %q", sig)
		}
		n, err := completeType(sig[1:])
		return n + 1, err
	case '(', '{':
		closer := byte(')')
		if c == '{' {
			closer = '}'
		}
		i := 1
		for i < len(sig) && sig[i] != closer {
			n, err := completeType(sig[i:])
			if err != nil {
				return 0, err
			}
			i += n
		}
		if i >= len(sig) {
			return 0, fmt.Errorf("unterminated %q in %q", c, sig)
		}
		return i + 1, nil
	default:
		if !strings.ContainsRune("ybnqiuxtdsogvh", rune(c)) {
			return 0, fmt.Errorf("unknown type %q in %q", c, sig)
		}
		return 1, nil
	}
}

func coerceArgs(sig string, args []any) ([]any, error) {
	types, err := SplitSignature(sig)
	if err != nil {
		return nil, err
	}
	if len(args) != len(types) {
		return nil, fmt.Errorf("want %d arguments (%q), got %d: %w", len(types), sig, len(args), ErrInvalidArgs)
	}

	out := make([]any, len(args))
	for i, t := range types {
		v, ok := coerce(t, args[i])
		if !ok {
			return nil, fmt.Errorf("argument %d: want %q, got %T: %w", i, t, args[i], ErrInvalidArgs)
		}
		out[i] = v
	}
	return out, nil
}

func coerce(sig string, v any) (any, bool) {
	switch sig {
	case "s":
		s, ok := v.(string)
		return s, ok
	case "o":
		var p dbus.ObjectPath
		switch x := v.(type) {
		case dbus.ObjectPath:
			p = x
		case string:
			p = dbus.ObjectPath(x)
		default:
			return nil, false
		}
		return p, p.IsValid()
	case "y":
		switch x := v.(type) {
		case byte:
			return x, true
		case int:
			return byte(x), x >= 0 && x <= math.MaxUint8
		case float64:
			return byte(x), x >= 0 && x <= math.MaxUint8 && x == math.Trunc(x)
		}
		return nil, false
	case "v":
		v = plain(v)
		return v, v != nil
	case "a{sv}":
		switch x := v.(type) {
		case nil:
			return Properties{}, true
		case Properties:
			return plain(map[string]any(x.Clone())), true
		case map[string]any:
			return plain(x).(Properties), true
		case map[string]dbus.Variant:
			return plain(x).(Properties), true
		}
		return nil, false
	default:
		return v, true
	}
}

// plain unwraps variants and turns decoded JSON shapes into the types the
// mock stores: string lists become []string and maps become Properties.
func plain(v any) any {
	switch x := v.(type) {
	case dbus.Variant:
		return plain(x.Value())
	case map[string]dbus.Variant:
		out := make(Properties, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	case map[string]any:
		out := make(Properties, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	case []any:
		strs := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				out := make([]any, len(x))
				for i, e := range x {
					out[i] = plain(e)
				}
				return out
			}
			strs = append(strs, s)
		}
		return strs
	default:
		return v
	}
}
