package ofono

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
)

func TestCallDialAndGetCalls(t *testing.T) {
	reg, _, rec := newTestManager(t, Options{})
	rec.signals = nil

	out, err := reg.Call("/ril_0", VoiceCallManagerInterface, "Dial", "123", "")
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	if diff := cmp.Diff([]any{dbus.ObjectPath("/ril_0/voicecall01")}, out); diff != "" {
		t.Fatalf("unexpected Dial reply (-want +got):\n%s", diff)
	}

	out, err = reg.Call("/ril_0", VoiceCallManagerInterface, "GetCalls")
	if err != nil {
		t.Fatalf("failed to get calls: %v", err)
	}
	calls := out[0].([]PathProperties)
	if len(calls) != 1 || calls[0].Properties["LineIdentification"] != "123" {
		t.Fatalf("unexpected calls: %+v", calls)
	}

	if _, err := reg.Call("/ril_0/voicecall01", VoiceCallInterface, "Hangup"); err != nil {
		t.Fatalf("failed to hang up: %v", err)
	}
	if diff := cmp.Diff([]string{"CallAdded", "CallRemoved"}, rec.members()); diff != "" {
		t.Fatalf("unexpected signals (-want +got):\n%s", diff)
	}
}

func TestCallErrors(t *testing.T) {
	reg, _, _ := newTestManager(t, Options{})
	if _, err := reg.Call("/ril_0", VoiceCallManagerInterface, "Dial", "123", ""); err != nil {
		t.Fatalf("failed to dial: %v", err)
	}

	tests := []struct {
		name   string
		path   dbus.ObjectPath
		iface  string
		member string
		args   []any
		check  func(error) bool
	}{
		{
			name:   "unknown object",
			path:   "/ril_9",
			iface:  ModemInterface,
			member: "GetProperties",
			check:  IsUnknownObjectError,
		},
		{
			name:   "interface not on object",
			path:   "/ril_0/voicecall01",
			iface:  ModemInterface,
			member: "GetProperties",
			check:  IsUnknownMethodError,
		},
		{
			name:   "unknown method",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "Conference",
			check:  IsUnknownMethodError,
		},
		{
			name:   "wrong argument count",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "Dial",
			args:   []any{"123"},
			check:  IsInvalidArgsError,
		},
		{
			name:   "wrong argument type",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "SendTones",
			args:   []any{42},
			check:  IsInvalidArgsError,
		},
		{
			name:   "invalid object path",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "PrivateChat",
			args:   []any{"not a path"},
			check:  IsInvalidArgsError,
		},
		{
			name:   "nil variant",
			path:   "/ril_0",
			iface:  ModemInterface,
			member: "SetProperty",
			args:   []any{"Powered", nil},
			check:  IsInvalidArgsError,
		},
		{
			name:   "private chat",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "PrivateChat",
			args:   []any{dbus.ObjectPath("/ril_0/voicecall01")},
			check:  IsNotImplementedError,
		},
		{
			name:   "create multiparty",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "CreateMultiparty",
			check:  IsNotImplementedError,
		},
		{
			name:   "hangup multiparty",
			path:   "/ril_0",
			iface:  VoiceCallManagerInterface,
			member: "HangupMultiparty",
			check:  IsNotImplementedError,
		},
		{
			name:   "answer",
			path:   "/ril_0/voicecall01",
			iface:  VoiceCallInterface,
			member: "Answer",
			check:  IsNotImplementedError,
		},
		{
			name:   "deflect",
			path:   "/ril_0/voicecall01",
			iface:  VoiceCallInterface,
			member: "Deflect",
			args:   []any{"456"},
			check:  IsNotImplementedError,
		},
		{
			name:   "sim stub",
			path:   "/ril_0",
			iface:  SimManagerInterface,
			member: "EnterPin",
			args:   []any{"pin", "1234"},
			check:  IsNotImplementedError,
		},
		{
			name:   "sim stub icon",
			path:   "/ril_0",
			iface:  SimManagerInterface,
			member: "GetIcon",
			args:   []any{float64(1)},
			check:  IsNotImplementedError,
		},
		{
			name:   "network registration stub",
			path:   "/ril_0",
			iface:  NetworkRegistrationInterface,
			member: "Scan",
			check:  IsNotImplementedError,
		},
		{
			name:   "stub on manager",
			path:   "/",
			iface:  ConnectionManagerInterface,
			member: "GetContexts",
			check:  IsUnknownMethodError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Call(tt.path, tt.iface, tt.member, tt.args...)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCallAcknowledgedMethods(t *testing.T) {
	reg, _, rec := newTestManager(t, Options{})
	rec.signals = nil

	for _, member := range []string{"Transfer", "SwapCalls", "ReleaseAndAnswer", "ReleaseAndSwap", "HoldAndAnswer"} {
		out, err := reg.Call("/ril_0", VoiceCallManagerInterface, member)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", member, err)
		}
		if len(out) != 0 {
			t.Fatalf("%s: unexpected reply %v", member, out)
		}
	}
	if _, err := reg.Call("/ril_0", VoiceCallManagerInterface, "SendTones", "1234#"); err != nil {
		t.Fatalf("SendTones: unexpected error: %v", err)
	}
	if len(rec.signals) != 0 {
		t.Fatalf("expected no signals, got %v", rec.members())
	}
}

func TestCallNormalizesArguments(t *testing.T) {
	reg, _, rec := newTestManager(t, Options{NoModem: true})

	props := map[string]dbus.Variant{"Reserved": dbus.MakeVariant(true)}
	out, err := reg.Call(ManagerPath, MockInterface, "AddModem", "mock_ac", props)
	if err != nil {
		t.Fatalf("failed to add modem: %v", err)
	}
	if diff := cmp.Diff([]any{dbus.ObjectPath("/mock_ac")}, out); diff != "" {
		t.Fatalf("unexpected AddModem reply (-want +got):\n%s", diff)
	}

	if _, err := reg.Call("/mock_ac", ModemInterface, "SetProperty", "Online", dbus.MakeVariant(false)); err != nil {
		t.Fatalf("failed to set property: %v", err)
	}
	if _, err := reg.Call("/mock_ac", ModemInterface, "SetProperty", "Features", []any{"sms", "net"}); err != nil {
		t.Fatalf("failed to set property: %v", err)
	}

	out, err = reg.Call("/mock_ac", ModemInterface, "GetProperties")
	if err != nil {
		t.Fatalf("failed to get properties: %v", err)
	}
	got := out[0].(Properties)
	if got["Online"] != false {
		t.Fatalf("expected unwrapped Online=false, got %#v", got["Online"])
	}
	if diff := cmp.Diff([]string{"sms", "net"}, got["Features"]); diff != "" {
		t.Fatalf("unexpected Features (-want +got):\n%s", diff)
	}

	last := rec.signals[len(rec.signals)-1]
	if diff := cmp.Diff([]any{"Features", []string{"sms", "net"}}, last.Body); diff != "" {
		t.Fatalf("unexpected PropertyChanged body (-want +got):\n%s", diff)
	}
}

func TestSplitSignature(t *testing.T) {
	tests := []struct {
		sig  string
		want []string
		ok   bool
	}{
		{sig: "", ok: true},
		{sig: "s", want: []string{"s"}, ok: true},
		{sig: "sa{sv}", want: []string{"s", "a{sv}"}, ok: true},
		{sig: "a(oa{sv})", want: []string{"a(oa{sv})"}, ok: true},
		{sig: "oa{sv}ao", want: []string{"o", "a{sv}", "ao"}, ok: true},
		{sig: "a", ok: false},
		{sig: "a{sv", ok: false},
		{sig: "z", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			got, err := SplitSignature(tt.sig)
			if tt.ok != (err == nil) {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected types (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableSignatures(t *testing.T) {
	ifaces := append([]string{ManagerInterface, MockInterface, ModemInterface, VoiceCallManagerInterface, VoiceCallInterface}, StubInterfaces()...)
	for _, iface := range ifaces {
		if len(Methods(iface)) == 0 {
			t.Fatalf("%s has no methods", iface)
		}
		for _, m := range Methods(iface) {
			for _, sig := range []string{m.In, m.Out} {
				if _, err := SplitSignature(sig); err != nil {
					t.Fatalf("%s.%s: bad signature %q: %v", iface, m.Name, sig, err)
				}
			}
		}
		for _, s := range Signals(iface) {
			if _, err := SplitSignature(s.Signature); err != nil {
				t.Fatalf("%s.%s: bad signature %q: %v", iface, s.Name, s.Signature, err)
			}
		}
	}
}

func TestErrorName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: notImplemented(VoiceCallInterface, "Answer"), want: "org.ofono.Error.NotImplemented"},
		{err: unknownObject("/ril_9"), want: "org.freedesktop.DBus.Error.UnknownObject"},
		{err: ErrDuplicateObject, want: "org.freedesktop.DBus.Mock.NameError"},
		{err: ErrInvalidArgs, want: "org.freedesktop.DBus.Error.InvalidArgs"},
		{err: ErrUnknownMethod, want: "org.freedesktop.DBus.Error.UnknownMethod"},
		{err: errors.New("boom"), want: "org.freedesktop.DBus.Error.Failed"},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ErrorName(tt.err)); diff != "" {
			t.Fatalf("unexpected name for %v (-want +got):\n%s", tt.err, diff)
		}
	}
}
