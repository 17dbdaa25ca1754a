package ofono

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModemSetProperty(t *testing.T) {
	reg, _, rec := newTestManager(t, Options{})
	rec.signals = nil

	modem, err := reg.Modem("/ril_0")
	if err != nil {
		t.Fatalf("failed to resolve modem: %v", err)
	}

	modem.SetProperty("Powered", false)

	if got := modem.GetProperties()["Powered"]; got != false {
		t.Fatalf("expected Powered=false, got %v", got)
	}
	if len(rec.signals) != 1 {
		t.Fatalf("expected exactly one signal, got %v", rec.members())
	}
	want := Signal{
		Path:      "/ril_0",
		Interface: ModemInterface,
		Member:    "PropertyChanged",
		Signature: "sv",
		Body:      []any{"Powered", false},
	}
	if diff := cmp.Diff(want, rec.signals[0]); diff != "" {
		t.Fatalf("unexpected signal (-want +got):\n%s", diff)
	}
}

func TestModemSetUnknownProperty(t *testing.T) {
	reg, _, _ := newTestManager(t, Options{})
	modem, err := reg.Modem("/ril_0")
	if err != nil {
		t.Fatalf("failed to resolve modem: %v", err)
	}

	modem.SetProperty("Serial", "123456789012345")
	if diff := cmp.Diff("123456789012345", modem.GetProperties()["Serial"]); diff != "" {
		t.Fatalf("unexpected property (-want +got):\n%s", diff)
	}
}

func TestModemSnapshotIsolation(t *testing.T) {
	reg, _, _ := newTestManager(t, Options{})
	modem, err := reg.Modem("/ril_0")
	if err != nil {
		t.Fatalf("failed to resolve modem: %v", err)
	}

	props := modem.GetProperties()
	props["Powered"] = false
	props["Interfaces"].([]string)[0] = "org.example.Bogus"

	fresh := modem.GetProperties()
	if fresh["Powered"] != true {
		t.Fatal("snapshot write leaked into Powered")
	}
	want := []string{CallVolumeInterface, VoiceCallManagerInterface}
	if diff := cmp.Diff(want, fresh["Interfaces"]); diff != "" {
		t.Fatalf("snapshot write leaked into Interfaces (-want +got):\n%s", diff)
	}
}

func TestModemInterfaces(t *testing.T) {
	reg, _, _ := newTestManager(t, Options{})
	modem, err := reg.Modem("/ril_0")
	if err != nil {
		t.Fatalf("failed to resolve modem: %v", err)
	}

	want := append([]string{ModemInterface, VoiceCallManagerInterface}, stubInterfaces...)
	if diff := cmp.Diff(want, modem.Interfaces()); diff != "" {
		t.Fatalf("unexpected interfaces (-want +got):\n%s", diff)
	}

	vcm, err := reg.VoiceCallManager("/ril_0")
	if err != nil {
		t.Fatalf("failed to resolve voice call manager: %v", err)
	}
	if vcm != modem.VoiceCallManager() || vcm.ObjectPath() != modem.ObjectPath() {
		t.Fatal("voice call manager is not the modem's own")
	}
	if diff := cmp.Diff([]string{"911", "13373"}, vcm.GetProperties()["EmergencyNumbers"]); diff != "" {
		t.Fatalf("unexpected emergency numbers (-want +got):\n%s", diff)
	}
}
