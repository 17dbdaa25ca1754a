package service

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/repository"
)

func newTestService(t *testing.T, opts ofono.Options) (*Service, *repository.CallRepository, *repository.SignalRepository) {
	t.Helper()

	db, err := repository.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	calls := repository.NewCallRepository(db)
	signals := repository.NewSignalRepository(db)
	s := New(calls, signals)
	if err := s.Start(opts); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	return s, calls, signals
}

func TestStartBootstrapsDefaultModem(t *testing.T) {
	s, _, signals := newTestService(t, ofono.Options{})

	want := []dbus.ObjectPath{"/", "/ril_0"}
	if diff := cmp.Diff(want, s.Paths()); diff != "" {
		t.Fatalf("unexpected paths (-want +got):\n%s", diff)
	}

	recs, err := signals.List("ModemAdded")
	if err != nil {
		t.Fatalf("failed to list signals: %v", err)
	}
	if len(recs) != 1 || recs[0].Path != "/" {
		t.Fatalf("expected one journaled ModemAdded on /, got %+v", recs)
	}
}

func TestCallJournalsSuccessAndFailure(t *testing.T) {
	s, calls, _ := newTestService(t, ofono.Options{})

	if _, err := s.Dial("/ril_0", "123", ""); err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	if _, err := s.Call("/ril_0/voicecall01", ofono.VoiceCallInterface, "Answer"); !ofono.IsNotImplementedError(err) {
		t.Fatalf("expected NotImplemented, got %v", err)
	}

	recs, err := calls.List("")
	if err != nil {
		t.Fatalf("failed to list calls: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 journaled calls, got %d", len(recs))
	}
	if recs[0].Method != "Dial" || recs[0].Args != `["123",""]` || recs[0].Error != "" {
		t.Fatalf("unexpected Dial record: %+v", recs[0])
	}
	if recs[1].Method != "Answer" || recs[1].Error != ofono.ErrorNameNotImplemented {
		t.Fatalf("unexpected Answer record: %+v", recs[1])
	}
}

func TestCallJournalsUnwrappedVariants(t *testing.T) {
	s, calls, signals := newTestService(t, ofono.Options{})

	if _, err := s.Call("/ril_0", ofono.ModemInterface, "SetProperty", "Online", dbus.MakeVariant(false)); err != nil {
		t.Fatalf("failed to set property: %v", err)
	}

	recs, err := calls.List("SetProperty")
	if err != nil {
		t.Fatalf("failed to list calls: %v", err)
	}
	if len(recs) != 1 || recs[0].Args != `["Online",false]` {
		t.Fatalf("unexpected SetProperty records: %+v", recs)
	}

	sigs, err := signals.List("PropertyChanged")
	if err != nil {
		t.Fatalf("failed to list signals: %v", err)
	}
	if len(sigs) != 1 || sigs[0].Body != `["Online",false]` {
		t.Fatalf("unexpected PropertyChanged records: %+v", sigs)
	}
}

func TestSubscribeAndWatchObjects(t *testing.T) {
	s, _, _ := newTestService(t, ofono.Options{})

	var members []string
	s.Subscribe(func(sig ofono.Signal) {
		members = append(members, sig.Member)
	})

	var events []string
	s.WatchObjects(func(ev ofono.ObjectEvent) {
		prefix := "+"
		if ev.Removed {
			prefix = "-"
		}
		events = append(events, prefix+string(ev.Object.ObjectPath()))
	})

	call, err := s.Dial("/ril_0", "123", "")
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	if err := s.Hangup(call); err != nil {
		t.Fatalf("failed to hang up: %v", err)
	}

	if diff := cmp.Diff([]string{"CallAdded", "CallRemoved"}, members); diff != "" {
		t.Fatalf("unexpected signals (-want +got):\n%s", diff)
	}
	wantEvents := []string{"+/", "+/ril_0", "+/ril_0/voicecall01", "-/ril_0/voicecall01"}
	if diff := cmp.Diff(wantEvents, events); diff != "" {
		t.Fatalf("unexpected object events (-want +got):\n%s", diff)
	}
}

func TestTypedOperations(t *testing.T) {
	s, _, _ := newTestService(t, ofono.Options{NoModem: true})

	path, err := s.AddModem("mock_ac", nil)
	if err != nil {
		t.Fatalf("failed to add modem: %v", err)
	}
	if path != "/mock_ac" {
		t.Fatalf("unexpected modem path %q", path)
	}
	if _, err := s.AddModem("mock_ac", nil); !ofono.IsDuplicateObjectError(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	if err := s.SetModemProperty(path, "Powered", false); err != nil {
		t.Fatalf("failed to set property: %v", err)
	}
	props, err := s.ModemProperties(path)
	if err != nil {
		t.Fatalf("failed to get properties: %v", err)
	}
	if props["Powered"] != false {
		t.Fatalf("expected Powered=false, got %v", props["Powered"])
	}

	for _, n := range []string{"1", "2"} {
		if _, err := s.Dial(path, n, ""); err != nil {
			t.Fatalf("failed to dial %s: %v", n, err)
		}
	}
	calls, err := s.GetCalls(path)
	if err != nil {
		t.Fatalf("failed to get calls: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}

	if err := s.HangupAll(path); err != nil {
		t.Fatalf("failed to hang up all: %v", err)
	}
	modems, err := s.GetModems()
	if err != nil {
		t.Fatalf("failed to get modems: %v", err)
	}
	if len(modems) != 1 || modems[0].Path != path {
		t.Fatalf("unexpected modems: %+v", modems)
	}
	calls, err = s.GetCalls(path)
	if err != nil {
		t.Fatalf("failed to get calls: %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no calls, got %+v", calls)
	}
}

func TestModemAndCallPath(t *testing.T) {
	if p, err := ModemPath("ril_0"); err != nil || p != "/ril_0" {
		t.Fatalf("unexpected ModemPath result %q, %v", p, err)
	}
	if _, err := ModemPath("bad name"); !ofono.IsInvalidArgsError(err) {
		t.Fatalf("expected invalid args, got %v", err)
	}
	if p, err := CallPath("ril_0", "voicecall01"); err != nil || p != "/ril_0/voicecall01" {
		t.Fatalf("unexpected CallPath result %q, %v", p, err)
	}
	if _, err := CallPath("ril_0", ""); !ofono.IsInvalidArgsError(err) {
		t.Fatalf("expected invalid args, got %v", err)
	}
}

func TestServiceWithoutJournal(t *testing.T) {
	s := New(nil, nil)
	if err := s.Start(ofono.Options{}); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if _, err := s.Dial("/ril_0", "123", ""); err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
}
