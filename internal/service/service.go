// Package service hosts the ofono object tree for its front ends. Every
// request from the bus or the admin API runs to completion under one lock,
// and every method call and emitted signal is journaled.
package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/pccr10001/ofonomock/internal/model"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/repository"
	"github.com/pccr10001/ofonomock/pkg/logger"
)

type Service struct {
	mu  sync.Mutex
	reg *ofono.Registry

	calls   *repository.CallRepository
	signals *repository.SignalRepository

	subscribers []func(ofono.Signal)
	watchers    []func(ofono.ObjectEvent)
}

func New(calls *repository.CallRepository, signals *repository.SignalRepository) *Service {
	s := &Service{
		reg:     ofono.NewRegistry(),
		calls:   calls,
		signals: signals,
	}
	s.reg.OnSignal(s.onSignal)
	s.reg.OnObject(s.onObject)
	return s
}

// Start creates the Manager and, depending on opts, the default modem.
// Watchers and subscribers registered before Start see the bootstrap.
func (s *Service) Start(opts ofono.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := ofono.NewManager(s.reg, opts)
	if err != nil {
		return fmt.Errorf("start manager: %w", err)
	}
	logger.Log.Infof("oFono mock started with modems %v", m.Modems())
	return nil
}

// Subscribe registers fn for every signal emitted from now on. fn runs with
// the service lock held and must not call back into the Service.
func (s *Service) Subscribe(fn func(ofono.Signal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// WatchObjects registers fn for objects entering and leaving the tree, first
// replaying an add for every live object. fn runs with the service lock held
// and must not call back into the Service.
func (s *Service) WatchObjects(fn func(ofono.ObjectEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchers = append(s.watchers, fn)
	for _, obj := range s.reg.Objects() {
		fn(ofono.ObjectEvent{Object: obj})
	}
}

// Paths lists the paths of all live objects.
func (s *Service) Paths() []dbus.ObjectPath {
	s.mu.Lock()
	defer s.mu.Unlock()

	objs := s.reg.Objects()
	out := make([]dbus.ObjectPath, 0, len(objs))
	for _, obj := range objs {
		out = append(out, obj.ObjectPath())
	}
	return out
}

// Call dispatches one method call through the ofono method table and
// journals it.
func (s *Service) Call(path dbus.ObjectPath, iface, member string, args ...any) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.reg.Call(path, iface, member, args...)
	s.journalCall(path, iface, member, args, err)
	if err != nil {
		logger.Log.Debugf("%s %s.%s failed: %v", path, iface, member, err)
	}
	return out, err
}

func (s *Service) journalCall(path dbus.ObjectPath, iface, member string, args []any, callErr error) {
	if s.calls == nil {
		return
	}
	rec := &model.MethodCall{
		Path:      string(path),
		Interface: iface,
		Method:    member,
		Args:      encodeJSON(args),
	}
	if callErr != nil {
		rec.Error = ofono.ErrorName(callErr)
	}
	if err := s.calls.Create(rec); err != nil {
		logger.Log.Warnf("Failed to journal call %s.%s: %v", iface, member, err)
	}
}

func (s *Service) onSignal(sig ofono.Signal) {
	logger.Log.Debugf("Signal %s on %s: %v", sig.Name(), sig.Path, sig.Body)

	if s.signals != nil {
		rec := &model.SignalRecord{
			Path:      string(sig.Path),
			Interface: sig.Interface,
			Member:    sig.Member,
			Body:      encodeJSON(sig.Body),
		}
		if err := s.signals.Create(rec); err != nil {
			logger.Log.Warnf("Failed to journal signal %s: %v", sig.Name(), err)
		}
	}

	for _, fn := range s.subscribers {
		fn(sig)
	}
}

func (s *Service) onObject(ev ofono.ObjectEvent) {
	if ev.Removed {
		logger.Log.Debugf("Object %s removed", ev.Object.ObjectPath())
	} else {
		logger.Log.Debugf("Object %s added", ev.Object.ObjectPath())
	}
	for _, fn := range s.watchers {
		fn(ev)
	}
}

func encodeJSON(values []any) string {
	if values == nil {
		values = []any{}
	}
	plain := make([]any, len(values))
	for i, v := range values {
		plain[i] = jsonValue(v)
	}
	b, err := json.Marshal(plain)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(values))
	}
	return string(b)
}

// jsonValue unwraps D-Bus variants, which otherwise marshal as {}.
func jsonValue(v any) any {
	switch x := v.(type) {
	case dbus.Variant:
		return jsonValue(x.Value())
	case map[string]dbus.Variant:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	default:
		return v
	}
}
