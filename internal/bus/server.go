// Package bus serves the ofono object tree on a D-Bus connection.
package bus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/service"
	"github.com/pccr10001/ofonomock/pkg/logger"
)

const introspectableInterface = "org.freedesktop.DBus.Introspectable"

var ErrNameTaken = errors.New("bus name already taken")

// Conn is the subset of *dbus.Conn the Server needs.
type Conn interface {
	Export(v any, path dbus.ObjectPath, iface string) error
	ExportMethodTable(methods map[string]any, path dbus.ObjectPath, iface string) error
	Emit(path dbus.ObjectPath, name string, values ...any) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Close() error
}

// Connect opens a private connection to the "system" or "session" bus.
func Connect(busType string) (*dbus.Conn, error) {
	switch busType {
	case "system":
		return dbus.ConnectSystemBus()
	case "session":
		return dbus.ConnectSessionBus()
	default:
		return nil, fmt.Errorf("unknown bus type %q", busType)
	}
}

type Server struct {
	conn Conn
	svc  *service.Service
	name string

	mu       sync.Mutex
	exported map[dbus.ObjectPath][]string
	stopped  bool
}

func NewServer(conn Conn, svc *service.Service, name string) *Server {
	if name == "" {
		name = ofono.BusName
	}
	return &Server{
		conn:     conn,
		svc:      svc,
		name:     name,
		exported: make(map[dbus.ObjectPath][]string),
	}
}

// Start exports every live object, follows the tree from then on and claims
// the well-known name.
func (s *Server) Start() error {
	s.svc.WatchObjects(s.onObject)
	s.svc.Subscribe(s.onSignal)

	reply, err := s.conn.RequestName(s.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request name %s: %w", s.name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%s: %w", s.name, ErrNameTaken)
	}
	logger.Log.Infof("Serving %s on D-Bus", s.name)
	return nil
}

// Stop unexports everything and closes the connection.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	for path := range s.exported {
		s.unexportLocked(path)
	}
	return s.conn.Close()
}

func (s *Server) onObject(ev ofono.ObjectEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	path := ev.Object.ObjectPath()
	if ev.Removed {
		s.unexportLocked(path)
		return
	}
	if err := s.exportLocked(ev.Object); err != nil {
		logger.Log.Errorf("Failed to export %s: %v", path, err)
	}
}

func (s *Server) exportLocked(obj ofono.Object) error {
	path := obj.ObjectPath()
	ifaces := obj.Interfaces()

	for _, iface := range ifaces {
		var err error
		if v := s.objectFor(obj, iface); v != nil {
			err = s.conn.Export(v, path, iface)
		} else {
			err = s.conn.ExportMethodTable(s.stubTable(path, iface), path, iface)
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", iface, err)
		}
	}
	if err := s.conn.Export(introspectable{s: s, path: path}, path, introspectableInterface); err != nil {
		return fmt.Errorf("export %s: %w", introspectableInterface, err)
	}

	s.exported[path] = ifaces
	logger.Log.Debugf("Exported %s %v", path, ifaces)
	return nil
}

func (s *Server) unexportLocked(path dbus.ObjectPath) {
	for _, iface := range append(s.exported[path], introspectableInterface) {
		if err := s.conn.Export(nil, path, iface); err != nil {
			logger.Log.Warnf("Failed to unexport %s %s: %v", path, iface, err)
		}
	}
	delete(s.exported, path)
}

// objectFor returns the typed handler of iface, or nil for the stub
// interfaces served from method tables.
func (s *Server) objectFor(obj ofono.Object, iface string) any {
	path := obj.ObjectPath()
	switch iface {
	case ofono.ManagerInterface:
		return managerObject{s: s}
	case ofono.MockInterface:
		return mockObject{s: s}
	case ofono.ModemInterface:
		return modemObject{s: s, path: path}
	case ofono.VoiceCallManagerInterface:
		return voiceCallManagerObject{s: s, path: path}
	case ofono.VoiceCallInterface:
		return voiceCallObject{s: s, path: path}
	}
	return nil
}

func (s *Server) onSignal(sig ofono.Signal) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}

	body, err := encodeBody(sig.Signature, sig.Body)
	if err != nil {
		logger.Log.Errorf("Failed to encode %s: %v", sig.Name(), err)
		return
	}
	if err := s.conn.Emit(sig.Path, sig.Name(), body...); err != nil {
		logger.Log.Warnf("Failed to emit %s on %s: %v", sig.Name(), sig.Path, err)
	}
}

// call runs one method through the service and maps its error.
func (s *Server) call(path dbus.ObjectPath, iface, member string, args ...any) ([]any, *dbus.Error) {
	out, err := s.svc.Call(path, iface, member, args...)
	if err != nil {
		return nil, dbusError(err)
	}
	return out, nil
}

func (s *Server) interfacesAt(path dbus.ObjectPath) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exported[path]
}

func dbusError(err error) *dbus.Error {
	return dbus.NewError(ofono.ErrorName(err), []any{err.Error()})
}
