package ofono

import (
	"fmt"
	"slices"

	"github.com/godbus/dbus/v5"
)

// Options controls how the Manager bootstraps.
type Options struct {
	// NoModem suppresses the default modem.
	NoModem bool
	// ModemName names the default modem; DefaultModemName when empty.
	ModemName string
}

// Manager is the org.ofono.Manager root object at "/".
type Manager struct {
	reg    *Registry
	modems []dbus.ObjectPath
}

// NewManager registers the root object and, unless opts.NoModem is set, adds
// the default modem.
func NewManager(reg *Registry, opts Options) (*Manager, error) {
	m := &Manager{reg: reg}
	if err := reg.add(m); err != nil {
		return nil, err
	}

	if !opts.NoModem {
		name := opts.ModemName
		if name == "" {
			name = DefaultModemName
		}
		if _, err := m.AddModem(name, nil); err != nil {
			return nil, fmt.Errorf("add default modem: %w", err)
		}
	}
	return m, nil
}

func (m *Manager) ObjectPath() dbus.ObjectPath {
	return ManagerPath
}

func (m *Manager) Interfaces() []string {
	return []string{ManagerInterface, MockInterface}
}

// Modems returns the modem paths in creation order.
func (m *Manager) Modems() []dbus.ObjectPath {
	return slices.Clone(m.modems)
}

func (m *Manager) GetModems() []PathProperties {
	out := make([]PathProperties, 0, len(m.modems))
	for _, p := range m.modems {
		modem, err := m.reg.Modem(p)
		if err != nil {
			panic(fmt.Sprintf("ofono: manager lists %s but it does not resolve: %v", p, err))
		}
		out = append(out, PathProperties{Path: p, Properties: modem.GetProperties()})
	}
	return out
}

// AddModem creates the modem "/"+name together with its voice call manager
// and announces it with ModemAdded. properties is reserved for future use and
// ignored.
func (m *Manager) AddModem(name string, properties Properties) (dbus.ObjectPath, error) {
	if name == "" {
		return "", fmt.Errorf("empty modem name: %w", ErrInvalidArgs)
	}
	path := dbus.ObjectPath("/" + name)

	modem := newModem(m.reg, path)
	if err := m.reg.add(modem); err != nil {
		return "", err
	}
	m.modems = append(m.modems, path)

	m.reg.emit(Signal{
		Path:      ManagerPath,
		Interface: ManagerInterface,
		Member:    "ModemAdded",
		Signature: "oa{sv}",
		Body:      []any{path, modem.GetProperties()},
	})
	return path, nil
}
