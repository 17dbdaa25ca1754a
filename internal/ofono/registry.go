package ofono

import (
	"fmt"
	"slices"

	"github.com/godbus/dbus/v5"
)

// Signal is an event emitted after a state change. Signature is the D-Bus
// signature of Body, which lets the bus adapter wrap variants and property
// maps without knowing each signal.
type Signal struct {
	Path      dbus.ObjectPath
	Interface string
	Member    string
	Signature string
	Body      []any
}

// Name returns the fully qualified member name, e.g.
// "org.ofono.VoiceCallManager.CallAdded".
func (s Signal) Name() string {
	return s.Interface + "." + s.Member
}

// ObjectEvent reports an object entering or leaving the Registry.
type ObjectEvent struct {
	Object  Object
	Removed bool
}

// Registry owns every live object of the mock keyed by path.
type Registry struct {
	objects map[dbus.ObjectPath]Object

	signalListeners []func(Signal)
	objectListeners []func(ObjectEvent)
}

func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[dbus.ObjectPath]Object),
	}
}

// OnSignal registers fn to be called synchronously for every emitted signal.
func (r *Registry) OnSignal(fn func(Signal)) {
	r.signalListeners = append(r.signalListeners, fn)
}

// OnObject registers fn to be called synchronously whenever an object is added
// or removed.
func (r *Registry) OnObject(fn func(ObjectEvent)) {
	r.objectListeners = append(r.objectListeners, fn)
}

// Lookup resolves path to its live object.
func (r *Registry) Lookup(path dbus.ObjectPath) (Object, error) {
	obj, ok := r.objects[path]
	if !ok {
		return nil, unknownObject(path)
	}
	return obj, nil
}

// Objects returns every live object ordered by path.
func (r *Registry) Objects() []Object {
	paths := make([]dbus.ObjectPath, 0, len(r.objects))
	for p := range r.objects {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	out := make([]Object, 0, len(paths))
	for _, p := range paths {
		out = append(out, r.objects[p])
	}
	return out
}

func (r *Registry) Manager() (*Manager, error) {
	obj, err := r.Lookup(ManagerPath)
	if err != nil {
		return nil, err
	}
	m, ok := obj.(*Manager)
	if !ok {
		return nil, fmt.Errorf("%s is not a manager: %w", ManagerPath, ErrUnknownObject)
	}
	return m, nil
}

func (r *Registry) Modem(path dbus.ObjectPath) (*Modem, error) {
	obj, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}
	m, ok := obj.(*Modem)
	if !ok {
		return nil, fmt.Errorf("%s is not a modem: %w", path, ErrUnknownObject)
	}
	return m, nil
}

// VoiceCallManager resolves the voice call manager served at a modem path.
func (r *Registry) VoiceCallManager(path dbus.ObjectPath) (*VoiceCallManager, error) {
	m, err := r.Modem(path)
	if err != nil {
		return nil, err
	}
	return m.VoiceCallManager(), nil
}

func (r *Registry) VoiceCall(path dbus.ObjectPath) (*VoiceCall, error) {
	obj, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*VoiceCall)
	if !ok {
		return nil, fmt.Errorf("%s is not a voice call: %w", path, ErrUnknownObject)
	}
	return c, nil
}

// live reports whether obj itself, not just an object at its path, is
// registered.
func (r *Registry) live(obj Object) bool {
	cur, ok := r.objects[obj.ObjectPath()]
	return ok && cur == obj
}

func (r *Registry) add(obj Object) error {
	path := obj.ObjectPath()
	if !path.IsValid() {
		return fmt.Errorf("invalid object path %q: %w", path, ErrInvalidArgs)
	}
	if _, exists := r.objects[path]; exists {
		return fmt.Errorf("object %s: %w", path, ErrDuplicateObject)
	}
	r.objects[path] = obj

	for _, fn := range r.objectListeners {
		fn(ObjectEvent{Object: obj})
	}
	return nil
}

func (r *Registry) remove(path dbus.ObjectPath) error {
	obj, ok := r.objects[path]
	if !ok {
		return unknownObject(path)
	}
	delete(r.objects, path)

	for _, fn := range r.objectListeners {
		fn(ObjectEvent{Object: obj, Removed: true})
	}
	return nil
}

func (r *Registry) emit(sig Signal) {
	for _, fn := range r.signalListeners {
		fn(sig)
	}
}
