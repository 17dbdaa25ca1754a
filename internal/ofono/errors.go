package ofono

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

var (
	ErrNotImplemented  = errors.New("not implemented")
	ErrDuplicateObject = errors.New("object already exists")
	ErrUnknownObject   = errors.New("unknown object")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrInvalidArgs     = errors.New("invalid arguments")
)

// D-Bus error names returned to bus clients.
const (
	ErrorNameNotImplemented = "org.ofono.Error.NotImplemented"
	ErrorNameDuplicate      = "org.freedesktop.DBus.Mock.NameError"
	ErrorNameUnknownObject  = "org.freedesktop.DBus.Error.UnknownObject"
	ErrorNameUnknownMethod  = "org.freedesktop.DBus.Error.UnknownMethod"
	ErrorNameInvalidArgs    = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrorNameFailed         = "org.freedesktop.DBus.Error.Failed"
)

func IsNotImplementedError(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}

func IsDuplicateObjectError(err error) bool {
	return errors.Is(err, ErrDuplicateObject)
}

func IsUnknownObjectError(err error) bool {
	return errors.Is(err, ErrUnknownObject)
}

func IsUnknownMethodError(err error) bool {
	return errors.Is(err, ErrUnknownMethod)
}

func IsInvalidArgsError(err error) bool {
	return errors.Is(err, ErrInvalidArgs)
}

// ErrorName maps an error from this package to the D-Bus error name a real
// oFono (or the dbusmock host) would reply with.
func ErrorName(err error) string {
	switch {
	case IsNotImplementedError(err):
		return ErrorNameNotImplemented
	case IsDuplicateObjectError(err):
		return ErrorNameDuplicate
	case IsUnknownObjectError(err):
		return ErrorNameUnknownObject
	case IsUnknownMethodError(err):
		return ErrorNameUnknownMethod
	case IsInvalidArgsError(err):
		return ErrorNameInvalidArgs
	default:
		return ErrorNameFailed
	}
}

func notImplemented(iface, member string) error {
	return fmt.Errorf("%s.%s: %w", iface, member, ErrNotImplemented)
}

func unknownObject(path dbus.ObjectPath) error {
	return fmt.Errorf("%s: %w", path, ErrUnknownObject)
}
