package bus

import (
	"encoding/xml"
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/pccr10001/ofonomock/internal/ofono"
)

// introspectable answers Introspect from the dispatch table and the live tree,
// so calls and modems appear as they are added.
type introspectable struct {
	s    *Server
	path dbus.ObjectPath
}

func (i introspectable) Introspect() (string, *dbus.Error) {
	node := introspect.Node{
		Name:       string(i.path),
		Interfaces: []introspect.Interface{introspect.IntrospectData},
	}
	for _, iface := range i.s.interfacesAt(i.path) {
		node.Interfaces = append(node.Interfaces, describe(iface))
	}
	for _, child := range children(i.path, i.s.svc.Paths()) {
		node.Children = append(node.Children, introspect.Node{Name: child})
	}

	b, err := xml.Marshal(node)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return introspect.IntrospectDeclarationString + string(b), nil
}

func describe(iface string) introspect.Interface {
	out := introspect.Interface{Name: iface}
	for _, m := range ofono.Methods(iface) {
		var args []introspect.Arg
		args = append(args, describeArgs(m.In, "in")...)
		args = append(args, describeArgs(m.Out, "out")...)
		out.Methods = append(out.Methods, introspect.Method{Name: m.Name, Args: args})
	}
	for _, sig := range ofono.Signals(iface) {
		out.Signals = append(out.Signals, introspect.Signal{Name: sig.Name, Args: describeArgs(sig.Signature, "")})
	}
	return out
}

func describeArgs(sig, direction string) []introspect.Arg {
	// Table signatures are checked by the ofono tests.
	types, _ := ofono.SplitSignature(sig)
	args := make([]introspect.Arg, 0, len(types))
	for _, t := range types {
		args = append(args, introspect.Arg{Type: t, Direction: direction})
	}
	return args
}

// children returns the names of the direct children of parent among paths.
func children(parent dbus.ObjectPath, paths []dbus.ObjectPath) []string {
	prefix := string(parent)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var out []string
	for _, p := range paths {
		rest, ok := strings.CutPrefix(string(p), prefix)
		if !ok || rest == "" {
			continue
		}
		name, _, _ := strings.Cut(rest, "/")
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
