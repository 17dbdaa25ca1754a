package service

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/pccr10001/ofonomock/internal/ofono"
)

// Typed wrappers over Call for the admin API. They go through the same
// dispatch and journal as bus clients.

func (s *Service) AddModem(name string, props ofono.Properties) (dbus.ObjectPath, error) {
	out, err := s.Call(ofono.ManagerPath, ofono.MockInterface, "AddModem", name, props)
	if err != nil {
		return "", err
	}
	return out[0].(dbus.ObjectPath), nil
}

func (s *Service) GetModems() ([]ofono.PathProperties, error) {
	out, err := s.Call(ofono.ManagerPath, ofono.ManagerInterface, "GetModems")
	if err != nil {
		return nil, err
	}
	return out[0].([]ofono.PathProperties), nil
}

func (s *Service) ModemProperties(modem dbus.ObjectPath) (ofono.Properties, error) {
	out, err := s.Call(modem, ofono.ModemInterface, "GetProperties")
	if err != nil {
		return nil, err
	}
	return out[0].(ofono.Properties), nil
}

func (s *Service) SetModemProperty(modem dbus.ObjectPath, name string, value any) error {
	_, err := s.Call(modem, ofono.ModemInterface, "SetProperty", name, value)
	return err
}

func (s *Service) Dial(modem dbus.ObjectPath, number, hideCallerID string) (dbus.ObjectPath, error) {
	out, err := s.Call(modem, ofono.VoiceCallManagerInterface, "Dial", number, hideCallerID)
	if err != nil {
		return "", err
	}
	return out[0].(dbus.ObjectPath), nil
}

func (s *Service) GetCalls(modem dbus.ObjectPath) ([]ofono.PathProperties, error) {
	out, err := s.Call(modem, ofono.VoiceCallManagerInterface, "GetCalls")
	if err != nil {
		return nil, err
	}
	return out[0].([]ofono.PathProperties), nil
}

func (s *Service) HangupAll(modem dbus.ObjectPath) error {
	_, err := s.Call(modem, ofono.VoiceCallManagerInterface, "HangupAll")
	return err
}

func (s *Service) Hangup(call dbus.ObjectPath) error {
	_, err := s.Call(call, ofono.VoiceCallInterface, "Hangup")
	return err
}

// ModemPath turns a modem name from a URL into its object path.
func ModemPath(name string) (dbus.ObjectPath, error) {
	p := dbus.ObjectPath("/" + name)
	if name == "" || !p.IsValid() {
		return "", fmt.Errorf("modem name %q: %w", name, ofono.ErrInvalidArgs)
	}
	return p, nil
}

// CallPath turns a modem and call name from a URL into the call's object path.
func CallPath(modem, call string) (dbus.ObjectPath, error) {
	p := dbus.ObjectPath("/" + modem + "/" + call)
	if modem == "" || call == "" || !p.IsValid() {
		return "", fmt.Errorf("call %q on modem %q: %w", call, modem, ofono.ErrInvalidArgs)
	}
	return p, nil
}
