package clipboard

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	klipperBusName = "org.kde.klipper"
	klipperPath    = dbus.ObjectPath("/klipper")
	klipperSetText = "org.kde.klipper.klipper.setClipboardContents"
)

// Klipper copies through the KDE clipboard service on the session bus.
type Klipper struct{}

func (*Klipper) Name() string { return "klipper" }

// Available reports whether Klipper owns its bus name.
func (k *Klipper) Available(ctx context.Context) bool {
	if !sessionBusConfigured() {
		return false
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return false
	}
	has, err := hasOwner(ctx, conn, klipperBusName)
	return err == nil && has
}

// Copy sets the clipboard contents. The shared session connection is left
// open for later calls.
func (k *Klipper) Copy(ctx context.Context, text string) error {
	if !sessionBusConfigured() {
		return fmt.Errorf("%w: no D-Bus session bus", ErrNoClipboard)
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("%w: connect session bus: %v", ErrNoClipboard, err)
	}
	obj := conn.Object(klipperBusName, klipperPath)
	if call := obj.CallWithContext(ctx, klipperSetText, 0, text); call.Err != nil {
		return fmt.Errorf("klipper: %w", call.Err)
	}
	return nil
}

func hasOwner(ctx context.Context, conn *dbus.Conn, name string) (bool, error) {
	var has bool
	err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, name).Store(&has)
	return has, err
}
