// Package notify posts desktop notifications about receivers coming and going.
package notify

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Categories understood by notification servers.
const (
	CategoryDeviceAdded   = "device.added"
	CategoryDeviceRemoved = "device.removed"
)

// Notification is a single desktop notification.
type Notification struct {
	Title    string
	Body     string
	Icon     string // icon name or image path
	Category string
	// Receiver is the address the notification is about. Notifications
	// for the same receiver replace each other on screen.
	Receiver   string
	Timeout    int32 // ms, -1 = server default, 0 = never expire
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify returns the server-assigned ID, or 0 when nothing was shown.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

type disabled struct{}

func (disabled) Notify(Notification) (uint32, error) { return 0, nil }
func (disabled) Close(uint32) error                  { return nil }

// Disabled returns a notifier that sends nothing.
func Disabled() Notifier {
	return disabled{}
}

// DeviceJoined announces a receiver that became controllable.
func DeviceJoined(address, name, model string) Notification {
	body := "Ready to cast"
	if model != "" {
		body = model + " ready to cast"
	}
	return Notification{
		Title:    name + " connected",
		Body:     body,
		Icon:     "video-display",
		Category: CategoryDeviceAdded,
		Receiver: address,
		Timeout:  3000,
		Urgency:  UrgencyLow,
	}
}

// DeviceLost announces a receiver whose connection dropped.
func DeviceLost(address, name string) Notification {
	return Notification{
		Title:    name + " disconnected",
		Body:     "Reconnecting in the background",
		Icon:     "network-offline",
		Category: CategoryDeviceRemoved,
		Receiver: address,
		Timeout:  5000,
		Urgency:  UrgencyNormal,
	}
}
