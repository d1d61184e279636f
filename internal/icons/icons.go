package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the glyphs for the current style.
type Icons struct {
	Play       string
	Pause      string
	Stop       string
	Live       string
	Device     string
	VolumeOff  string
	VolumeLow  string
	VolumeHigh string
	Offline    string
}

var (
	nerdIcons = Icons{
		Play:       "",  // nf-fa-play
		Pause:      "",  // nf-fa-pause
		Stop:       "",  // nf-fa-stop
		Live:       "󰐹",  // nf-md-broadcast
		Device:     "󰄙 ", // nf-md-cast
		VolumeOff:  "󰖁",  // nf-md-volume_off
		VolumeLow:  "󰖀",  // nf-md-volume_medium
		VolumeHigh: "󰕾",  // nf-md-volume_high
		Offline:    "󰄘",  // nf-md-cast_off
	}

	unicodeIcons = Icons{
		Play:       "▶",
		Pause:      "⏸",
		Stop:       "⏹",
		Live:       "●",
		Device:     "📺 ",
		VolumeOff:  "🔇",
		VolumeLow:  "🔉",
		VolumeHigh: "🔊",
		Offline:    "⚠",
	}

	noneIcons = Icons{
		Play:       ">",
		Pause:      "||",
		Stop:       "[]",
		Live:       "*",
		Device:     "",
		VolumeOff:  "vol",
		VolumeLow:  "vol",
		VolumeHigh: "vol",
		Offline:    "!",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = noneIcons
	}
}

func Play() string    { return current.Play }
func Pause() string   { return current.Pause }
func Stop() string    { return current.Stop }
func Live() string    { return current.Live }
func Offline() string { return current.Offline }

// Volume returns the speaker glyph for a 0-100 level.
func Volume(percent int) string {
	switch {
	case percent <= 0:
		return current.VolumeOff
	case percent < 50:
		return current.VolumeLow
	default:
		return current.VolumeHigh
	}
}

// FormatDevice prefixes a receiver name with the device icon.
func FormatDevice(name string) string {
	return current.Device + name
}
