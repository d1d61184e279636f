package device

// PlayerState is the media player state reported by a receiver.
type PlayerState int

const (
	PlayerUnknown PlayerState = iota
	PlayerIdle
	PlayerPlaying
	PlayerPaused
	PlayerBuffering
)

// String returns the state name.
func (s PlayerState) String() string {
	switch s {
	case PlayerIdle:
		return "Idle"
	case PlayerPlaying:
		return "Playing"
	case PlayerPaused:
		return "Paused"
	case PlayerBuffering:
		return "Buffering"
	default:
		return "Unknown"
	}
}

// ParsePlayerState maps the receiver's wire name (PLAYING, PAUSED, ...) to a PlayerState.
func ParsePlayerState(s string) PlayerState {
	switch s {
	case "IDLE":
		return PlayerIdle
	case "PLAYING":
		return PlayerPlaying
	case "PAUSED":
		return PlayerPaused
	case "BUFFERING":
		return PlayerBuffering
	default:
		return PlayerUnknown
	}
}

// StreamType tells buffered (seekable) media apart from live streams.
type StreamType int

const (
	StreamUnknown StreamType = iota
	StreamBuffered
	StreamLive
)

// ParseStreamType maps BUFFERED/LIVE to a StreamType.
func ParseStreamType(s string) StreamType {
	switch s {
	case "BUFFERED":
		return StreamBuffered
	case "LIVE":
		return StreamLive
	default:
		return StreamUnknown
	}
}

// Event is one of MediaStatus, CastStatus or ConnectionStatus.
type Event interface {
	deviceEvent()
}

// MediaStatus reports playback, progress, duration and seekability.
type MediaStatus struct {
	PlayerState  PlayerState
	CurrentTime  float64  // seconds
	Duration     *float64 // nil for live or unknown duration
	StreamType   StreamType
	SupportsSeek bool
	Title        string
}

// CastStatus reports the receiver volume and its status text.
type CastStatus struct {
	VolumeLevel float64 // 0.0 - 1.0
	Muted       bool
	StatusText  string
}

// Connection is the connection state of a receiver.
type Connection int

const (
	Connected Connection = iota
	Lost
)

// String returns the connection state name.
func (c Connection) String() string {
	if c == Connected {
		return "Connected"
	}
	return "Lost"
}

// ConnectionStatus reports that a receiver connected or was lost.
type ConnectionStatus struct {
	Status  Connection
	Address string
}

func (MediaStatus) deviceEvent()      {}
func (CastStatus) deviceEvent()       {}
func (ConnectionStatus) deviceEvent() {}
