package castv2

import (
	"encoding/json"
	"mime"
	"net/url"
	"path"
	"strings"
)

const (
	nsConnection = "urn:x-cast:com.google.cast.tp.connection"
	nsHeartbeat  = "urn:x-cast:com.google.cast.tp.heartbeat"
	nsReceiver   = "urn:x-cast:com.google.cast.receiver"
	nsMedia      = "urn:x-cast:com.google.cast.media"

	receiverID = "receiver-0"

	// DefaultMediaReceiver is the stock receiver app that plays a URL.
	DefaultMediaReceiver = "CC1AD845"

	// supportedMediaCommands bit for seeking.
	commandSeek = 2
)

// header is the part every payload shares.
type header struct {
	Type      string `json:"type"`
	RequestID int    `json:"requestId,omitempty"`
}

type volume struct {
	Level *float64 `json:"level,omitempty"`
	Muted *bool    `json:"muted,omitempty"`
}

type application struct {
	AppID       string `json:"appId"`
	DisplayName string `json:"displayName"`
	SessionID   string `json:"sessionId"`
	TransportID string `json:"transportId"`
	StatusText  string `json:"statusText"`
}

type receiverStatus struct {
	header
	Status struct {
		Applications []application `json:"applications"`
		Volume       volume        `json:"volume"`
	} `json:"status"`
}

type mediaInfo struct {
	ContentID   string         `json:"contentId"`
	ContentType string         `json:"contentType"`
	StreamType  string         `json:"streamType"`
	Duration    *float64       `json:"duration,omitempty"`
	Metadata    *mediaMetadata `json:"metadata,omitempty"`
}

type mediaMetadata struct {
	MetadataType int    `json:"metadataType"`
	Title        string `json:"title,omitempty"`
}

type mediaStatusEntry struct {
	MediaSessionID         int        `json:"mediaSessionId"`
	PlayerState            string     `json:"playerState"`
	CurrentTime            float64    `json:"currentTime"`
	SupportedMediaCommands int        `json:"supportedMediaCommands"`
	IdleReason             string     `json:"idleReason,omitempty"`
	Media                  *mediaInfo `json:"media,omitempty"`
}

type mediaStatus struct {
	header
	Status []mediaStatusEntry `json:"status"`
}

type errorReply struct {
	header
	Reason string `json:"reason"`
}

type launchRequest struct {
	header
	AppID string `json:"appId"`
}

type volumeRequest struct {
	header
	Volume volume `json:"volume"`
}

type loadRequest struct {
	header
	Media       mediaInfo `json:"media"`
	Autoplay    bool      `json:"autoplay"`
	CurrentTime float64   `json:"currentTime"`
}

type sessionRequest struct {
	header
	MediaSessionID int      `json:"mediaSessionId"`
	CurrentTime    *float64 `json:"currentTime,omitempty"`
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Only our own request structs are encoded here.
		panic(err)
	}
	return string(b)
}

var mediaTypes = map[string]string{
	".m3u8": "application/x-mpegurl",
	".mpd":  "application/dash+xml",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
}

// guessContentType infers a MIME type from the URL path.
func guessContentType(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "video/mp4"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return "video/mp4"
}

// titleFromURL returns the last path element, used as media title.
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return raw
	}
	return path.Base(u.Path)
}
