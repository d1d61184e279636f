package castv2

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/castwave/internal/device"
)

const (
	// DefaultPort is the Cast v2 TLS port.
	DefaultPort = 8009

	defaultHeartbeat = 5 * time.Second
	// A receiver that sends nothing for this many heartbeats is considered gone.
	missedHeartbeats    = 3
	defaultReconnectMin = 500 * time.Millisecond
	defaultReconnectMax = 30 * time.Second
)

var (
	// ErrNoMediaSession is returned by transport commands when nothing is loaded.
	ErrNoMediaSession = errors.New("no media session")
	// ErrClientClosed is returned by commands issued after Close.
	ErrClientClosed = errors.New("cast client closed")
	// ErrNotConnected is returned while the client is reconnecting.
	ErrNotConnected = errors.New("not connected")
)

// Dialer opens the transport to a receiver.
type Dialer func(ctx context.Context, address string) (net.Conn, error)

// Options tune a Client. Zero values select defaults.
type Options struct {
	Dial         Dialer
	Heartbeat    time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	Logger       zerolog.Logger
}

// TLSDialer dials the receiver over TLS. Receivers present self-signed
// certificates, so verification is skipped.
func TLSDialer(ctx context.Context, address string) (net.Conn, error) {
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 5 * time.Second},
		Config:    &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // receivers use self-signed certs
	}
	return d.DialContext(ctx, "tcp", address)
}

type reply struct {
	typ     string
	payload []byte
}

// Client is a device.Handle backed by a Cast v2 connection.
type Client struct {
	device.Broker

	info     device.Info
	opts     Options
	senderID string
	log      zerolog.Logger

	writeMu sync.Mutex

	mu             sync.Mutex
	conn           net.Conn
	nextRequest    int
	pending        map[int]chan reply
	transportID    string
	sessionID      string
	mediaSessionID int
	media          *mediaInfo

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the receiver described by info and keeps the connection
// alive until Close.
func Dial(ctx context.Context, info device.Info, opts Options) (*Client, error) {
	if opts.Dial == nil {
		opts.Dial = TLSDialer
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}
	if opts.ReconnectMin <= 0 {
		opts.ReconnectMin = defaultReconnectMin
	}
	if opts.ReconnectMax <= 0 {
		opts.ReconnectMax = defaultReconnectMax
	}

	c := &Client{
		info:     info,
		opts:     opts,
		senderID: "sender-" + uuid.NewString(),
		log:      opts.Logger.With().Str("device", info.Address).Logger(),
		pending:  make(map[int]chan reply),
		done:     make(chan struct{}),
	}
	c.Broker.Log = c.log

	conn, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	go c.supervise(conn)
	return c, nil
}

// Info returns the receiver identity.
func (c *Client) Info() device.Info {
	return c.info
}

// SubscribeStatus delivers media and cast status.
func (c *Client) SubscribeStatus() *device.Subscription {
	return c.Subscribe(device.KindStatus)
}

// SubscribeConnection delivers connection changes.
func (c *Client) SubscribeConnection() *device.Subscription {
	return c.Subscribe(device.KindConnection)
}

// Close tears down the connection and all subscriptions.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()
		if conn != nil {
			_ = c.send(conn, receiverID, nsConnection, header{Type: "CLOSE"})
			err = conn.Close()
		}
		c.CloseAll()
	})
	return err
}

// Play launches the default media receiver if needed and loads url.
func (c *Client) Play(ctx context.Context, url string) error {
	transport, err := c.ensureMediaApp(ctx)
	if err != nil {
		return err
	}
	req := loadRequest{
		header: header{Type: "LOAD"},
		Media: mediaInfo{
			ContentID:   url,
			ContentType: guessContentType(url),
			StreamType:  "BUFFERED",
			Metadata:    &mediaMetadata{Title: titleFromURL(url)},
		},
		Autoplay: true,
	}
	_, err = c.request(ctx, transport, nsMedia, &req.header, &req)
	return err
}

// Resume resumes the current media session.
func (c *Client) Resume(ctx context.Context) error {
	return c.sessionCommand(ctx, "PLAY", nil)
}

// Pause pauses the current media session.
func (c *Client) Pause(ctx context.Context) error {
	return c.sessionCommand(ctx, "PAUSE", nil)
}

// Stop stops the current media session.
func (c *Client) Stop(ctx context.Context) error {
	return c.sessionCommand(ctx, "STOP", nil)
}

// Seek moves the current media to seconds.
func (c *Client) Seek(ctx context.Context, seconds float64) error {
	return c.sessionCommand(ctx, "SEEK", &seconds)
}

// SetVolume sets the receiver volume level.
func (c *Client) SetVolume(ctx context.Context, fraction float64) error {
	level := math.Max(0, math.Min(1, fraction))
	req := volumeRequest{
		header: header{Type: "SET_VOLUME"},
		Volume: volume{Level: &level},
	}
	_, err := c.request(ctx, receiverID, nsReceiver, &req.header, &req)
	return err
}

// RequestStatus asks for receiver status and, when a media app runs, media status.
// Replies are published to status subscribers.
func (c *Client) RequestStatus(ctx context.Context) error {
	req := header{Type: "GET_STATUS"}
	if _, err := c.request(ctx, receiverID, nsReceiver, &req, &req); err != nil {
		return err
	}
	c.mu.Lock()
	transport := c.transportID
	c.mu.Unlock()
	if transport == "" {
		return nil
	}
	media := header{Type: "GET_STATUS"}
	_, err := c.request(ctx, transport, nsMedia, &media, &media)
	return err
}

func (c *Client) sessionCommand(ctx context.Context, typ string, at *float64) error {
	c.mu.Lock()
	transport, session := c.transportID, c.mediaSessionID
	c.mu.Unlock()
	if transport == "" || session == 0 {
		return ErrNoMediaSession
	}
	req := sessionRequest{
		header:         header{Type: typ},
		MediaSessionID: session,
		CurrentTime:    at,
	}
	_, err := c.request(ctx, transport, nsMedia, &req.header, &req)
	return err
}

// ensureMediaApp returns the transport id of the running media receiver,
// launching it when no app is running.
func (c *Client) ensureMediaApp(ctx context.Context) (string, error) {
	c.mu.Lock()
	transport := c.transportID
	c.mu.Unlock()
	if transport != "" {
		return transport, nil
	}

	req := launchRequest{header: header{Type: "LAUNCH"}, AppID: DefaultMediaReceiver}
	if _, err := c.request(ctx, receiverID, nsReceiver, &req.header, &req); err != nil {
		return "", fmt.Errorf("launch media receiver: %w", err)
	}
	c.mu.Lock()
	transport = c.transportID
	c.mu.Unlock()
	if transport == "" {
		return "", errors.New("launch media receiver: no transport in reply")
	}
	return transport, nil
}

// request sends payload, which must point at the struct embedding h, after
// stamping h with a fresh request id, and waits for the correlated reply.
func (c *Client) request(
	ctx context.Context,
	dest, namespace string,
	h *header,
	payload any,
) (reply, error) {
	ch := make(chan reply, 1)

	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		select {
		case <-c.done:
			return reply{}, ErrClientClosed
		default:
			return reply{}, ErrNotConnected
		}
	}
	c.nextRequest++
	id := c.nextRequest
	h.RequestID = id
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.send(conn, dest, namespace, payload); err != nil {
		return reply{}, err
	}

	select {
	case r, ok := <-ch:
		if !ok {
			return reply{}, ErrNotConnected
		}
		if err := replyError(r); err != nil {
			return r, err
		}
		return r, nil
	case <-ctx.Done():
		return reply{}, ctx.Err()
	case <-c.done:
		return reply{}, ErrClientClosed
	}
}

func replyError(r reply) error {
	switch r.typ {
	case "LOAD_FAILED", "LOAD_CANCELLED", "INVALID_REQUEST", "INVALID_PLAYER_STATE", "LAUNCH_ERROR":
		var e errorReply
		_ = json.Unmarshal(r.payload, &e)
		if e.Reason != "" {
			return fmt.Errorf("%s: %s", r.typ, e.Reason)
		}
		return errors.New(r.typ)
	}
	return nil
}

func (c *Client) send(conn net.Conn, dest, namespace string, payload any) error {
	msg := Message{
		SourceID:      c.senderID,
		DestinationID: dest,
		Namespace:     namespace,
		Payload:       encode(payload),
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(conn, msg)
}

// open dials and opens the virtual connection to the platform receiver.
func (c *Client) open(ctx context.Context) (net.Conn, error) {
	conn, err := c.opts.Dial(ctx, c.info.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.info.Address, err)
	}
	if d, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(d)
		defer conn.SetWriteDeadline(time.Time{}) //nolint:errcheck // cleared on a live conn
	}
	if err := c.send(conn, receiverID, nsConnection, header{Type: "CONNECT"}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect %s: %w", c.info.Address, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return conn, nil
}

// supervise serves conn until it fails, then reconnects with backoff until
// the client is closed.
func (c *Client) supervise(conn net.Conn) {
	for {
		err := c.serve(conn)
		c.drop(conn)

		select {
		case <-c.done:
			return
		default:
		}

		c.log.Warn().Err(err).Msg("cast connection lost")
		c.Publish(device.ConnectionStatus{Status: device.Lost, Address: c.info.Address})

		conn = c.reconnect()
		if conn == nil {
			return
		}
		c.log.Info().Msg("cast connection restored")
		c.Publish(device.ConnectionStatus{Status: device.Connected, Address: c.info.Address})
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.Heartbeat)
			defer cancel()
			if err := c.RequestStatus(ctx); err != nil {
				c.log.Debug().Err(err).Msg("status request after reconnect failed")
			}
		}()
	}
}

func (c *Client) reconnect() net.Conn {
	delay := c.opts.ReconnectMin
	for {
		select {
		case <-c.done:
			return nil
		case <-time.After(delay):
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.ReconnectMax)
		conn, err := c.open(ctx)
		cancel()
		if err == nil {
			return conn
		}
		c.log.Debug().Err(err).Dur("retry_in", delay).Msg("reconnect failed")
		delay = min(delay*2, c.opts.ReconnectMax)
	}
}

// drop forgets conn and fails in-flight requests.
func (c *Client) drop(conn net.Conn) {
	_ = conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.transportID = ""
	c.sessionID = ""
	c.mediaSessionID = 0
	c.media = nil
	c.mu.Unlock()
}

func (c *Client) serve(conn net.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go c.heartbeat(conn, stop)

	silence := missedHeartbeats * c.opts.Heartbeat
	for {
		if err := conn.SetReadDeadline(time.Now().Add(silence)); err != nil {
			return err
		}
		msg, err := ReadFrame(conn)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("receiver silent for %s: %w", silence, err)
		}
		if err != nil {
			return err
		}
		c.handle(conn, msg)
	}
}

func (c *Client) heartbeat(conn net.Conn, stop <-chan struct{}) {
	t := time.NewTicker(c.opts.Heartbeat)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := c.send(conn, receiverID, nsHeartbeat, header{Type: "PING"}); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (c *Client) handle(conn net.Conn, msg Message) {
	var h header
	if err := json.Unmarshal([]byte(msg.Payload), &h); err != nil {
		c.log.Debug().Err(err).Str("namespace", msg.Namespace).Msg("undecodable payload")
		return
	}

	switch msg.Namespace {
	case nsHeartbeat:
		if h.Type == "PING" {
			_ = c.send(conn, msg.SourceID, nsHeartbeat, header{Type: "PONG"})
		}
	case nsConnection:
		if h.Type == "CLOSE" {
			c.mu.Lock()
			if msg.SourceID == c.transportID {
				c.transportID = ""
				c.mediaSessionID = 0
			}
			c.mu.Unlock()
		}
	case nsReceiver:
		if h.Type == "RECEIVER_STATUS" {
			c.handleReceiverStatus(conn, []byte(msg.Payload))
		}
	case nsMedia:
		if h.Type == "MEDIA_STATUS" {
			c.handleMediaStatus([]byte(msg.Payload))
		}
	}

	if h.RequestID != 0 {
		c.mu.Lock()
		ch, ok := c.pending[h.RequestID]
		if ok {
			delete(c.pending, h.RequestID)
		}
		c.mu.Unlock()
		if ok {
			ch <- reply{typ: h.Type, payload: []byte(msg.Payload)}
		}
	}
}

func (c *Client) handleReceiverStatus(conn net.Conn, payload []byte) {
	var st receiverStatus
	if err := json.Unmarshal(payload, &st); err != nil {
		c.log.Debug().Err(err).Msg("bad receiver status")
		return
	}

	var app *application
	for i := range st.Status.Applications {
		a := &st.Status.Applications[i]
		if a.TransportID != "" && a.AppID == DefaultMediaReceiver {
			app = a
			break
		}
	}

	var statusText string
	if len(st.Status.Applications) > 0 {
		statusText = st.Status.Applications[0].StatusText
	}

	c.mu.Lock()
	connectTransport := ""
	switch {
	case app == nil:
		c.transportID = ""
		c.sessionID = ""
		c.mediaSessionID = 0
		c.media = nil
	case app.TransportID != c.transportID:
		c.transportID = app.TransportID
		c.sessionID = app.SessionID
		c.mediaSessionID = 0
		c.media = nil
		connectTransport = app.TransportID
	}
	c.mu.Unlock()

	if connectTransport != "" {
		if err := c.send(conn, connectTransport, nsConnection, header{Type: "CONNECT"}); err != nil {
			c.log.Debug().Err(err).Msg("connect to media transport failed")
		}
	}

	ev := device.CastStatus{StatusText: statusText}
	if st.Status.Volume.Level != nil {
		ev.VolumeLevel = *st.Status.Volume.Level
	}
	if st.Status.Volume.Muted != nil {
		ev.Muted = *st.Status.Volume.Muted
	}
	c.Publish(ev)
}

func (c *Client) handleMediaStatus(payload []byte) {
	var st mediaStatus
	if err := json.Unmarshal(payload, &st); err != nil {
		c.log.Debug().Err(err).Msg("bad media status")
		return
	}
	if len(st.Status) == 0 {
		c.mu.Lock()
		c.mediaSessionID = 0
		c.media = nil
		c.mu.Unlock()
		c.Publish(device.MediaStatus{PlayerState: device.PlayerIdle})
		return
	}

	entry := st.Status[0]
	c.mu.Lock()
	if entry.MediaSessionID != c.mediaSessionID {
		c.media = nil
	}
	c.mediaSessionID = entry.MediaSessionID
	// Receivers omit media info on most updates after the first.
	if entry.Media != nil {
		c.media = entry.Media
	} else {
		entry.Media = c.media
	}
	c.mu.Unlock()

	c.Publish(mediaEvent(entry))
}

func mediaEvent(entry mediaStatusEntry) device.MediaStatus {
	ev := device.MediaStatus{
		PlayerState:  device.ParsePlayerState(entry.PlayerState),
		CurrentTime:  entry.CurrentTime,
		SupportsSeek: entry.SupportedMediaCommands&commandSeek != 0,
	}
	if m := entry.Media; m != nil {
		ev.StreamType = device.ParseStreamType(m.StreamType)
		if m.Duration != nil && *m.Duration > 0 {
			d := *m.Duration
			ev.Duration = &d
		}
		if m.Metadata != nil {
			ev.Title = m.Metadata.Title
		}
	}
	return ev
}
