package discovery

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/castwave/internal/device"
)

func entry(instance, ip string, port int, txt ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, serviceType, domain)
	e.AddrIPv4 = []net.IP{net.ParseIP(ip)}
	e.Port = port
	e.Text = txt
	return e
}

// fakeBrowse replays entries then waits for ctx like a real browse.
func fakeBrowse(entries ...*zeroconf.ServiceEntry) BrowseFunc {
	return func(ctx context.Context, out chan<- *zeroconf.ServiceEntry) error {
		go func() {
			for _, e := range entries {
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}
}

type connector struct {
	mu     sync.Mutex
	failed map[string]bool
	dialed []string
}

func (c *connector) connect(_ context.Context, info device.Info) (device.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialed = append(c.dialed, info.Address)
	if c.failed[info.Address] {
		return nil, errors.New("connection refused")
	}
	return device.NewFake(info.Address, info.Name), nil
}

func TestEntryInfo(t *testing.T) {
	tests := []struct {
		name  string
		entry *zeroconf.ServiceEntry
		want  device.Info
		ok    bool
	}{
		{
			name:  "txt record names the receiver",
			entry: entry("Chromecast-abc", "192.168.1.20", 8009, "id=abc", "md=Chromecast Ultra", "fn=Living Room", "junk"),
			want:  device.Info{Address: "192.168.1.20:8009", Name: "Living Room", Model: "Chromecast Ultra", UUID: "abc"},
			ok:    true,
		},
		{
			name:  "instance name without txt",
			entry: entry("Speaker", "192.168.1.21", 8009),
			want:  device.Info{Address: "192.168.1.21:8009", Name: "Speaker"},
			ok:    true,
		},
		{
			name:  "no port",
			entry: entry("Broken", "192.168.1.22", 0),
		},
		{
			name:  "nil entry",
			entry: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EntryInfo(tt.entry)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntryInfo_IPv6Only(t *testing.T) {
	e := zeroconf.NewServiceEntry("tv", serviceType, domain)
	e.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
	e.Port = 8009
	info, ok := EntryInfo(e)
	require.True(t, ok)
	assert.Equal(t, "[fe80::1]:8009", info.Address)
}

func TestStaticInfo(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"10.0.0.5", "10.0.0.5:8009", true},
		{"tv.local:8010", "tv.local:8010", true},
		{" 10.0.0.6 ", "10.0.0.6:8009", true},
		{"[fe80::2]", "[fe80::2]:8009", true},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			info, ok := StaticInfo(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, info.Address)
		})
	}
}

func TestDiscover_MergesStaticAndSkipsFailures(t *testing.T) {
	c := &connector{failed: map[string]bool{"192.168.1.30:8009": true}}
	s := New(Options{
		Timeout: 50 * time.Millisecond,
		Static:  []string{"10.0.0.5", "192.168.1.20:8009"},
		Logger:  zerolog.Nop(),
		Browse: fakeBrowse(
			entry("a", "192.168.1.20", 8009, "fn=Kitchen"),
			entry("b", "192.168.1.30", 8009, "fn=Attic"),
		),
		Connect: c.connect,
	})

	handles, err := s.Discover(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(handles))
	for _, h := range handles {
		names = append(names, h.Info().Name)
	}
	assert.Equal(t, []string{"10.0.0.5", "Kitchen"}, names, "sorted by name, mDNS name wins over static")
	assert.Len(t, c.dialed, 3)
}

func TestDiscover_BrowseErrorWithoutStatic(t *testing.T) {
	s := New(Options{
		Timeout: 10 * time.Millisecond,
		Logger:  zerolog.Nop(),
		Browse: func(context.Context, chan<- *zeroconf.ServiceEntry) error {
			return errors.New("no multicast interface")
		},
		Connect: (&connector{}).connect,
	})
	_, err := s.Discover(context.Background())
	require.Error(t, err)
}

func TestDiscover_BrowseErrorFallsBackToStatic(t *testing.T) {
	s := New(Options{
		Timeout: 10 * time.Millisecond,
		Static:  []string{"10.0.0.5"},
		Logger:  zerolog.Nop(),
		Browse: func(context.Context, chan<- *zeroconf.ServiceEntry) error {
			return errors.New("no multicast interface")
		},
		Connect: (&connector{}).connect,
	})
	handles, err := s.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, "10.0.0.5:8009", handles[0].Info().Address)
}

func TestWatch_ReportsOnlyNewReceivers(t *testing.T) {
	c := &connector{}
	s := New(Options{
		Timeout: 10 * time.Millisecond,
		Logger:  zerolog.Nop(),
		Browse: fakeBrowse(
			entry("a", "192.168.1.20", 8009, "fn=Kitchen"),
			entry("b", "192.168.1.40", 8009, "fn=Bedroom"),
		),
		Connect: c.connect,
	})
	_, err := s.Connect(context.Background(), device.Info{Address: "192.168.1.20:8009"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	found := s.Watch(ctx)

	select {
	case info := <-found:
		assert.Equal(t, "Bedroom", info.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no receiver reported")
	}

	cancel()
	for range found {
		t.Error("no further receivers expected")
	}
}
