// Package discovery finds Cast receivers with mDNS and opens handles to them.
package discovery

import (
	"cmp"
	"context"
	"errors"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog"

	"github.com/llehouerou/castwave/internal/castv2"
	"github.com/llehouerou/castwave/internal/device"
)

const (
	serviceType = "_googlecast._tcp"
	domain      = "local."

	defaultTimeout = 5 * time.Second
	// Watch restarts the browse this often so receivers that answered
	// once and went quiet are asked again.
	watchInterval = 30 * time.Second
)

// BrowseFunc streams mDNS entries until ctx is done, then closes entries.
type BrowseFunc func(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error

// ConnectFunc opens a handle to one receiver.
type ConnectFunc func(ctx context.Context, info device.Info) (device.Handle, error)

// Options configure a Service. Zero values select defaults.
type Options struct {
	Timeout time.Duration
	Static  []string // host[:port] receivers added to every discovery
	Cast    castv2.Options
	Logger  zerolog.Logger

	Browse  BrowseFunc
	Connect ConnectFunc
}

// Service implements device.Service over zeroconf and castv2.
type Service struct {
	timeout time.Duration
	static  []device.Info
	browse  BrowseFunc
	connect ConnectFunc
	log     zerolog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

var _ device.Service = (*Service)(nil)

// New builds a discovery service.
func New(opts Options) *Service {
	s := &Service{
		timeout: cmp.Or(opts.Timeout, defaultTimeout),
		browse:  opts.Browse,
		connect: opts.Connect,
		log:     opts.Logger,
		seen:    make(map[string]bool),
	}
	if s.browse == nil {
		s.browse = Browse
	}
	if s.connect == nil {
		cast := opts.Cast
		cast.Logger = opts.Logger
		s.connect = func(ctx context.Context, info device.Info) (device.Handle, error) {
			return castv2.Dial(ctx, info, cast)
		}
	}
	for _, addr := range opts.Static {
		if info, ok := StaticInfo(addr); ok {
			s.static = append(s.static, info)
		}
	}
	return s
}

// Browse runs a zeroconf browse for Cast receivers.
func Browse(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return err
	}
	return resolver.Browse(ctx, serviceType, domain, entries)
}

// Discover browses for the configured timeout, adds static receivers and
// connects to every receiver found. Receivers that refuse the connection are
// logged and skipped.
func (s *Service) Discover(ctx context.Context) ([]device.Handle, error) {
	found := make(map[string]device.Info)
	for _, info := range s.static {
		found[info.Address] = info
	}

	browseCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.collect(browseCtx, func(info device.Info) {
		found[info.Address] = info
	})
	if err != nil && len(found) == 0 {
		return nil, err
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("mdns browse failed, using static receivers")
	}

	infos := make([]device.Info, 0, len(found))
	for _, info := range found {
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b device.Info) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.Address, b.Address),
		)
	})

	handles := make([]device.Handle, len(infos))
	var wg sync.WaitGroup
	for i, info := range infos {
		wg.Go(func() {
			h, err := s.Connect(ctx, info)
			if err != nil {
				s.log.Warn().Err(err).Str("device", info.Address).Msg("connect failed")
				return
			}
			handles[i] = h
		})
	}
	wg.Wait()

	connected := handles[:0]
	for _, h := range handles {
		if h != nil {
			connected = append(connected, h)
		}
	}
	return connected, nil
}

// Watch keeps browsing and reports receivers not seen before. The channel is
// closed when ctx is done.
func (s *Service) Watch(ctx context.Context) <-chan device.Info {
	out := make(chan device.Info)
	go func() {
		defer close(out)
		for {
			roundCtx, cancel := context.WithTimeout(ctx, watchInterval)
			err := s.collect(roundCtx, func(info device.Info) {
				if !s.markSeen(info.Address) {
					return
				}
				select {
				case out <- info:
				case <-ctx.Done():
				}
			})
			cancel()
			if err != nil {
				s.log.Debug().Err(err).Msg("mdns watch browse failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()
	return out
}

// Connect opens a handle to info and marks it seen.
func (s *Service) Connect(ctx context.Context, info device.Info) (device.Handle, error) {
	h, err := s.connect(ctx, info)
	if err != nil {
		return nil, err
	}
	s.markSeen(info.Address)
	return h, nil
}

// markSeen records address and reports whether it was new.
func (s *Service) markSeen(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[address] {
		return false
	}
	s.seen[address] = true
	return true
}

func (s *Service) collect(ctx context.Context, found func(device.Info)) error {
	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := s.browse(ctx, entries); err != nil {
		return err
	}
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return nil
			}
			if info, ok := EntryInfo(e); ok {
				found(info)
			}
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil
			}
			return ctx.Err()
		}
	}
}

// EntryInfo converts an mDNS entry to receiver info. Entries without an
// address are skipped.
func EntryInfo(e *zeroconf.ServiceEntry) (device.Info, bool) {
	if e == nil || e.Port == 0 {
		return device.Info{}, false
	}
	var ip net.IP
	switch {
	case len(e.AddrIPv4) > 0:
		ip = e.AddrIPv4[0]
	case len(e.AddrIPv6) > 0:
		ip = e.AddrIPv6[0]
	default:
		return device.Info{}, false
	}

	info := device.Info{
		Address: net.JoinHostPort(ip.String(), strconv.Itoa(e.Port)),
		Name:    e.Instance,
	}
	for _, txt := range e.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch key {
		case "fn":
			info.Name = value
		case "md":
			info.Model = value
		case "id":
			info.UUID = value
		}
	}
	return info, true
}

// StaticInfo parses a configured host[:port] receiver.
func StaticInfo(addr string) (device.Info, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return device.Info{}, false
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = strings.Trim(addr, "[]"), strconv.Itoa(castv2.DefaultPort)
	}
	if host == "" {
		return device.Info{}, false
	}
	return device.Info{
		Address: net.JoinHostPort(host, port),
		Name:    host,
	}, true
}
