package trigger

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRetry = time.Second
	queueDepth   = 16
)

// UDP listens for datagrams on Addr; each datagram is one signal.
//
// Socket setup happens lazily inside Poll. If it fails (port taken, or the
// named Interface is not up yet) Poll reports false and tries again after
// RetryEvery. Reads happen on a background goroutine so Poll only ever does
// a non-blocking receive.
type UDP struct {
	Addr       string
	Interface  string
	RetryEvery time.Duration

	listen func(network, addr string) (net.PacketConn, error)
	now    func() time.Time

	conn    net.PacketConn
	sig     chan struct{}
	errc    chan error
	nextTry time.Time
	failing bool
}

// NewUDP returns a listener for addr (host:port). iface may be empty to
// bind addr as given.
func NewUDP(addr, iface string, retry time.Duration) *UDP {
	if retry <= 0 {
		retry = defaultRetry
	}
	return &UDP{
		Addr:       addr,
		Interface:  iface,
		RetryEvery: retry,
		listen:     net.ListenPacket,
		now:        time.Now,
	}
}

func (u *UDP) Poll() bool {
	if u.conn == nil && !u.setup() {
		return false
	}
	select {
	case err := <-u.errc:
		log.Warn().Err(err).Str("addr", u.Addr).Msg("trigger read failed; will re-listen")
		u.drop()
		return false
	default:
	}
	select {
	case <-u.sig:
		return true
	default:
		return false
	}
}

// Ready reports whether the socket is currently bound.
func (u *UDP) Ready() bool { return u.conn != nil }

// LocalAddr is the bound address, or nil before setup succeeds.
func (u *UDP) LocalAddr() net.Addr {
	if u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

func (u *UDP) setup() bool {
	now := u.now()
	if now.Before(u.nextTry) {
		return false
	}
	addr, err := u.bindAddr()
	var conn net.PacketConn
	if err == nil {
		conn, err = u.listen("udp", addr)
	}
	if err != nil {
		u.nextTry = now.Add(u.RetryEvery)
		if !u.failing {
			log.Warn().Err(err).Str("addr", u.Addr).Str("iface", u.Interface).
				Dur("retry", u.RetryEvery).Msg("trigger listener unavailable; triggering disabled until setup succeeds")
		} else {
			log.Debug().Err(err).Str("addr", u.Addr).Msg("trigger listener setup retry failed")
		}
		u.failing = true
		return false
	}
	if u.failing {
		log.Info().Str("addr", conn.LocalAddr().String()).Msg("trigger listener recovered")
	} else {
		log.Info().Str("addr", conn.LocalAddr().String()).Msg("trigger listener ready")
	}
	u.failing = false
	u.conn = conn
	u.sig = make(chan struct{}, queueDepth)
	u.errc = make(chan error, 1)
	go read(conn, u.sig, u.errc)
	return true
}

// bindAddr resolves Addr against the IPv4 address of Interface, if set.
func (u *UDP) bindAddr() (string, error) {
	if u.Interface == "" {
		return u.Addr, nil
	}
	_, port, err := net.SplitHostPort(u.Addr)
	if err != nil {
		return "", fmt.Errorf("trigger addr %q: %w", u.Addr, err)
	}
	ifi, err := net.InterfaceByName(u.Interface)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", u.Interface, err)
	}
	if ifi.Flags&net.FlagUp == 0 {
		return "", fmt.Errorf("interface %s is down", u.Interface)
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return "", fmt.Errorf("interface %s addrs: %w", u.Interface, err)
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok && ipn.IP.To4() != nil {
			return net.JoinHostPort(ipn.IP.String(), port), nil
		}
	}
	return "", fmt.Errorf("interface %s has no IPv4 address", u.Interface)
}

func (u *UDP) drop() {
	if u.conn != nil {
		_ = u.conn.Close()
	}
	u.conn = nil
	u.nextTry = u.now().Add(u.RetryEvery)
}

// Close releases the socket. Poll will not re-listen until RetryEvery has passed.
func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	u.nextTry = u.now().Add(u.RetryEvery)
	return err
}

func read(conn net.PacketConn, sig chan<- struct{}, errc chan<- error) {
	buf := make([]byte, 1500)
	for {
		_, _, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			select {
			case errc <- err:
			default:
			}
			return
		}
		select {
		case sig <- struct{}{}:
		default:
		}
	}
}
