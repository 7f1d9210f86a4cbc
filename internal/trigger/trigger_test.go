package trigger

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanCollapsesAndDrains(t *testing.T) {
	c := NewChan()
	assert.False(t, c.Poll())
	c.Fire()
	c.Fire()
	assert.True(t, c.Poll())
	assert.False(t, c.Poll(), "second fire should have collapsed into the first")
}

func TestAnyStopsAtFirst(t *testing.T) {
	a, b := NewChan(), NewChan()
	a.Fire()
	b.Fire()
	l := Any{Never{}, a, b}
	assert.True(t, l.Poll())
	assert.True(t, l.Poll(), "b's signal is kept for the next frame")
	assert.False(t, l.Poll())
}

func TestIntervalFiresOnSchedule(t *testing.T) {
	now := time.Unix(100, 0)
	clock := func() time.Time { return now }
	i := newInterval(10*time.Second, clock)

	assert.False(t, i.Poll())
	now = now.Add(9 * time.Second)
	assert.False(t, i.Poll())
	now = now.Add(time.Second)
	assert.True(t, i.Poll())
	assert.False(t, i.Poll())
	now = now.Add(10 * time.Second)
	assert.True(t, i.Poll())
}

func TestIntervalZeroNeverFires(t *testing.T) {
	i := NewInterval(0)
	assert.False(t, i.Poll())
}

func TestUDPSetupRetriesAfterFailure(t *testing.T) {
	now := time.Unix(0, 0)
	u := NewUDP("127.0.0.1:0", "", time.Second)
	u.now = func() time.Time { return now }
	calls := 0
	u.listen = func(network, addr string) (net.PacketConn, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("network is unreachable")
		}
		return net.ListenPacket(network, addr)
	}
	defer u.Close()

	assert.False(t, u.Poll())
	assert.False(t, u.Ready())
	assert.False(t, u.Poll(), "no retry before RetryEvery")
	assert.Equal(t, 1, calls)

	now = now.Add(time.Second)
	assert.False(t, u.Poll(), "setup succeeds but nothing has arrived")
	assert.True(t, u.Ready())
	assert.Equal(t, 2, calls)
}

func TestUDPDatagramFires(t *testing.T) {
	u := NewUDP("127.0.0.1:0", "", time.Second)
	defer u.Close()
	require.False(t, u.Poll())
	require.True(t, u.Ready())

	c, err := net.Dial("udp", u.LocalAddr().String())
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("anything"))
	require.NoError(t, err)

	assert.Eventually(t, u.Poll, time.Second, 5*time.Millisecond)
	assert.False(t, u.Poll())
}

func TestUDPUnknownInterfaceIsInert(t *testing.T) {
	u := NewUDP("127.0.0.1:0", "no-such-iface0", time.Hour)
	assert.False(t, u.Poll())
	assert.False(t, u.Ready())
}

// scriptedConn is a PacketConn whose reads block until an error is queued
// or it is closed.
type scriptedConn struct {
	errs   chan error
	closed chan struct{}
	once   sync.Once
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{errs: make(chan error, 1), closed: make(chan struct{})}
}

func (c *scriptedConn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case err := <-c.errs:
		return 0, nil, err
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

func (c *scriptedConn) WriteTo(p []byte, addr net.Addr) (int, error) { return len(p), nil }
func (c *scriptedConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
func (c *scriptedConn) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5005}
}
func (c *scriptedConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptedConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptedConn) SetWriteDeadline(time.Time) error { return nil }

func (c *scriptedConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func scriptedUDP(now *time.Time) (*UDP, *[]*scriptedConn) {
	u := NewUDP("127.0.0.1:5005", "", time.Second)
	u.now = func() time.Time { return *now }
	conns := []*scriptedConn{}
	u.listen = func(network, addr string) (net.PacketConn, error) {
		c := newScriptedConn()
		conns = append(conns, c)
		return c, nil
	}
	return u, &conns
}

func TestUDPReadErrorDropsAndRelistens(t *testing.T) {
	now := time.Unix(0, 0)
	u, conns := scriptedUDP(&now)
	defer u.Close()

	require.False(t, u.Poll())
	require.True(t, u.Ready())
	require.Len(t, *conns, 1)

	(*conns)[0].errs <- errors.New("connection reset by peer")
	assert.Eventually(t, func() bool {
		assert.False(t, u.Poll())
		return !u.Ready()
	}, time.Second, 5*time.Millisecond)
	assert.True(t, (*conns)[0].isClosed())

	assert.False(t, u.Poll(), "no re-listen inside RetryEvery")
	assert.False(t, u.Ready())
	assert.Len(t, *conns, 1)

	now = now.Add(time.Second)
	assert.False(t, u.Poll())
	assert.True(t, u.Ready())
	assert.Len(t, *conns, 2)
}

func TestUDPCloseHoldsOffRelisten(t *testing.T) {
	now := time.Unix(0, 0)
	u, conns := scriptedUDP(&now)

	require.False(t, u.Poll())
	require.True(t, u.Ready())
	require.NoError(t, u.Close())
	assert.True(t, (*conns)[0].isClosed())

	assert.False(t, u.Poll())
	assert.False(t, u.Ready(), "Close then Poll must not bind again right away")
	assert.Len(t, *conns, 1)

	now = now.Add(999 * time.Millisecond)
	assert.False(t, u.Poll())
	assert.Len(t, *conns, 1)

	now = now.Add(time.Millisecond)
	assert.False(t, u.Poll())
	assert.True(t, u.Ready())
	assert.Len(t, *conns, 2)
	require.NoError(t, u.Close())
}
