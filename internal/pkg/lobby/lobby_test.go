package lobby

import (
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/game"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/wire"

	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) Next() string { return "the quick brown fox" }

func testGameCfgs() []game.Cfg {
	return []game.Cfg{
		game.WithSentenceProvider(stubProvider{}),
		game.WithPingInterval(time.Hour),
	}
}

func newTestHandler(t *testing.T) (*Handler, *Registry) {
	t.Helper()
	registry := NewRegistry()
	handler, err := NewHandler(
		WithRegistry(registry),
		WithGameCfgs(testGameCfgs()...),
	)
	require.NoError(t, err)
	return handler, registry
}

// drain keeps the client side of a pipe readable so game broadcasts never
// block the exchange under test.
func drain(conn net.Conn) {
	go func() {
		for {
			if _, err := wire.Receive(conn); err != nil {
				return
			}
		}
	}()
}

func TestRegistryCreateGetRemove(t *testing.T) {
	registry := NewRegistry()
	g, err := registry.Create(2, testGameCfgs()...)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^\d{4}$`), g.ID())

	got, err := registry.Get(g.ID())
	require.NoError(t, err)
	require.Same(t, g, got)

	registry.Remove(g.ID())
	_, err = registry.Get(g.ID())
	require.ErrorIs(t, err, ErrGameNotFound)
	require.Zero(t, registry.Len())
}

func TestRegistryIDsUnique(t *testing.T) {
	registry := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		g, err := registry.Create(2, testGameCfgs()...)
		require.NoError(t, err)
		require.False(t, seen[g.ID()], "id %s allocated twice", g.ID())
		seen[g.ID()] = true
	}
}

func TestRegistryRejectsBadCapacity(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Create(0, testGameCfgs()...)
	require.ErrorIs(t, err, game.ErrCapacityOutOfRange)
	_, err = registry.Create(11, testGameCfgs()...)
	require.ErrorIs(t, err, game.ErrCapacityOutOfRange)
}

func TestHostExchange(t *testing.T) {
	handler, registry := newTestHandler(t)
	srv, cli := net.Pipe()
	go handler.HandleConn(srv)

	require.NoError(t, wire.SendText(cli, message.CodeHost))
	require.NoError(t, wire.SendText(cli, "2"))
	require.NoError(t, wire.SendText(cli, "alice"))

	id, err := wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^\d{4}$`), id)
	count, err := wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, "1", count)

	g, err := registry.Get(id)
	require.NoError(t, err)
	require.Equal(t, 1, g.MemberCount())
	cli.Close()
}

func TestHostRejectedCapacityOutOfRange(t *testing.T) {
	handler, registry := newTestHandler(t)
	srv, cli := net.Pipe()
	done := make(chan struct{})
	go func() {
		handler.HandleConn(srv)
		close(done)
	}()

	require.NoError(t, wire.SendText(cli, message.CodeHost))
	require.NoError(t, wire.SendText(cli, "11"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not drop the connection")
	}
	require.Zero(t, registry.Len())
}

func TestJoinExchange(t *testing.T) {
	handler, registry := newTestHandler(t)

	hostSrv, hostCli := net.Pipe()
	drain(hostCli)
	g, err := registry.Create(3, testGameCfgs()...)
	require.NoError(t, err)
	require.NoError(t, g.AddHost(hostSrv, "alice"))

	srv, cli := net.Pipe()
	go handler.HandleConn(srv)

	require.NoError(t, wire.SendText(cli, message.CodeJoin))

	// Unknown id is rejected and the exchange stays open.
	require.NoError(t, wire.SendText(cli, "0000"))
	reply, err := wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, message.ReplyRejected, reply)

	require.NoError(t, wire.SendText(cli, g.ID()))
	reply, err = wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, message.ReplyAccepted, reply)

	// Taken username is rejected, a fresh one is accepted.
	require.NoError(t, wire.SendText(cli, "alice"))
	reply, err = wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, message.ReplyRejected, reply)

	require.NoError(t, wire.SendText(cli, "bob"))
	reply, err = wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, message.ReplyAccepted, reply)
	capacity, err := wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, "3", capacity)
	count, err := wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, "2", count)

	require.Equal(t, 2, g.MemberCount())
	cli.Close()
	hostCli.Close()
}

func TestJoinFinishedGameNotFound(t *testing.T) {
	handler, registry := newTestHandler(t)
	g, err := registry.Create(2, testGameCfgs()...)
	require.NoError(t, err)
	id := g.ID()
	g.Deactivate()

	srv, cli := net.Pipe()
	go handler.HandleConn(srv)

	require.NoError(t, wire.SendText(cli, message.CodeJoin))
	require.NoError(t, wire.SendText(cli, id))
	reply, err := wire.ReceiveText(cli)
	require.NoError(t, err)
	require.Equal(t, message.ReplyRejected, reply)
	cli.Close()
}

func TestUnknownControlCodeDropped(t *testing.T) {
	handler, _ := newTestHandler(t)
	srv, cli := net.Pipe()
	done := make(chan struct{})
	go func() {
		handler.HandleConn(srv)
		close(done)
	}()
	require.NoError(t, wire.SendText(cli, "9"))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not drop the connection")
	}
}
