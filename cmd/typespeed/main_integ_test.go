//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Oldmacintosh/TypeSpeed/internal/app/apps"
	"github.com/Oldmacintosh/TypeSpeed/internal/app/cfg"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/client"

	"github.com/stretchr/testify/require"
)

const testPort = 16969

func TestServerAndClients(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		s, err := apps.NewServerApp(cfg.NewAddrCfg("127.0.0.1", testPort))
		require.NoError(t, err)
		require.NoError(t, s.Run(ctx, nil))
	}()

	// The host needs the assigned game id before the joiner can follow, so
	// the host side runs against the client package directly.
	host, err := client.NewClient(
		client.WithServerAddr("127.0.0.1:16969"),
		client.WithUsername("alice"),
		client.WithTypist(func(string) string { return "12" }),
	)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return host.Connect(ctx) == nil
	}, 10*time.Second, 100*time.Millisecond)
	defer host.Close()
	gameID, err := host.Host(2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		require.NoError(t, host.WaitForStart(nil))
		standings, err := host.Play(nil)
		require.NoError(t, err)
		require.Len(t, standings, 2)
		require.Equal(t, "alice", standings[0].Username)
	}()
	go func() {
		defer wg.Done()
		c, err := apps.NewClientApp(
			cfg.NewAddrCfg("127.0.0.1", testPort),
			cfg.NewContestCfg("bob", gameID, 0),
			cfg.NewWPMCfg(20),
		)
		require.NoError(t, err)
		require.NoError(t, c.Run(ctx, nil))
	}()
	wg.Wait()
}
