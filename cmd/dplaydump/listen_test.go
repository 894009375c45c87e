package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/framing"
)

func TestListenStopsOnCancel(t *testing.T) {
	framing.Register()
	config := core.NewConfig()
	require.NoError(t, config.Set("tcp.address", "127.0.0.1:0"))
	require.NoError(t, config.Set("udp.address", "127.0.0.1:0"))
	require.NoError(t, config.Setup())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- listen(ctx, config)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("listen did not stop")
	}
}

func TestListenBadAddress(t *testing.T) {
	framing.Register()
	config := core.NewConfig()
	require.NoError(t, config.Set("udp.address", "not an address"))
	require.NoError(t, config.Setup())
	assert.Error(t, listen(context.Background(), config))
}

func TestLogResult(t *testing.T) {
	handle := logResult("udp")
	assert.NoError(t, handle("127.0.0.1:1", &core.ScanResult{Abandoned: true}))
	assert.NoError(t, handle("127.0.0.1:1", &core.ScanResult{Packet: []byte("junk")}))
}
