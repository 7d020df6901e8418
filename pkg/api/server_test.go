package api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bytestream/pkg/codec"
)

func TestNewServer_Defaults(t *testing.T) {
	server, err := NewServer(nil, nil, ServerConfig{Port: 8080, APIKey: "secret-key", Order: codec.LittleEndian}, NewMetrics(NewRegistry()), nil)
	require.NoError(t, err)

	assert.Equal(t, codec.LittleEndian, server.config.Order)
	assert.Equal(t, "secret-key", server.config.APIKey)
	assert.Equal(t, defaultShutdownTimeout, server.config.ShutdownTimeout)
	assert.NotNil(t, server.logger)
}

func TestNewServer_InvalidOrder(t *testing.T) {
	for _, order := range []codec.ByteOrder{0, 9} {
		server, err := NewServer(nil, nil, ServerConfig{APIKey: "secret-key", Order: order}, NewMetrics(NewRegistry()), nil)
		assert.ErrorIs(t, err, codec.ErrInvalidOrder)
		assert.Nil(t, server)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	NewMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
}

func TestStartServer_Shutdown(t *testing.T) {
	env := setupTestServer(t)

	// Reserve a free port
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	env.server.config.Bind = "127.0.0.1"
	env.server.config.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServerFactory().CreateServerStarter().StartServer(ctx, env.server, NewRegistry())
	}()

	// Wait for the listener to come up
	assert.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", l.Addr().String())
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServer_ListenError(t *testing.T) {
	env := setupTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	env.server.config.Bind = "127.0.0.1"
	env.server.config.Port = l.Addr().(*net.TCPAddr).Port

	err = StartServer(context.Background(), env.server, NewRegistry())
	assert.Error(t, err)
}
