package http

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Servers(t *testing.T) {
	app, ts := newTestServer(t)
	c := NewClient(ts.URL + "/")
	ctx := context.Background()

	status, err := c.Servers(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ServerStatus{Region: domain.DefaultRegion, Online: 0}, status)

	status, err = c.SetServers(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, status.Online)
	assert.Equal(t, 7, app.Servers().Get())

	status, err = c.SetServers(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, status.Online)

	_, err = NewClient(ts.URL+"/missing").Servers(ctx)
	assert.ErrorContains(t, err, "404")
}

func TestClient_WatchServers(t *testing.T) {
	app, ts := newTestServer(t)
	c := NewClient(ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan domain.ServerStatus, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.WatchServers(ctx, func(s domain.ServerStatus) { seen <- s })
	}()

	select {
	case s := <-seen:
		assert.Equal(t, 0, s.Online)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial status")
	}

	app.Servers().Set(3)
	select {
	case s := <-seen:
		assert.Equal(t, 3, s.Online)
	case <-time.After(2 * time.Second):
		t.Fatal("no update after Set")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
