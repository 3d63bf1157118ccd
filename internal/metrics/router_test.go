package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus Status

func (s fixedStatus) Status() Status { return Status(s) }

func TestRouter_Healthz(t *testing.T) {
	ts := httptest.NewServer(NewRouter(RouterConfig{DisableLogging: true}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRouter_Status(t *testing.T) {
	ts := httptest.NewServer(NewRouter(RouterConfig{
		Status:         fixedStatus{PlayersOnline: 3, NpcsRegistered: 7, Tick: 42},
		DisableLogging: true,
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 3, got.PlayersOnline)
	assert.Equal(t, 7, got.NpcsRegistered)
	assert.Equal(t, uint64(42), got.Tick)
}

func TestRouter_StatusUnavailable(t *testing.T) {
	ts := httptest.NewServer(NewRouter(RouterConfig{DisableLogging: true}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	RecordPass(KindPlayer, time.Millisecond, 128, 4)
	RecordDropped(KindNpc, ReasonOverflow)
	UpdateOnline(2, 5)

	ts := httptest.NewServer(NewRouter(RouterConfig{DisableLogging: true}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	assert.True(t, strings.Contains(text, `rs2go_sync_update_bytes_total{kind="player"}`))
	assert.True(t, strings.Contains(text, `rs2go_sync_dropped_updates_total{kind="npc",reason="overflow"}`))
	assert.True(t, strings.Contains(text, "rs2go_players_online 2"))
}

func TestServeListener_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, ln, NewRouter(RouterConfig{DisableLogging: true}))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
