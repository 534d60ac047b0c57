package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
)

func TestWebAPI(t *testing.T) {
	state := NewWebState(nil)
	srv := httptest.NewServer(state.Handler(""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	state.SetPose(orientation.Pose{Roll: 3, Pitch: -1, Yaw: 90})

	resp, err = http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var p orientation.Pose
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, orientation.Pose{Roll: 3, Pitch: -1, Yaw: 90}, p)
}

type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestWebSocketStream(t *testing.T) {
	state := NewWebState(nil)
	state.SetHeading(imu.Heading{Angle: 10})
	srv := httptest.NewServer(state.Handler(""))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg wsEnvelope
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	var snap snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	require.NotNil(t, snap.Heading)
	assert.Equal(t, 10.0, snap.Heading.Angle)
	assert.Nil(t, snap.Pose)

	state.SetHeading(imu.Heading{Angle: 12.5, AngleRate: 1})

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "heading", msg.Type)
	var h imu.Heading
	require.NoError(t, json.Unmarshal(msg.Data, &h))
	assert.Equal(t, 12.5, h.Angle)
}

func TestHubDropsForSlowClients(t *testing.T) {
	h := newHub()
	c := &wsClient{send: make(chan []byte, 1)}
	h.add(c)

	h.broadcast([]byte("a"))
	h.broadcast([]byte("b"))

	assert.Equal(t, "a", string(<-c.send))
	assert.Equal(t, 1, h.len())

	h.remove(c)
	h.remove(c)
	assert.Equal(t, 0, h.len())
	_, open := <-c.send
	assert.False(t, open)
}
