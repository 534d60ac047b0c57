// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
)

const (
	socketBufferSize  = 1024
	messageBufferSize = 16
	writeWait         = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  socketBufferSize,
	WriteBufferSize: socketBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from the robot's LAN
	},
}

// wsMessage is the envelope streamed to dashboard clients.
type wsMessage struct {
	Type string `json:"type"` // imu, pose, heading or snapshot
	Data any    `json:"data"`
}

type snapshot struct {
	Sample  *imu.Sample       `json:"imu,omitempty"`
	Pose    *orientation.Pose `json:"pose,omitempty"`
	Heading *imu.Heading      `json:"heading,omitempty"`
}

// WebState holds the latest telemetry and fans updates out to websocket
// clients.
type WebState struct {
	mu      sync.RWMutex
	sample  *imu.Sample
	pose    *orientation.Pose
	heading *imu.Heading

	hub *hub
	log *zap.Logger
}

func NewWebState(log *zap.Logger) *WebState {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebState{hub: newHub(), log: log}
}

func (s *WebState) SetSample(v imu.Sample) {
	s.mu.Lock()
	s.sample = &v
	s.mu.Unlock()
	s.broadcast("imu", v)
}

func (s *WebState) SetPose(v orientation.Pose) {
	s.mu.Lock()
	s.pose = &v
	s.mu.Unlock()
	s.broadcast("pose", v)
}

func (s *WebState) SetHeading(v imu.Heading) {
	s.mu.Lock()
	s.heading = &v
	s.mu.Unlock()
	s.broadcast("heading", v)
}

func (s *WebState) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{Sample: s.sample, Pose: s.pose, Heading: s.heading}
}

func (s *WebState) broadcast(kind string, v any) {
	msg, err := json.Marshal(wsMessage{Type: kind, Data: v})
	if err != nil {
		s.log.Warn("websocket marshal error", zap.String("type", kind), zap.Error(err))
		return
	}
	s.hub.broadcast(msg)
}

// Handler serves the JSON API, the websocket stream and the static
// dashboard from staticDir (skipped when empty).
func (s *WebState) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/imu", func(w http.ResponseWriter, r *http.Request) {
		writeLatest(w, s.snapshot().Sample, s.log)
	})
	mux.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		writeLatest(w, s.snapshot().Pose, s.log)
	})
	mux.HandleFunc("/api/heading", func(w http.ResponseWriter, r *http.Request) {
		writeLatest(w, s.snapshot().Heading, s.log)
	})
	mux.HandleFunc("/ws", s.serveWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func writeLatest[T any](w http.ResponseWriter, v *T, log *zap.Logger) {
	if v == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("json encode error", zap.Error(err))
	}
}

func (s *WebState) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, messageBufferSize)}
	s.hub.add(c)
	defer s.hub.remove(c)
	go c.write()

	// current state first, so a new dashboard does not start blank
	if msg, err := json.Marshal(wsMessage{Type: "snapshot", Data: s.snapshot()}); err == nil {
		s.hub.sendTo(c, msg)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket error", zap.Error(err))
			}
			return
		}
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) write() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// hub tracks connected clients. Slow clients miss messages rather than
// block the publisher.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub { return &hub{clients: map[*wsClient]struct{}{}} }

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) sendTo(c *wsClient, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// RunWeb serves the dashboard fed from MQTT until ctx is done.
func RunWeb(ctx context.Context, cfg *config.Config, staticDir string, log *zap.Logger) error {
	state := NewWebState(log)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicIMU, log, state.SetSample); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicPose, log, state.SetPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicHeading, log, state.SetHeading); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           state.Handler(staticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("web server listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
