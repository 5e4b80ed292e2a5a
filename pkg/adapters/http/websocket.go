package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// ServersSocket handles GET /ws/servers.
// The current status is sent on connect and after every change. Clients may send
// {"online": n} to set the counter.
func (s *Server) ServersSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket: Upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.readServerUpdates(conn, cancel)

	for online := range s.App.Servers().Watch(ctx) {
		if err := conn.WriteJSON(s.serverStatus(online)); err != nil {
			s.logger.Debug("WebSocket: Write failed", "err", err)
			cancel()
			break
		}
	}
	s.logger.Debug("WebSocket: Client disconnected")
}

func (s *Server) readServerUpdates(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var update serverUpdate
		if err := json.Unmarshal(data, &update); err != nil || update.Online == nil {
			s.logger.Debug("WebSocket: Ignoring invalid message", "payload", string(data))
			continue
		}
		s.App.Servers().Set(*update.Online)
	}
}
