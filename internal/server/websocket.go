package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsMaxMessageBytes = 8 * 1024
	wsWriteTimeout    = 5 * time.Second
)

// wsClient is one live socket. Its id is the connection handle the registry
// knows participants by.
type wsClient struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type wsHub struct {
	mu      sync.Mutex
	clients map[string]*wsClient
	groups  map[string]map[string]struct{}
	logger  *slog.Logger
}

func newWSHub(logger *slog.Logger) *wsHub {
	return &wsHub{
		clients: make(map[string]*wsClient),
		groups:  make(map[string]map[string]struct{}),
		logger:  logger,
	}
}

func (h *wsHub) Add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

// Remove forgets the client and drops it from every group.
func (h *wsHub) Remove(id string) {
	h.mu.Lock()
	client := h.clients[id]
	delete(h.clients, id)
	for code, group := range h.groups {
		delete(group, id)
		if len(group) == 0 {
			delete(h.groups, code)
		}
	}
	h.mu.Unlock()
	if client != nil {
		_ = client.conn.Close()
	}
}

func (h *wsHub) Join(code, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.join(code, id)
}

// JoinLive adds the client to the group only if live still reports the
// session as registered. Broadcast snapshots members under the same lock, so
// a session torn down concurrently either reaches this client with its final
// broadcast or this call reports false.
func (h *wsHub) JoinLive(code, id string, live func(code string) bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !live(code) {
		return false
	}
	h.join(code, id)
	return true
}

func (h *wsHub) join(code, id string) {
	group := h.groups[code]
	if group == nil {
		group = make(map[string]struct{})
		h.groups[code] = group
	}
	group[id] = struct{}{}
}

func (h *wsHub) Leave(code, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		return
	}
	delete(group, id)
	if len(group) == 0 {
		delete(h.groups, code)
	}
}

// Drop removes the whole group once its session is gone.
func (h *wsHub) Drop(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, code)
}

func (h *wsHub) Members(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[code])
}

func (h *wsHub) Send(id string, payload outbound) {
	h.mu.Lock()
	client := h.clients[id]
	h.mu.Unlock()
	if client == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := client.write(data); err != nil {
		h.drop(client, err)
	}
}

func (h *wsHub) Broadcast(code string, payload outbound) {
	h.mu.Lock()
	group := h.groups[code]
	clients := make([]*wsClient, 0, len(group))
	for id := range group {
		if client := h.clients[id]; client != nil {
			clients = append(clients, client)
		}
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.drop(client, err)
		}
	}
}

// drop forgets a client whose write failed. Closing the socket ends its read
// loop, which runs the usual disconnect handling.
func (h *wsHub) drop(client *wsClient, err error) {
	h.logger.Debug("ws write failed", "connection_id", client.id, "error", err)
	h.Remove(client.id)
}

func (s *Server) handleWebsocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &wsClient{id: uuid.NewString(), conn: conn}
	conn.SetReadLimit(wsMaxMessageBytes)
	s.ws.Add(client)
	s.logger.Debug("ws connected", "connection_id", client.id, "remote", c.Request.RemoteAddr)
	go s.readWS(client)
}

func (s *Server) readWS(client *wsClient) {
	defer s.ws.Remove(client.id)
	defer s.handleDisconnect(client.id)
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			s.logger.Debug("ws disconnected", "connection_id", client.id, "error", err)
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			s.sendError(client.id, errMalformedMessage)
			continue
		}
		s.dispatch(client.id, msg)
	}
}
