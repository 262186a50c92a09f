package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fcoo/permalink/internal/errors"
)

const writeWait = 5 * time.Second

// client is one websocket connection. Writes are serialized by mu.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex

	// sequence of the last snapshot delivered, guarded by hub.sendMu
	seq uint64
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// hub fans snapshots out to websocket clients. Snapshots carry the server's
// sequence number; a client never receives one older than what it already has.
type hub struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *httpMetrics

	sendMu sync.Mutex
}

func newHub(logger *slog.Logger, metrics *httpMetrics) *hub {
	return &hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.metrics.streamClients.Inc()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		h.metrics.streamClients.Dec()
		c.conn.Close()
	}
}

// join registers c and sends it the snapshot returned by current. No
// broadcast is delivered to c before it.
func (h *hub) join(c *client, current func() (uint64, Snapshot)) error {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.add(c)
	seq, snap := current()
	c.seq = seq
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.send(data)
}

// broadcast sends snap, taken at sequence seq, to all clients, dropping those
// that fail. Clients already holding seq or a later snapshot are skipped.
func (h *hub) broadcast(seq uint64, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("encoding snapshot failed", "error", err)
		return
	}

	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if seq <= c.seq {
			continue
		}
		c.seq = seq
		if err := c.send(data); err != nil {
			h.metrics.streamErrors.WithLabelValues("write").Inc()
			h.remove(c)
		}
	}
}

// close disconnects every client.
func (h *hub) close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}

// handleStream upgrades the connection, sends the current snapshot and then
// every later one. A client may send {"hash": "..."} to navigate.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.metrics.streamErrors.WithLabelValues("upgrade").Inc()
		s.logger.Warn("websocket upgrade failed", "error", errors.New("E160").Wrap(err))
		return
	}

	c := &client{conn: conn}
	defer s.hub.remove(c)
	s.logger.Debug("stream client connected", "remote", r.RemoteAddr)

	if err := s.hub.join(c, s.sequencedSnapshot); err != nil {
		s.hub.metrics.streamErrors.WithLabelValues("write").Inc()
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.hub.metrics.streamErrors.WithLabelValues("read").Inc()
				s.logger.Warn("stream read error", "error", err)
			}
			return
		}

		var req hashRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.hub.metrics.streamErrors.WithLabelValues("decode").Inc()
			c.send([]byte(errors.New("E140").Wrap(err).FormatJSON()))
			continue
		}
		s.do(func() { s.location.SetHash(req.Hash) })
	}
}
