package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"proto-review-api/internal/dto"
	"proto-review-api/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Event is the wire format pushed to subscribers of a page
type Event struct {
	Type      string              `json:"type"`
	PageID    string              `json:"pageId"`
	Comment   dto.CommentResponse `json:"comment"`
	Timestamp time.Time           `json:"timestamp"`
}

type subscriber struct {
	conn   *websocket.Conn
	send   chan []byte
	pageID string
}

// Hub fans comment events out to WebSocket subscribers, keyed by page.
// Viewers subscribe read-only; all mutations go through the HTTP API.
type Hub struct {
	subscribers   map[string]map[*subscriber]bool
	subscribersMu sync.RWMutex
	register      chan *subscriber
	unregister    chan *subscriber
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewHub creates a hub and starts its run loop
func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*subscriber]bool),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		metrics:     m,
		logger:      logger,
	}

	go h.run()

	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			h.subscribersMu.Lock()
			if h.subscribers[sub.pageID] == nil {
				h.subscribers[sub.pageID] = make(map[*subscriber]bool)
			}
			h.subscribers[sub.pageID][sub] = true
			h.subscribersMu.Unlock()

			if h.metrics != nil {
				h.metrics.WSConnectionOpened()
			}

			h.logger.Info("Subscriber registered",
				zap.String("page_id", sub.pageID))

		case sub := <-h.unregister:
			h.subscribersMu.Lock()
			if subs, ok := h.subscribers[sub.pageID]; ok {
				if _, exists := subs[sub]; exists {
					delete(subs, sub)
					close(sub.send)
					if len(subs) == 0 {
						delete(h.subscribers, sub.pageID)
					}

					if h.metrics != nil {
						h.metrics.WSConnectionClosed()
					}
				}
			}
			h.subscribersMu.Unlock()

			h.logger.Info("Subscriber unregistered",
				zap.String("page_id", sub.pageID))
		}
	}
}

// PublishCommentEvent broadcasts a comment event to every subscriber of
// the page. Slow subscribers are dropped rather than blocking the caller.
func (h *Hub) PublishCommentEvent(pageID, eventType string, comment dto.CommentResponse) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		PageID:    pageID,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	h.subscribersMu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[pageID]))
	for sub := range h.subscribers[pageID] {
		subs = append(subs, sub)
	}
	h.subscribersMu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.send <- payload:
		default:
			h.logger.Warn("Dropping slow subscriber",
				zap.String("page_id", pageID))
			go func(s *subscriber) { h.unregister <- s }(sub)
		}
	}
}

// HandleWebSocket godoc
// @Summary      Subscribe to page events
// @Description  Opens a WebSocket that streams comment events for a page. Read-only; inbound messages are ignored.
// @Tags         websocket
// @Param        pageId path string true "Page identifier"
// @Success      101 {string} string "Switching Protocols"
// @Router       /ws/{pageId} [get]
func (h *Hub) HandleWebSocket(c *gin.Context) {
	pageID := c.Param("pageId")
	if pageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page ID required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	sub := &subscriber{
		conn:   conn,
		send:   make(chan []byte, 256),
		pageID: pageID,
	}

	h.register <- sub

	go h.writePump(sub)
	go h.readPump(sub)
}

// readPump drains the connection so pong frames are processed and
// disconnects are noticed. Inbound payloads are discarded.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.unregister <- sub
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(maxMessageSize)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket error", zap.Error(err))
			}
			break
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := sub.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
