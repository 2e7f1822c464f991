package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/logger"
	"skillxintell/internal/pkg/metrics"

	"github.com/google/uuid"
)

type envelope struct {
	userID  uuid.UUID
	message []byte
}

// Hub tracks open sockets per user and delivers messages to every socket of
// a user.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	direct     chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     logger.Logger
	metrics    *metrics.Metrics
}

func NewHub(log logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		direct:     make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     log,
		metrics:    m,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			h.metrics.ConnectionOpened()
			if h.logger != nil {
				h.logger.Debug("ws connected", "user_id", client.userID, "total_clients", total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case env := <-h.direct:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[env.userID]))
			for c := range h.clients[env.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- env.message:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	set, ok := h.clients[client.userID]
	removed := false
	if ok && set[client] {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.userID)
		}
		close(client.send)
		removed = true
	}
	total := h.countLocked()
	h.mutex.Unlock()

	if removed {
		h.metrics.ConnectionClosed()
		if h.logger != nil {
			h.logger.Debug("ws disconnected", "user_id", client.userID, "total_clients", total)
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			h.metrics.ConnectionClosed()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendTo queues message for every socket of userID. The message is dropped
// when the hub is saturated.
func (h *Hub) SendTo(userID uuid.UUID, message []byte) {
	if h == nil {
		return
	}
	select {
	case h.direct <- envelope{userID: userID, message: message}:
	default:
		if h.logger != nil {
			h.logger.Warn("ws message dropped", "reason", "buffer_full", "user_id", userID)
		}
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

type notification struct {
	Type      verification.EventType `json:"type"`
	Data      verification.Event     `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

// Notify pushes ev to the party who did not cause it.
func (h *Hub) Notify(_ context.Context, ev verification.Event) error {
	if h == nil {
		return nil
	}
	b, err := json.Marshal(notification{
		Type:      ev.Type,
		Data:      ev,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	h.SendTo(ev.Recipient(), b)
	return nil
}
