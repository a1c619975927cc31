package ws

import (
	"encoding/json"
	"sync"
)

// EventHub fans donation and leaderboard updates out to everyone watching a
// creator's event page. Subscriptions are keyed by creator ID; one connection
// watches exactly one creator.
type EventHub struct {
	mu        sync.RWMutex
	byCreator map[uint]map[*EventClient]struct{}
}

type EventClient struct {
	CreatorID uint
	Send      chan []byte
	hub       *EventHub
	mu        sync.Mutex
	closed    bool
}

func NewEventHub() *EventHub {
	return &EventHub{byCreator: make(map[uint]map[*EventClient]struct{})}
}

func (h *EventHub) Subscribe(creatorID uint) *EventClient {
	c := &EventClient{
		CreatorID: creatorID,
		Send:      make(chan []byte, 16),
		hub:       h,
	}
	h.mu.Lock()
	if h.byCreator[creatorID] == nil {
		h.byCreator[creatorID] = make(map[*EventClient]struct{})
	}
	h.byCreator[creatorID][c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (c *EventClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	c.hub.unsubscribe(c)
}

func (h *EventHub) unsubscribe(c *EventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byCreator[c.CreatorID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byCreator, c.CreatorID)
		}
	}
}

// Broadcast sends payload to every watcher of the creator's event. Slow
// consumers are skipped rather than blocking the sender.
func (h *EventHub) Broadcast(creatorID uint, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	m := h.byCreator[creatorID]
	clients := make([]*EventClient, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *EventHub) WatcherCount(creatorID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byCreator[creatorID])
}
