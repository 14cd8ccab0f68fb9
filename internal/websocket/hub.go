package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	JournalID() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by journal
// It is safe for concurrent use
type Hub struct {
	// journals maps journal ID to a map of client ID to client
	journals map[string]map[string]ClientInterface
	mu       sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		journals: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its journal
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	journalID := client.JournalID()
	clientID := client.ID()

	if h.journals[journalID] == nil {
		h.journals[journalID] = make(map[string]ClientInterface)
	}

	h.journals[journalID][clientID] = client

	log.Debug().
		Str("journal_id", journalID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	journalID := client.JournalID()
	clientID := client.ID()

	if clients, ok := h.journals[journalID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty journal maps
			if len(clients) == 0 {
				delete(h.journals, journalID)
			}

			log.Debug().
				Str("journal_id", journalID).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients watching a specific journal
func (h *Hub) Broadcast(journalID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("journal_id", journalID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.journals[journalID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	// Send to each client asynchronously
	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("journal_id", journalID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("journal_id", journalID).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients watching a journal
func (h *Hub) ClientCount(journalID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.journals[journalID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all journals
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.journals {
		total += len(clients)
	}
	return total
}
