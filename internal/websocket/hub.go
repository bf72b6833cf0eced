package websocket

import (
	"context"
	"sync"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionSource looks up the current record of a session.
type SessionSource interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
}

// Hub fans record changes out to the preview connections of each session.
type Hub struct {
	sessions   map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sync       chan *Client
	broadcast  chan *recordUpdate
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	source     SessionSource
	log        *zap.Logger
	mu         sync.RWMutex
}

type recordUpdate struct {
	sessionID uuid.UUID
	record    domain.UnitRecord
}

func NewHub(source SessionSource) *Hub {
	return &Hub{
		sessions:   make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sync:       make(chan *Client),
		broadcast:  make(chan *recordUpdate, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		source:     source,
		log:        logger.Named("websocket"),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, clients := range h.sessions {
				for client := range clients {
					client.Close()
				}
			}
			h.sessions = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			clients, ok := h.sessions[client.sessionID]
			if !ok {
				clients = make(map[*Client]bool)
				h.sessions[client.sessionID] = clients
			}
			clients[client] = true
			h.mu.Unlock()
			h.sendSnapshot(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.sessions[client.sessionID]; ok && clients[client] {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.sessions, client.sessionID)
				}
				client.Close()
			}
			h.mu.Unlock()

		case client := <-h.sync:
			h.sendSnapshot(client)

		case update := <-h.broadcast:
			h.fanOut(update)
		}
	}
}

// Stop closes every connection and blocks until Run has exited.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Register adds a client and sends it a snapshot of its session.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Sync re-sends the session snapshot to one client.
func (h *Hub) Sync(client *Client) {
	select {
	case h.sync <- client:
	case <-h.done:
	}
}

// Publish sends a RECORD_UPDATED to every client watching the session.
func (h *Hub) Publish(sessionID uuid.UUID, record domain.UnitRecord) {
	select {
	case h.broadcast <- &recordUpdate{sessionID: sessionID, record: record.Clone()}:
	case <-h.done:
	}
}

// ClientCount returns the number of clients watching a session.
func (h *Hub) ClientCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) sendSnapshot(client *Client) {
	session, err := h.source.Get(context.Background(), client.sessionID)
	if err != nil {
		h.log.Warn("snapshot unavailable", zap.String("session_id", client.sessionID.String()), zap.Error(err))
		client.sendError("SESSION_UNAVAILABLE", err.Error())
		return
	}

	msg, err := recordMessage(MessageTypeRecordSnapshot, session.ID, session.Record)
	if err != nil {
		h.log.Error("failed to encode snapshot", zap.Error(err))
		return
	}
	client.Send(msg)
}

func (h *Hub) fanOut(update *recordUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.sessions[update.sessionID]
	if len(clients) == 0 {
		return
	}

	msg, err := recordMessage(MessageTypeRecordUpdated, update.sessionID, update.record)
	if err != nil {
		h.log.Error("failed to encode update", zap.Error(err))
		return
	}
	for client := range clients {
		client.Send(msg)
	}
}

func recordMessage(msgType MessageType, sessionID uuid.UUID, record domain.UnitRecord) (*Message, error) {
	document, err := codec.ToJSON(record)
	if err != nil {
		return nil, err
	}
	return NewMessage(msgType, RecordPayload{
		SessionID: sessionID.String(),
		Document:  document,
	})
}
