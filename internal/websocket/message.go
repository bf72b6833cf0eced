package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSyncState MessageType = "SYNC_STATE"

	// Server to Client
	MessageTypeRecordSnapshot MessageType = "RECORD_SNAPSHOT"
	MessageTypeRecordUpdated  MessageType = "RECORD_UPDATED"
	MessageTypeError          MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Server to Client payloads

// RecordPayload carries the serialized unit document exactly as a save would
// write it.
type RecordPayload struct {
	SessionID string          `json:"sessionId"`
	Document  json.RawMessage `json:"document"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
