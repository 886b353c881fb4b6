package spectator

import (
	"encoding/json"
	"time"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
)

// MessageType names the payload carried in Message.Data
type MessageType string

const (
	MessageTypeSnapshot     MessageType = "snapshot"
	MessageTypeCardPlaced   MessageType = "card_placed"
	MessageTypeCardRemoved  MessageType = "card_removed"
	MessageTypeTokenPlaced  MessageType = "token_placed"
	MessageTypeTokenRemoved MessageType = "token_removed"
	MessageTypeScore        MessageType = "score"
	MessageTypeFreeze       MessageType = "freeze"
	MessageTypeCountdown    MessageType = "countdown"
	MessageTypeWinners      MessageType = "winners"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	GameID    string          `json:"gameId,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// SnapshotData is the full board, sent first on every connection.
type SnapshotData struct {
	display.State
}

type CardData struct {
	Slot int        `json:"slot"`
	Card cards.Card `json:"card"`
	Name string     `json:"name,omitempty"`
}

type TokenData struct {
	Player int `json:"player"`
	Slot   int `json:"slot"`
}

type ScoreData struct {
	Player int `json:"player"`
	Score  int `json:"score"`
}

type FreezeData struct {
	Player      int   `json:"player"`
	Frozen      bool  `json:"frozen"`
	RemainingMS int64 `json:"remainingMs,omitempty"`
}

type CountdownData struct {
	RemainingMS int64 `json:"remainingMs"`
	Warn        bool  `json:"warn"`
}

type WinnersData struct {
	Players []int `json:"players"`
}
