// Package protocol defines the JSON messages exchanged over the websocket
// between a player and the server. One connection plays one match.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeHello        MessageType = "hello"
	TypeMove         MessageType = "move"
	TypeRestart      MessageType = "restart"
	TypeListProfiles MessageType = "list_profiles"

	// Server -> Client
	TypeWelcome  MessageType = "welcome"
	TypeRound    MessageType = "round"
	TypeProfiles MessageType = "profiles"
	TypeError    MessageType = "error"
)

func (t MessageType) String() string { return string(t) }

// Error codes carried in ErrorData.Code
const (
	CodeInvalidMessage = "invalid_message"
	CodeInvalidMove    = "invalid_move"
	CodeUnknownProfile = "unknown_profile"
	CodeDuplicateName  = "duplicate_name"
	CodeMatchComplete  = "match_complete"
	CodeNoMatch        = "no_match"
	CodeInternal       = "internal"
)

var (
	ErrUnexpectedType = errors.New("unexpected message type")
	ErrMalformed      = errors.New("malformed message")
)

// Message is the envelope for every websocket frame
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps data in an envelope stamped with the current time
func NewMessage(t MessageType, data any) (*Message, error) {
	return NewMessageAt(t, data, time.Now())
}

// NewMessageAt is NewMessage with an explicit timestamp
func NewMessageAt(t MessageType, data any, at time.Time) (*Message, error) {
	msg := &Message{Type: t, Timestamp: at}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", t, err)
		}
		msg.Data = raw
	}
	return msg, nil
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMalformed, m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, m.Type, err)
	}
	return nil
}

// Expect decodes the payload after checking the message type
func (m *Message) Expect(t MessageType, v any) error {
	if m.Type == TypeError {
		var e ErrorData
		if err := m.Decode(&e); err != nil {
			return err
		}
		return &e
	}
	if m.Type != t {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedType, m.Type, t)
	}
	return m.Decode(v)
}

// Client -> Server messages

// HelloData starts a match against the selected opponent
type HelloData struct {
	PlayerName string `json:"playerName"`
	Opponent   string `json:"opponent"` // 1-based number or profile name
}

// MoveData carries the player's gesture key or name
type MoveData struct {
	Choice string `json:"choice"`
}

// RestartData starts the next match. Opponent is required when
// KeepOpponent is false.
type RestartData struct {
	KeepOpponent bool   `json:"keepOpponent"`
	Opponent     string `json:"opponent,omitempty"`
}

// Server -> Client messages

type GestureInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// WelcomeData is sent when a match starts or restarts
type WelcomeData struct {
	MatchID      string        `json:"matchId"`
	PlayerName   string        `json:"playerName"`
	Opponent     ProfileInfo   `json:"opponent"`
	WinningScore int           `json:"winningScore"`
	Gestures     []GestureInfo `json:"gestures"`
}

// RoundData reports a resolved round from the player's side
type RoundData struct {
	MatchID       string    `json:"matchId"`
	Number        int       `json:"number"`
	PlayerMove    string    `json:"playerMove"`
	OpponentMove  string    `json:"opponentMove"`
	Result        string    `json:"result"` // win, lose or tie
	Winner        string    `json:"winner"` // participant name or "tie"
	Description   string    `json:"description"`
	PlayerScore   int       `json:"playerScore"`
	OpponentScore int       `json:"opponentScore"`
	Complete      bool      `json:"complete"`
	MatchWinner   string    `json:"matchWinner,omitempty"`
	PlayedAt      time.Time `json:"playedAt"`
}

// Round results
const (
	ResultWin  = "win"
	ResultLose = "lose"
	ResultTie  = "tie"
)

type ProfileInfo struct {
	Number      int                `json:"number"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Kind        string             `json:"kind"`
	Weights     map[string]float64 `json:"weights,omitempty"`
}

type ProfilesData struct {
	Profiles []ProfileInfo `json:"profiles"`
}

// ErrorData is sent instead of the expected reply
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorData) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
