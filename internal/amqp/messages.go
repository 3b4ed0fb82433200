package amqp

import (
	"encoding/json"
	"time"
)

// CyclePaidMessage announces that a card's billing cycle was paid.
// It carries only the cycle coordinates; consumers fetch whatever else
// they need from the database.
type CyclePaidMessage struct {
	CardID           int64     `json:"card_id"`
	Month            int       `json:"month"`
	Year             int       `json:"year"`
	FundingAccountID int64     `json:"funding_account_id"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewCyclePaidMessage creates a paid-cycle message for one (card, month, year).
func NewCyclePaidMessage(cardID int64, month, year int, fundingAccountID int64) *CyclePaidMessage {
	return &CyclePaidMessage{
		CardID:           cardID,
		Month:            month,
		Year:             year,
		FundingAccountID: fundingAccountID,
		Timestamp:        time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CyclePaidMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CyclePaidMessageFromJSON creates a message from JSON bytes
func CyclePaidMessageFromJSON(data []byte) (*CyclePaidMessage, error) {
	var msg CyclePaidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
