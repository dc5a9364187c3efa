package model

import "encoding/json"

// Event types pushed to auction subscribers. Payloads are best-effort
// snapshots; clients re-fetch the auction for anything decision-critical.
const (
	WSBidAccepted      = "bid_accepted"
	WSAuctionStarted   = "auction_started"
	WSAuctionCompleted = "auction_completed"
	WSAuctionCancelled = "auction_cancelled"
	WSAnnouncement     = "announcement"
)

type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewWSEvent(eventType string, payload any) *WSEvent {
	data, err := json.Marshal(payload)
	if err != nil {
		return &WSEvent{Type: eventType}
	}
	return &WSEvent{Type: eventType, Data: data}
}

type WSAnnounce struct {
	Message string `json:"message"`
}

type WSSubscribe struct {
	AuctionIDs []string `json:"auction_ids"`
}
