package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"footix-backend/internal/model"
)

// WebhookService announces auction milestones to a Discord channel via a
// webhook. Fire-and-forget: a failed post is logged and dropped.
type WebhookService struct {
	webhookURL string
	client     *http.Client
}

func NewWebhookService(webhookURL string) *WebhookService {
	return &WebhookService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type discordEmbed struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

const (
	colorGreen = 0x2ecc71
	colorGold  = 0xf1c40f
)

// AnnounceOpened posts when bidding on a player opens.
func (s *WebhookService) AnnounceOpened(a *model.Auction) {
	seller := "Free agent"
	if a.SellerClubName != nil {
		seller = *a.SellerClubName
	}
	s.send(discordEmbed{
		Title:       "🔨 Auction open: " + a.PlayerName,
		Description: fmt.Sprintf("Bidding is live until %s", a.EndTime().Format("15:04 MST")),
		Color:       colorGreen,
		Fields: []discordField{
			{Name: "Starting bid", Value: fmt.Sprintf("%d", a.StartingBid), Inline: true},
			{Name: "Seller", Value: seller, Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// AnnounceResult posts the hammer-down outcome.
func (s *WebhookService) AnnounceResult(a *model.Auction) {
	desc := "No bids received"
	if a.CurrentBidderName != nil {
		desc = fmt.Sprintf("%s signs for %d", *a.CurrentBidderName, a.CurrentBid)
	}
	s.send(discordEmbed{
		Title:       "🏆 Auction closed: " + a.PlayerName,
		Description: desc,
		Color:       colorGold,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *WebhookService) send(embed discordEmbed) {
	if s.webhookURL == "" {
		return
	}
	go func() {
		body, err := json.Marshal(discordWebhookPayload{Embeds: []discordEmbed{embed}})
		if err != nil {
			return
		}
		resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("[webhook] post failed: %v", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Printf("[webhook] post returned %d", resp.StatusCode)
		}
	}()
}
