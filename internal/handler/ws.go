package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"footix-backend/internal/model"
	"footix-backend/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type WSHandler struct {
	hub       *service.WSHub
	jwtSecret []byte
}

func NewWSHandler(hub *service.WSHub, jwtSecret string) *WSHandler {
	return &WSHandler{hub: hub, jwtSecret: []byte(jwtSecret)}
}

func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		// Validate JWT from query param
		token := c.Query("token")
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "token required"})
		}

		clubID, clubName, err := h.validateToken(token)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals("club_id", clubID)
		c.Locals("club_name", clubName)
		return websocket.New(h.handleConnection)(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *WSHandler) validateToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid claims")
	}

	clubID, _ := claims["sub"].(string)
	clubName, _ := claims["club_name"].(string)
	if clubID == "" {
		return "", "", fmt.Errorf("missing subject")
	}
	return clubID, clubName, nil
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	clubID, _ := c.Locals("club_id").(string)
	clubName, _ := c.Locals("club_name").(string)

	client := service.NewWSClient(c, clubID, clubName)

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Writer goroutine
	go func() {
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	// Reader loop
	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		// Reset deadline on any message
		c.SetReadDeadline(time.Now().Add(60 * time.Second))

		var event model.WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case "ping":
			pong, _ := json.Marshal(model.WSEvent{Type: "pong"})
			select {
			case client.Send <- pong:
			default:
			}
		case "subscribe":
			// Client picks which auctions it wants pushed updates for.
			var sub model.WSSubscribe
			if err := json.Unmarshal(event.Data, &sub); err == nil {
				client.SetSubscriptions(sub.AuctionIDs)
			}
		default:
			log.Printf("WS: unknown event type %s from %s", event.Type, clubName)
		}
	}
}
