package handler

import (
	"encoding/json"

	"footix-backend/internal/model"
	"footix-backend/internal/repository"
	"footix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	auctionSvc  *service.AuctionService
	auctionRepo *repository.AuctionRepository
	wsHub       *service.WSHub
}

func NewAdminHandler(auctionSvc *service.AuctionService, auctionRepo *repository.AuctionRepository, wsHub *service.WSHub) *AdminHandler {
	return &AdminHandler{auctionSvc: auctionSvc, auctionRepo: auctionRepo, wsHub: wsHub}
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.auctionRepo.CountByStatus(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to count auctions"})
	}

	return c.JSON(fiber.Map{
		"auctions":       counts,
		"viewers_online": h.wsHub.OnlineCount(),
	})
}

// POST /api/v1/admin/auctions — system listing with no seller club
// (free agent).
func (h *AdminHandler) CreateSystemAuction(c *fiber.Ctx) error {
	var req model.CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	a, err := h.auctionSvc.CreateAuction(c.Context(), nil, nil, &req)
	if err != nil {
		return auctionError(c, err)
	}

	return c.Status(201).JSON(a)
}

// DELETE /api/v1/admin/auctions/:id
func (h *AdminHandler) CancelAuction(c *fiber.Ctx) error {
	a, err := h.auctionSvc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(a)
}

// POST /api/v1/admin/announce
func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	var req model.WSAnnounce
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	data, _ := json.Marshal(req)
	h.wsHub.Broadcast(&model.WSEvent{
		Type: model.WSAnnouncement,
		Data: data,
	})

	return c.JSON(fiber.Map{"ok": true, "online": h.wsHub.OnlineCount()})
}
