package handler

import (
	"errors"
	"log"

	"footix-backend/internal/bidding"
	"footix-backend/internal/model"
	"footix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuctionHandler struct {
	auctionSvc *service.AuctionService
}

func NewAuctionHandler(auctionSvc *service.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc}
}

// GET /api/v1/auctions
func (h *AuctionHandler) Search(c *fiber.Ctx) error {
	req := &model.SearchAuctionsRequest{
		Status:       c.Query("status", "active"),
		SearchText:   c.Query("search", ""),
		SellerClubID: c.Query("seller_club_id", ""),
		SortBy:       c.Query("sort_by", "ending_soon"),
		Limit:        c.QueryInt("limit", 50),
		Offset:       c.QueryInt("offset", 0),
	}

	auctions, total, err := h.auctionSvc.Search(c.Context(), req)
	if err != nil {
		log.Printf("[AUCTION] search error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to search auctions"})
	}

	return c.JSON(fiber.Map{
		"auctions": auctions,
		"total":    total,
	})
}

// POST /api/v1/auctions
func (h *AuctionHandler) Create(c *fiber.Ctx) error {
	clubID := c.Locals("club_id").(string)
	clubName := c.Locals("club_name").(string)

	var req model.CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	a, err := h.auctionSvc.CreateAuction(c.Context(), &clubID, &clubName, &req)
	if err != nil {
		return auctionError(c, err)
	}

	return c.Status(201).JSON(a)
}

// GET /api/v1/auctions/:id
func (h *AuctionHandler) Get(c *fiber.Ctx) error {
	snapshot, err := h.auctionSvc.GetSnapshot(c.Context(), c.Params("id"))
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(snapshot)
}

// POST /api/v1/auctions/:id/bids
func (h *AuctionHandler) Bid(c *fiber.Ctx) error {
	clubID := c.Locals("club_id").(string)
	clubName := c.Locals("club_name").(string)

	var req model.PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.auctionSvc.PlaceBid(c.Context(), c.Params("id"), clubID, clubName, req.Amount)
	if err != nil {
		return auctionError(c, err)
	}

	return c.JSON(result)
}

// PUT /api/v1/auctions/:id/schedule
func (h *AuctionHandler) UpdateSchedule(c *fiber.Ctx) error {
	var req model.UpdateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	a, err := h.auctionSvc.UpdateSchedule(c.Context(), c.Params("id"), &req)
	if err != nil {
		return auctionError(c, err)
	}

	return c.JSON(a)
}

// GET /api/v1/auctions/mine
func (h *AuctionHandler) Mine(c *fiber.Ctx) error {
	clubID := c.Locals("club_id").(string)

	auctions, err := h.auctionSvc.MyAuctions(c.Context(), clubID)
	if err != nil {
		log.Printf("[AUCTION] mine error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get auctions"})
	}

	return c.JSON(fiber.Map{"auctions": auctions})
}

// auctionError maps the bidding error taxonomy onto HTTP statuses. Bid
// rejections carry the reason verbatim so the UI can refresh the minimum
// bid and retry.
func auctionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, bidding.ErrAuctionNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "auction not found"})
	case errors.Is(err, bidding.ErrAuctionNotActive):
		return c.Status(409).JSON(fiber.Map{"error": "auction is not active"})
	case errors.Is(err, bidding.ErrBidTooLow):
		return c.Status(400).JSON(fiber.Map{"error": "bid does not exceed the minimum next bid"})
	case errors.Is(err, bidding.ErrOwnAuctionBid):
		return c.Status(400).JSON(fiber.Map{"error": "cannot bid on your own auction"})
	case errors.Is(err, bidding.ErrAlreadyHighestBid):
		return c.Status(409).JSON(fiber.Map{"error": "you already hold the highest bid"})
	case errors.Is(err, bidding.ErrInsufficientBalance):
		return c.Status(400).JSON(fiber.Map{"error": "insufficient balance for this bid"})
	case errors.Is(err, bidding.ErrPlayerAlreadyListed):
		return c.Status(409).JSON(fiber.Map{"error": "player already has an open auction"})
	case errors.Is(err, bidding.ErrScheduleLocked):
		return c.Status(409).JSON(fiber.Map{"error": "schedule is frozen once the auction starts"})
	case errors.Is(err, bidding.ErrTransaction):
		return c.Status(503).JSON(fiber.Map{"error": "bid could not be committed, please retry"})
	case errors.Is(err, bidding.ErrInvalidData):
		return c.Status(400).JSON(fiber.Map{"error": "invalid data"})
	default:
		log.Printf("[AUCTION ERROR] %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
