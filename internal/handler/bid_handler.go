package handler

import (
	"net/http"

	"gavel/internal/middleware"
	"gavel/internal/service"
	"gavel/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type BidHandler struct {
	biddingSvc *service.BiddingService
	rdb        *redis.Client
}

func NewBidHandler(biddingSvc *service.BiddingService, rdb *redis.Client) *BidHandler {
	return &BidHandler{biddingSvc: biddingSvc, rdb: rdb}
}

type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Place creates or raises the caller's bid on an auction.
func (h *BidHandler) Place(c *gin.Context) {
	auctionID := parseID(c)
	if auctionID == 0 {
		return
	}
	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bidID, err := h.biddingSvc.PlaceBid(c.Request.Context(), auctionID, middleware.GetUserID(c), req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	// The cached detail view embeds the bid list.
	if h.rdb != nil {
		_ = cache.Delete(c.Request.Context(), h.rdb, auctionCacheKey(auctionID))
	}
	c.JSON(http.StatusCreated, gin.H{"bid_id": bidID})
}

// List returns the live bids on an auction, highest first.
func (h *BidHandler) List(c *gin.Context) {
	auctionID := parseID(c)
	if auctionID == 0 {
		return
	}
	bids, err := h.biddingSvc.ListForAuction(auctionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bids"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}
