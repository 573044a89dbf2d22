package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gavel/internal/middleware"
	"gavel/internal/models"
	"gavel/internal/service"
	"gavel/pkg/cache"
	"gavel/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const auctionCacheTTL = 30 * time.Second

type AuctionHandler struct {
	auctionSvc *service.AuctionService
	cloud      cloudinary.Client
	rdb        *redis.Client
}

func NewAuctionHandler(auctionSvc *service.AuctionService, cloud cloudinary.Client, rdb *redis.Client) *AuctionHandler {
	return &AuctionHandler{auctionSvc: auctionSvc, cloud: cloud, rdb: rdb}
}

func auctionCacheKey(id uint) string {
	return "auction:" + strconv.FormatUint(uint64(id), 10)
}

// invalidate drops the cached detail view after a write.
func (h *AuctionHandler) invalidate(c *gin.Context, id uint) {
	if h.rdb != nil {
		_ = cache.Delete(c.Request.Context(), h.rdb, auctionCacheKey(id))
	}
}

type createAuctionRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	BaselinePrice decimal.Decimal `json:"baseline_price" binding:"required"`
	StartTime     time.Time       `json:"start_time" binding:"required"`
	EndTime       time.Time       `json:"end_time" binding:"required"`
}

func (h *AuctionHandler) Create(c *gin.Context) {
	var req createAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	auction, err := h.auctionSvc.Create(c.Request.Context(), middleware.GetUserID(c), service.CreateAuctionInput{
		Name:          req.Name,
		Description:   req.Description,
		BaselinePrice: req.BaselinePrice,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, auction)
}

func (h *AuctionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, total, err := h.auctionSvc.List(c.Query("status"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list auctions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": list, "total": total, "page": page, "limit": limit})
}

func (h *AuctionHandler) Get(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	if h.rdb != nil {
		var cached models.Auction
		if found, err := cache.Get(c.Request.Context(), h.rdb, auctionCacheKey(id), &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
	}
	auction, err := h.auctionSvc.Get(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if h.rdb != nil {
		_ = cache.Set(c.Request.Context(), h.rdb, auctionCacheKey(id), auction, auctionCacheTTL)
	}
	c.JSON(http.StatusOK, auction)
}

func (h *AuctionHandler) Pause(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	if err := h.auctionSvc.Pause(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "auction paused"})
}

type resumeRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (h *AuctionHandler) Resume(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auctionSvc.Resume(c.Request.Context(), id, middleware.GetUserID(c), req.StartTime, req.EndTime); err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "auction resumed"})
}

type updateAuctionRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	BaselinePrice *decimal.Decimal `json:"baseline_price"`
}

func (h *AuctionHandler) Update(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	var req updateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.auctionSvc.Update(c.Request.Context(), id, middleware.GetUserID(c), service.UpdateAuctionInput{
		Name:          req.Name,
		Description:   req.Description,
		BaselinePrice: req.BaselinePrice,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "auction updated"})
}

func (h *AuctionHandler) Delete(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	publicIDs, err := h.auctionSvc.Delete(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if h.cloud != nil {
		for _, publicID := range publicIDs {
			if err := h.cloud.DeleteByPublicID(c.Request.Context(), publicID); err != nil {
				logrus.WithField("public_id", publicID).WithError(err).Warn("failed to delete remote image")
			}
		}
	}
	h.invalidate(c, id)
	c.JSON(http.StatusOK, gin.H{"message": "auction deleted"})
}

// UploadImage stores a listing photo on Cloudinary and attaches it.
func (h *AuctionHandler) UploadImage(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads disabled"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "gavel/auctions/" + strconv.FormatUint(uint64(id), 10)
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, _, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	if err := h.auctionSvc.AddImage(c.Request.Context(), id, middleware.GetUserID(c), url, folder+"/"+publicID); err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate(c, id)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func parseID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0
	}
	return uint(id)
}
