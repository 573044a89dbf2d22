package handler

import (
	"net/http"
	"strconv"
	"time"

	"gavel/internal/middleware"
	"gavel/internal/repository"
	"gavel/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminSvc      *service.AdminService
	settlementSvc *service.SettlementService
	adminRepo     *repository.AdminRepository
}

func NewAdminHandler(adminSvc *service.AdminService, settlementSvc *service.SettlementService, adminRepo *repository.AdminRepository) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, settlementSvc: settlementSvc, adminRepo: adminRepo}
}

type forceCloseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ForceClose ends an auction with a full refund to every bidder and no winner.
func (h *AdminHandler) ForceClose(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	var req forceCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.adminSvc.ForceClose(c.Request.Context(), id, middleware.GetUserID(c), req.Reason); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "auction force-closed"})
}

type banRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	var req banRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.adminSvc.BanUser(c.Request.Context(), id, middleware.GetUserID(c), req.Reason); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user banned"})
}

// RunSettlement triggers a settlement sweep outside the scheduler, e.g. from
// an operations console.
func (h *AdminHandler) RunSettlement(c *gin.Context) {
	settled, err := h.settlementSvc.RunBatch(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement batch failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": settled})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	users, total, err := h.adminRepo.ListUsers(c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	list, total, err := h.adminRepo.ListTransactions(c.Query("kind"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "total": total})
}
