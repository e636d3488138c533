package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/interfaces/http/middleware"
	"echoforge.backend/internal/interfaces/http/response"
)

type AnalysisService interface {
	Run(ctx context.Context, userID uuid.UUID, rowCount int) (*entities.Analysis, error)
	GetByID(ctx context.Context, analysisID, callerID uuid.UUID) (*entities.Analysis, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, int, error)
}

type LedgerService interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error)
}

// AnalysisHandler handles analysis and token balance endpoints
type AnalysisHandler struct {
	analysisUsecase AnalysisService
	ledgerUsecase   LedgerService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisUsecase AnalysisService, ledgerUsecase LedgerService) *AnalysisHandler {
	return &AnalysisHandler{analysisUsecase: analysisUsecase, ledgerUsecase: ledgerUsecase}
}

// RunAnalysis runs an anomaly detection analysis
// POST /api/v1/analyses
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	var input struct {
		RowCount int `json:"rowCount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	analysis, err := h.analysisUsecase.Run(c.Request.Context(), userID, input.RowCount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"analysis": analysis})
}

// GetAnalysis gets an analysis owned by the caller
// GET /api/v1/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid analysis ID"))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	analysis, err := h.analysisUsecase.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analysis": analysis})
}

// ListAnalyses lists the caller's analyses
// GET /api/v1/analyses
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	analyses, total, err := h.analysisUsecase.ListByUser(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"analyses": analyses,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetBalance returns the caller's token balance in micro-units
// GET /api/v1/tokens/balance
func (h *AnalysisHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	balance, err := h.ledgerUsecase.Balance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"balanceMicro": balance,
		"balance":      entities.FormatTokens(balance),
	})
}

// GetUsageHistory returns the caller's usage records
// GET /api/v1/tokens/usage
func (h *AnalysisHandler) GetUsageHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, total, err := h.ledgerUsecase.History(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"records": records,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
