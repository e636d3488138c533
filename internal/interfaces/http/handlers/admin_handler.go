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
	"echoforge.backend/internal/usecases"
	"echoforge.backend/pkg/utils"
)

type PaymentVerificationService interface {
	Verify(ctx context.Context, paymentID, adminID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.Payment, error)
	ListPendingVerification(ctx context.Context, limit, offset int) ([]*entities.Payment, int, error)
}

type AdminStatsService interface {
	Stats(ctx context.Context) (*usecases.BillingStats, error)
}

// AdminHandler handles administrative endpoints
type AdminHandler struct {
	paymentUsecase PaymentVerificationService
	adminUsecase   AdminStatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(paymentUsecase PaymentVerificationService, adminUsecase AdminStatsService) *AdminHandler {
	return &AdminHandler{paymentUsecase: paymentUsecase, adminUsecase: adminUsecase}
}

// ListPendingVerifications lists payments awaiting a verdict
// GET /api/v1/admin/payments/pending
func (h *AdminHandler) ListPendingVerifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	pagination := utils.NewPagination(page, limit)

	payments, total, err := h.paymentUsecase.ListPendingVerification(c.Request.Context(), pagination.Limit, pagination.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"payments": payments,
		"meta":     pagination.Meta(total),
	})
}

// VerifyPayment records the admin verdict on a submitted payment
// POST /api/v1/admin/payments/:id/verify
func (h *AdminHandler) VerifyPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid payment ID"))
		return
	}

	var input entities.VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	payment, err := h.paymentUsecase.Verify(c.Request.Context(), id, adminID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// GetStats returns billing counters for the dashboard
// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminUsecase.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
