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

type PaymentService interface {
	Initiate(ctx context.Context, userID uuid.UUID, input *entities.InitiatePaymentInput) (*entities.Payment, error)
	Submit(ctx context.Context, paymentID, userID uuid.UUID, input *entities.SubmitPaymentInput) (*entities.Payment, error)
	GetByID(ctx context.Context, paymentID, callerID uuid.UUID, callerRole entities.Role) (*entities.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Payment, int, error)
}

// WalletDirectory exposes the configured receiving networks.
type WalletDirectory interface {
	AddressFor(network entities.Network) (string, error)
	Networks() []entities.Network
}

// PaymentHandler handles the crypto payment flow endpoints
type PaymentHandler struct {
	paymentUsecase PaymentService
	wallets        WalletDirectory
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase PaymentService, wallets WalletDirectory) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase, wallets: wallets}
}

// InitiatePayment creates a new PENDING payment
// POST /api/v1/payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var input entities.InitiatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	payment, err := h.paymentUsecase.Initiate(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"payment": payment})
}

// SubmitPayment attaches the transaction hash to a pending payment
// POST /api/v1/payments/:id/submit
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid payment ID"))
		return
	}

	var input entities.SubmitPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	payment, err := h.paymentUsecase.Submit(c.Request.Context(), id, userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// GetPayment gets a payment visible to the caller
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid payment ID"))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}
	role, _ := middleware.GetUserRole(c)

	payment, err := h.paymentUsecase.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// ListPayments lists payments for the current user
// GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
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

	payments, total, err := h.paymentUsecase.ListByUser(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := (total + limit - 1) / limit

	response.Success(c, http.StatusOK, gin.H{
		"payments": payments,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

// ListNetworks lists the supported settlement networks and their
// receiving addresses
// GET /api/v1/payments/networks
func (h *PaymentHandler) ListNetworks(c *gin.Context) {
	networks := h.wallets.Networks()
	out := make([]gin.H, 0, len(networks))
	for _, n := range networks {
		addr, err := h.wallets.AddressFor(n)
		if err != nil {
			continue
		}
		out = append(out, gin.H{"network": n, "address": addr})
	}

	response.Success(c, http.StatusOK, gin.H{"networks": out})
}
