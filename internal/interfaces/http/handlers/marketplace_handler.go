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
)

type MarketplaceService interface {
	ListListings(ctx context.Context, limit, offset int) ([]*entities.Listing, int, error)
	CreateListing(ctx context.Context, sellerID uuid.UUID, input *entities.CreateListingInput) (*entities.Listing, error)
	Checkout(ctx context.Context, buyerID, listingID uuid.UUID, provider string) (*usecases.CheckoutResult, error)
	GetOrder(ctx context.Context, orderID, buyerID uuid.UUID) (*entities.Order, error)
	Licenses(ctx context.Context, buyerID uuid.UUID) ([]*entities.LicenseKey, error)
}

// MarketplaceHandler handles listing, checkout and license endpoints
type MarketplaceHandler struct {
	marketplaceUsecase MarketplaceService
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(marketplaceUsecase MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplaceUsecase: marketplaceUsecase}
}

// ListListings lists active listings
// GET /api/v1/marketplace/listings
func (h *MarketplaceHandler) ListListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	listings, total, err := h.marketplaceUsecase.ListListings(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"listings": listings,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// CreateListing registers a new listing
// POST /api/v1/marketplace/listings
func (h *MarketplaceHandler) CreateListing(c *gin.Context) {
	var input entities.CreateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	sellerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	listing, err := h.marketplaceUsecase.CreateListing(c.Request.Context(), sellerID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"listing": listing})
}

// Checkout creates a PENDING order for a listing
// POST /api/v1/marketplace/checkout
func (h *MarketplaceHandler) Checkout(c *gin.Context) {
	var input entities.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	listingID, err := uuid.Parse(input.ListingID)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid listing ID"))
		return
	}

	result, err := h.marketplaceUsecase.Checkout(c.Request.Context(), buyerID, listingID, input.Provider)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GetOrder gets an order owned by the caller
// GET /api/v1/marketplace/orders/:id
func (h *MarketplaceHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid order ID"))
		return
	}

	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	order, err := h.marketplaceUsecase.GetOrder(c.Request.Context(), id, buyerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order": order})
}

// ListLicenses lists the caller's license keys
// GET /api/v1/marketplace/licenses
func (h *MarketplaceHandler) ListLicenses(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	licenses, err := h.marketplaceUsecase.Licenses(c.Request.Context(), buyerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"licenses": licenses})
}
