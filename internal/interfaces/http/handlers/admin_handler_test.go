package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/usecases"
)

type paymentVerificationStub struct {
	verifyFn func(ctx context.Context, paymentID, adminID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.Payment, error)
	listFn   func(ctx context.Context, limit, offset int) ([]*entities.Payment, int, error)
}

func (s paymentVerificationStub) Verify(ctx context.Context, paymentID, adminID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.Payment, error) {
	return s.verifyFn(ctx, paymentID, adminID, input)
}

func (s paymentVerificationStub) ListPendingVerification(ctx context.Context, limit, offset int) ([]*entities.Payment, int, error) {
	return s.listFn(ctx, limit, offset)
}

type adminStatsStub struct {
	statsFn func(ctx context.Context) (*usecases.BillingStats, error)
}

func (s adminStatsStub) Stats(ctx context.Context) (*usecases.BillingStats, error) {
	return s.statsFn(ctx)
}

func TestAdminHandler_VerifyPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	adminID := uuid.New()
	paymentID := uuid.New()

	t.Run("confirm", func(t *testing.T) {
		r := gin.New()
		h := NewAdminHandler(paymentVerificationStub{
			verifyFn: func(_ context.Context, pid, aid uuid.UUID, input *entities.VerifyPaymentInput) (*entities.Payment, error) {
				require.Equal(t, paymentID, pid)
				require.Equal(t, adminID, aid)
				require.Equal(t, "CONFIRMED", input.Outcome)
				return &entities.Payment{ID: pid, Status: entities.PaymentStatusConfirmed}, nil
			},
		}, adminStatsStub{})
		r.POST("/admin/payments/:id/verify", authAs(adminID, entities.RoleAdmin), h.VerifyPayment)

		req := httptest.NewRequest(http.MethodPost, "/admin/payments/"+paymentID.String()+"/verify",
			strings.NewReader(`{"outcome":"CONFIRMED"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"CONFIRMED"`)
	})

	t.Run("invalid outcome fails binding", func(t *testing.T) {
		r := gin.New()
		h := NewAdminHandler(paymentVerificationStub{
			verifyFn: func(context.Context, uuid.UUID, uuid.UUID, *entities.VerifyPaymentInput) (*entities.Payment, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, adminStatsStub{})
		r.POST("/admin/payments/:id/verify", authAs(adminID, entities.RoleAdmin), h.VerifyPayment)

		req := httptest.NewRequest(http.MethodPost, "/admin/payments/"+paymentID.String()+"/verify",
			strings.NewReader(`{"outcome":"EXPIRED"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("terminal state reads as conflict", func(t *testing.T) {
		r := gin.New()
		h := NewAdminHandler(paymentVerificationStub{
			verifyFn: func(context.Context, uuid.UUID, uuid.UUID, *entities.VerifyPaymentInput) (*entities.Payment, error) {
				return nil, domainerrors.Conflict("payment already in terminal state CONFIRMED")
			},
		}, adminStatsStub{})
		r.POST("/admin/payments/:id/verify", authAs(adminID, entities.RoleAdmin), h.VerifyPayment)

		req := httptest.NewRequest(http.MethodPost, "/admin/payments/"+paymentID.String()+"/verify",
			strings.NewReader(`{"outcome":"REJECTED"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAdminHandler_ListPendingVerifications(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewAdminHandler(paymentVerificationStub{
		listFn: func(_ context.Context, limit, offset int) ([]*entities.Payment, int, error) {
			require.Equal(t, 20, limit)
			require.Equal(t, 0, offset)
			return []*entities.Payment{{ID: uuid.New(), Status: entities.PaymentStatusPendingVerification}}, 1, nil
		},
	}, adminStatsStub{})
	r.GET("/admin/payments/pending", authAs(uuid.New(), entities.RoleAdmin), h.ListPendingVerifications)

	req := httptest.NewRequest(http.MethodGet, "/admin/payments/pending", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"PENDING_VERIFICATION"`)
}

func TestAdminHandler_GetStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewAdminHandler(paymentVerificationStub{}, adminStatsStub{
		statsFn: func(context.Context) (*usecases.BillingStats, error) {
			return &usecases.BillingStats{Users: 12, PaymentsConfirmed: 5}, nil
		},
	})
	r.GET("/admin/stats", authAs(uuid.New(), entities.RoleAdmin), h.GetStats)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"users":12`)
}
