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
)

type analysisServiceStub struct {
	runFn  func(ctx context.Context, userID uuid.UUID, rowCount int) (*entities.Analysis, error)
	getFn  func(ctx context.Context, analysisID, callerID uuid.UUID) (*entities.Analysis, error)
	listFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, int, error)
}

func (s analysisServiceStub) Run(ctx context.Context, userID uuid.UUID, rowCount int) (*entities.Analysis, error) {
	return s.runFn(ctx, userID, rowCount)
}

func (s analysisServiceStub) GetByID(ctx context.Context, analysisID, callerID uuid.UUID) (*entities.Analysis, error) {
	return s.getFn(ctx, analysisID, callerID)
}

func (s analysisServiceStub) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, int, error) {
	return s.listFn(ctx, userID, limit, offset)
}

type ledgerServiceStub struct {
	balanceFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	historyFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error)
}

func (s ledgerServiceStub) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.balanceFn(ctx, userID)
}

func (s ledgerServiceStub) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error) {
	return s.historyFn(ctx, userID, limit, offset)
}

func TestAnalysisHandler_RunAnalysis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	svc := analysisServiceStub{
		runFn: func(_ context.Context, gotUser uuid.UUID, rowCount int) (*entities.Analysis, error) {
			require.Equal(t, userID, gotUser)
			require.Equal(t, 500, rowCount)
			return &entities.Analysis{
				ID:       uuid.New(),
				UserID:   userID,
				RowCount: 500,
				Status:   entities.AnalysisStatusCompleted,
			}, nil
		},
	}
	h := NewAnalysisHandler(svc, ledgerServiceStub{})

	r := gin.New()
	r.POST("/analyses", authAs(userID, entities.RoleUser), h.RunAnalysis)

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{"rowCount":500}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), string(entities.AnalysisStatusCompleted))
}

func TestAnalysisHandler_RunAnalysis_InvalidRowCount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewAnalysisHandler(analysisServiceStub{}, ledgerServiceStub{})
	r := gin.New()
	r.POST("/analyses", authAs(uuid.New(), entities.RoleUser), h.RunAnalysis)

	for _, body := range []string{`{"rowCount":0}`, `{"rowCount":-3}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestAnalysisHandler_RunAnalysis_InsufficientBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := analysisServiceStub{
		runFn: func(context.Context, uuid.UUID, int) (*entities.Analysis, error) {
			return nil, domainerrors.InsufficientBalance(5_100, 900)
		},
	}
	h := NewAnalysisHandler(svc, ledgerServiceStub{})

	r := gin.New()
	r.POST("/analyses", authAs(uuid.New(), entities.RoleUser), h.RunAnalysis)

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{"rowCount":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestAnalysisHandler_GetBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	ledger := ledgerServiceStub{
		balanceFn: func(_ context.Context, gotUser uuid.UUID) (int64, error) {
			require.Equal(t, userID, gotUser)
			return 1_500_000, nil
		},
	}
	h := NewAnalysisHandler(analysisServiceStub{}, ledger)

	r := gin.New()
	r.GET("/balance", authAs(userID, entities.RoleUser), h.GetBalance)

	req := httptest.NewRequest(http.MethodGet, "/balance", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"balanceMicro":1500000`)
}

func TestAnalysisHandler_GetUsageHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()
	ledger := ledgerServiceStub{
		historyFn: func(_ context.Context, gotUser uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error) {
			require.Equal(t, userID, gotUser)
			require.Equal(t, 20, limit)
			require.Equal(t, 0, offset)
			return []*entities.UsageRecord{{
				ID:          uuid.New(),
				UserID:      userID,
				AmountMicro: 15_000,
				Type:        entities.UsageTypeDebit,
			}}, 1, nil
		},
	}
	h := NewAnalysisHandler(analysisServiceStub{}, ledger)

	r := gin.New()
	r.GET("/usage", authAs(userID, entities.RoleUser), h.GetUsageHistory)

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total":1`)
	require.Contains(t, w.Body.String(), string(entities.UsageTypeDebit))
}
