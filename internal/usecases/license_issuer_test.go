package usecases_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"echoforge.backend/internal/domain/entities"
	"echoforge.backend/internal/usecases"
)

func TestLicenseIssuer_KeyFormat(t *testing.T) {
	kr := new(MockLicenseKeyRepository)
	issuer := usecases.NewLicenseIssuer(kr)

	order := &entities.Order{ID: uuid.New(), BuyerID: uuid.New(), ListingID: uuid.New()}
	listing := &entities.Listing{ID: order.ListingID, Slug: "voice-pack-vol-1"}

	var captured *entities.LicenseKey
	kr.On("UpsertForOrder", context.Background(), mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*entities.LicenseKey)
	}).Return(&entities.LicenseKey{Key: "placeholder"}, nil).Once()

	_, err := issuer.Issue(context.Background(), order, listing)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Regexp(t, regexp.MustCompile(`^VPV-[A-Za-z0-9]{8}-[0-9A-Z]+$`), captured.Key)
	assert.Equal(t, order.ID, captured.OrderID)
	assert.Equal(t, entities.LicenseStatusActive, captured.Status)
}

func TestLicenseIssuer_ExistingLicenseWins(t *testing.T) {
	kr := new(MockLicenseKeyRepository)
	issuer := usecases.NewLicenseIssuer(kr)

	order := &entities.Order{ID: uuid.New(), BuyerID: uuid.New(), ListingID: uuid.New()}
	listing := &entities.Listing{ID: order.ListingID, Slug: "voice-pack-vol-1"}
	existing := &entities.LicenseKey{OrderID: order.ID, Key: "VPV-FIRST123-XYZ"}

	kr.On("UpsertForOrder", context.Background(), mock.Anything).Return(existing, nil).Once()

	issued, err := issuer.Issue(context.Background(), order, listing)
	require.NoError(t, err)
	assert.Equal(t, "VPV-FIRST123-XYZ", issued.Key)
}
