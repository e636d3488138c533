package usecases

import (
	"context"
	"strconv"
	"strings"
	"time"

	"echoforge.backend/internal/domain/entities"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/pkg/metrics"
	"echoforge.backend/pkg/utils"
)

// LicenseIssuer mints license keys for succeeded marketplace orders.
// One license per order is a storage constraint; issuing twice for the
// same order returns the existing key.
type LicenseIssuer struct {
	licenseRepo repositories.LicenseKeyRepository
}

func NewLicenseIssuer(licenseRepo repositories.LicenseKeyRepository) *LicenseIssuer {
	return &LicenseIssuer{licenseRepo: licenseRepo}
}

// Issue builds a key of the form <PREFIX>-<RANDOM>-<TIMEBASE36> and
// upserts it against the order.
func (u *LicenseIssuer) Issue(ctx context.Context, order *entities.Order, listing *entities.Listing) (*entities.LicenseKey, error) {
	key := strings.Join([]string{
		listingPrefix(listing.Slug),
		utils.RandomAlphanumeric(8),
		strings.ToUpper(strconv.FormatInt(time.Now().Unix(), 36)),
	}, "-")

	license := &entities.LicenseKey{
		ID:        utils.GenerateUUIDv7(),
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		ListingID: order.ListingID,
		Key:       key,
		Status:    entities.LicenseStatusActive,
	}

	issued, err := u.licenseRepo.UpsertForOrder(ctx, license)
	if err != nil {
		return nil, err
	}
	if issued.Key == key {
		metrics.LicensesIssued.Inc()
	}
	return issued, nil
}

// listingPrefix derives a short upper-case prefix from the listing slug,
// e.g. "voice-pack-vol-1" -> "VPV".
func listingPrefix(slug string) string {
	var b strings.Builder
	for _, part := range strings.Split(slug, "-") {
		if part == "" {
			continue
		}
		b.WriteByte(part[0])
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		b.WriteString("EF")
	}
	return strings.ToUpper(b.String())
}
