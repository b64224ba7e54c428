package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
)

var (
	// ErrNoAdsAvailable is returned when the candidate set for a scope is
	// empty.
	ErrNoAdsAvailable = errors.New("no ads available")

	// ErrInvalidAd is returned when an onboarding request carries a negative
	// bid or TTL, or no name.
	ErrInvalidAd = errors.New("invalid ad")
)

// serveAttempts bounds the re-read/retry loop when concurrent callers race
// on the same winner.
const serveAttempts = 3

// AdStore is the slice of the ad repository the rotation engine needs.
type AdStore interface {
	Candidates(ctx context.Context, brandID *primitive.ObjectID) ([]models.Ad, error)
	Serve(ctx context.Context, id primitive.ObjectID, observedLastServed *time.Time, now time.Time) (*models.Ad, error)
	Insert(ctx context.Context, ad models.Ad) (primitive.ObjectID, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RotationService decides which ad is shown next for a menu render: bid-ranked
// rotation with a minimum serving interval, TTL expiry and impression
// accounting. Selection and the serve-side update are a single conditional
// write, so two concurrent renders never double-count one ad.
type RotationService struct {
	store  AdStore
	period time.Duration
	now    func() time.Time
}

func NewRotationService(store AdStore, period time.Duration) *RotationService {
	return &RotationService{
		store:  store,
		period: period,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NextAd selects and records the next ad for the scope. A nil brandID selects
// from the global pool. The returned ad reflects the new last_served and
// impression_count.
func (s *RotationService) NextAd(ctx context.Context, brandID *primitive.ObjectID) (*models.Ad, error) {
	for attempt := 0; attempt < serveAttempts; attempt++ {
		now := s.now()
		ads, err := s.store.Candidates(ctx, brandID)
		if err != nil {
			return nil, fmt.Errorf("fetching ad candidates: %w", err)
		}

		winner := pickEligible(ads, now, s.period)
		if winner == nil {
			return nil, ErrNoAdsAvailable
		}

		served, err := s.store.Serve(ctx, winner.ID, winner.LastServed, now)
		if errors.Is(err, repositories.ErrServeConflict) {
			// Another caller served this ad between our read and write.
			// Re-read and pick again; the loser must not double-count.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("recording ad impression: %w", err)
		}
		return served, nil
	}
	return nil, fmt.Errorf("ad selection contended after %d attempts: %w", serveAttempts, repositories.ErrServeConflict)
}

// pickEligible applies the rotation policy to a candidate set: order by bid
// descending, then last_served ascending with never-served first, id as the
// final tiebreak so the ordering is total. The first candidate outside the
// rotation window wins; if every candidate was served within the window the
// top-bid ad wins anyway (starvation is disallowed). Expired ads never win.
// Returns nil when no candidate remains.
func pickEligible(ads []models.Ad, now time.Time, period time.Duration) *models.Ad {
	candidates := make([]models.Ad, 0, len(ads))
	for _, ad := range ads {
		if !ad.Expired(now) {
			candidates = append(candidates, ad)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].BidPrice != candidates[j].BidPrice {
			return candidates[i].BidPrice > candidates[j].BidPrice
		}
		li, lj := candidates[i].LastServed, candidates[j].LastServed
		if li == nil && lj == nil {
			return candidates[i].ID.Hex() < candidates[j].ID.Hex()
		}
		if li == nil {
			return true
		}
		if lj == nil {
			return false
		}
		if !li.Equal(*lj) {
			return li.Before(*lj)
		}
		return candidates[i].ID.Hex() < candidates[j].ID.Hex()
	})

	for i := range candidates {
		ls := candidates[i].LastServed
		if ls == nil || now.Sub(*ls) >= period {
			return &candidates[i]
		}
	}

	// Every candidate was served within the window: rotation fairness yields
	// to bid priority.
	return &candidates[0]
}

// OnboardAd creates an ad with zeroed serving state. brandID is nil for
// global ads. expires_at is computed from the TTL at creation; a zero TTL
// means the ad never expires.
func (s *RotationService) OnboardAd(ctx context.Context, req models.AdRequest, brandID *primitive.ObjectID) (*models.Ad, error) {
	if req.AdName == "" {
		return nil, fmt.Errorf("%w: ad name is required", ErrInvalidAd)
	}
	if req.BidPrice < 0 {
		return nil, fmt.Errorf("%w: bid price must be non-negative", ErrInvalidAd)
	}
	if req.TTL < 0 {
		return nil, fmt.Errorf("%w: ttl must be non-negative", ErrInvalidAd)
	}

	createdAt := s.now()
	ad := models.Ad{
		ID:              primitive.NewObjectID(),
		AdName:          req.AdName,
		BidPrice:        req.BidPrice,
		AdImageURL:      req.AdImageURL,
		Metadata:        req.Metadata,
		TTL:             req.TTL,
		CreatedAt:       createdAt,
		ImpressionCount: 0,
		LastServed:      nil,
		BrandID:         brandID,
	}
	if req.TTL > 0 {
		expiresAt := createdAt.Add(time.Duration(req.TTL) * time.Second)
		ad.ExpiresAt = &expiresAt
	}

	if _, err := s.store.Insert(ctx, ad); err != nil {
		return nil, fmt.Errorf("inserting ad: %w", err)
	}
	return &ad, nil
}

// ExpireAds deletes every ad whose TTL has elapsed and returns the count
// removed. Idempotent.
func (s *RotationService) ExpireAds(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}
