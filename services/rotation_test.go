package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
)

// fakeAdStore mimics the conditional-update semantics of the Mongo-backed
// repository: Serve succeeds only when last_served still matches what the
// caller observed.
type fakeAdStore struct {
	mu  sync.Mutex
	ads map[primitive.ObjectID]*models.Ad
}

func newFakeAdStore(ads ...models.Ad) *fakeAdStore {
	store := &fakeAdStore{ads: make(map[primitive.ObjectID]*models.Ad)}
	for i := range ads {
		ad := ads[i]
		store.ads[ad.ID] = &ad
	}
	return store
}

// Candidates intentionally returns expired ads too, so the selection policy
// itself is on the hook for excluding them.
func (s *fakeAdStore) Candidates(ctx context.Context, brandID *primitive.ObjectID) ([]models.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ad
	for _, ad := range s.ads {
		if brandID != nil {
			if ad.BrandID == nil || *ad.BrandID != *brandID {
				continue
			}
		}
		out = append(out, *ad)
	}
	return out, nil
}

func (s *fakeAdStore) Serve(ctx context.Context, id primitive.ObjectID, observedLastServed *time.Time, now time.Time) (*models.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ad, ok := s.ads[id]
	if !ok {
		return nil, repositories.ErrServeConflict
	}
	if (ad.LastServed == nil) != (observedLastServed == nil) {
		return nil, repositories.ErrServeConflict
	}
	if ad.LastServed != nil && !ad.LastServed.Equal(*observedLastServed) {
		return nil, repositories.ErrServeConflict
	}
	served := now
	ad.LastServed = &served
	ad.ImpressionCount++
	result := *ad
	return &result, nil
}

func (s *fakeAdStore) Insert(ctx context.Context, ad models.Ad) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[ad.ID] = &ad
	return ad.ID, nil
}

func (s *fakeAdStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, ad := range s.ads {
		if ad.Expired(now) {
			delete(s.ads, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeAdStore) totalImpressions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, ad := range s.ads {
		total += ad.ImpressionCount
	}
	return total
}

func newTestAd(name string, bid float64, lastServed *time.Time) models.Ad {
	return models.Ad{
		ID:         primitive.NewObjectID(),
		AdName:     name,
		BidPrice:   bid,
		CreatedAt:  time.Now().UTC().Add(-time.Hour),
		LastServed: lastServed,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextAdPrefersHighestBidNeverServed(t *testing.T) {
	now := time.Now().UTC()
	high := newTestAd("high", 10, nil)
	low := newTestAd("low", 5, nil)
	store := newFakeAdStore(high, low)

	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)

	ad, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "high", ad.AdName)
	assert.EqualValues(t, 1, ad.ImpressionCount)
	require.NotNil(t, ad.LastServed)
	assert.True(t, ad.LastServed.Equal(now))
}

func TestNextAdNeverReturnsExpiredAd(t *testing.T) {
	now := time.Now().UTC()
	expiredAt := now.Add(-time.Minute)

	expired := newTestAd("expired", 100, nil)
	expired.ExpiresAt = &expiredAt
	alive := newTestAd("alive", 1, nil)
	store := newFakeAdStore(expired, alive)

	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)

	ad, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "alive", ad.AdName)
}

func TestNextAdEmptyPool(t *testing.T) {
	svc := NewRotationService(newFakeAdStore(), 300*time.Second)

	_, err := svc.NextAd(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAdsAvailable)
}

func TestNextAdAllExpired(t *testing.T) {
	now := time.Now().UTC()
	expiredAt := now.Add(-time.Second)
	ad := newTestAd("gone", 10, nil)
	ad.ExpiresAt = &expiredAt

	svc := NewRotationService(newFakeAdStore(ad), 300*time.Second)
	svc.now = fixedClock(now)

	_, err := svc.NextAd(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAdsAvailable)
}

func TestNextAdFallsBackToTopBidWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	recentA := now.Add(-10 * time.Second)
	recentB := now.Add(-20 * time.Second)

	a := newTestAd("a", 10, &recentA)
	b := newTestAd("b", 5, &recentB)
	store := newFakeAdStore(a, b)

	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)

	ad, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a", ad.AdName, "every ad inside the rotation window falls back to the top bid, never NoAdsAvailable")
}

func TestNextAdRotatesAfterWindow(t *testing.T) {
	now := time.Now().UTC()
	staleServe := now.Add(-301 * time.Second)
	freshServe := now.Add(-10 * time.Second)

	top := newTestAd("top", 10, &freshServe)
	stale := newTestAd("stale", 5, &staleServe)
	store := newFakeAdStore(top, stale)

	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)

	ad, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "stale", ad.AdName)
}

func TestNextAdSequentialSelections(t *testing.T) {
	now := time.Now().UTC()
	high := newTestAd("high", 10, nil)
	low := newTestAd("low", 5, nil)
	store := newFakeAdStore(high, low)

	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)

	first, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "high", first.AdName)

	// The high bidder was just served; the never-served low bidder is next in
	// the rotation.
	second, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "low", second.AdName)

	assert.EqualValues(t, 2, store.totalImpressions())

	// Both served inside the window now: bid priority wins.
	third, err := svc.NextAd(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "high", third.AdName)
	assert.EqualValues(t, 3, store.totalImpressions())
}

func TestNextAdBrandScope(t *testing.T) {
	brandID := primitive.NewObjectID()
	otherBrand := primitive.NewObjectID()

	global := newTestAd("global", 50, nil)
	scoped := newTestAd("scoped", 1, nil)
	scoped.BrandID = &brandID
	foreign := newTestAd("foreign", 100, nil)
	foreign.BrandID = &otherBrand
	store := newFakeAdStore(global, scoped, foreign)

	svc := NewRotationService(store, 300*time.Second)

	ad, err := svc.NextAd(context.Background(), &brandID)
	require.NoError(t, err)
	assert.Equal(t, "scoped", ad.AdName)
}

// The accounting property: across concurrent callers, total impressions equal
// exactly the number of successful selections. No double counting, no lost
// updates.
func TestNextAdConcurrentImpressionAccounting(t *testing.T) {
	ads := []models.Ad{
		newTestAd("a", 10, nil),
		newTestAd("b", 8, nil),
		newTestAd("c", 5, nil),
	}
	store := newFakeAdStore(ads...)

	// Zero period keeps every ad always eligible so callers contend hard on
	// the ordering.
	svc := NewRotationService(store, 0)

	const callers = 64
	var wg sync.WaitGroup
	var successes int64
	var mu sync.Mutex

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.NextAd(context.Background(), nil); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Positive(t, successes)
	assert.Equal(t, successes, store.totalImpressions())
}

func TestExpireAdsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	gone := now.Add(-time.Minute)
	later := now.Add(time.Hour)

	dead := newTestAd("dead", 1, nil)
	dead.ExpiresAt = &gone
	alive := newTestAd("alive", 1, nil)
	alive.ExpiresAt = &later
	forever := newTestAd("forever", 1, nil)
	store := newFakeAdStore(dead, alive, forever)

	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)

	deleted, err := svc.ExpireAds(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = svc.ExpireAds(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)
}

func TestOnboardAdValidation(t *testing.T) {
	svc := NewRotationService(newFakeAdStore(), 300*time.Second)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.AdRequest
	}{
		{"missing name", models.AdRequest{BidPrice: 1}},
		{"negative bid", models.AdRequest{AdName: "x", BidPrice: -0.01}},
		{"negative ttl", models.AdRequest{AdName: "x", TTL: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.OnboardAd(ctx, tt.req, nil)
			assert.ErrorIs(t, err, ErrInvalidAd)
		})
	}
}

func TestOnboardAdComputesExpiry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	store := newFakeAdStore()
	svc := NewRotationService(store, 300*time.Second)
	svc.now = fixedClock(now)
	ctx := context.Background()

	withTTL, err := svc.OnboardAd(ctx, models.AdRequest{AdName: "short", BidPrice: 2, TTL: 60}, nil)
	require.NoError(t, err)
	require.NotNil(t, withTTL.ExpiresAt)
	assert.True(t, withTTL.ExpiresAt.Equal(now.Add(60*time.Second)))
	assert.Nil(t, withTTL.LastServed)
	assert.EqualValues(t, 0, withTTL.ImpressionCount)

	forever, err := svc.OnboardAd(ctx, models.AdRequest{AdName: "forever", BidPrice: 2}, nil)
	require.NoError(t, err)
	assert.Nil(t, forever.ExpiresAt)
}
