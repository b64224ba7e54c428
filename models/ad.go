package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ad is a single advertisement placement. Ads live in their own top-level
// collection; brand-scoped ads reference the brand through BrandID.
type Ad struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	AdName          string              `json:"adName" bson:"ad_name"`
	BidPrice        float64             `json:"bidPrice" bson:"bid_price"`
	AdImageURL      string              `json:"adImageUrl" bson:"ad_image_url"`
	Metadata        map[string]string   `json:"metadata,omitempty" bson:"metadata,omitempty"`
	TTL             int64               `json:"ttl" bson:"ttl"` // seconds; 0 means the ad never expires
	CreatedAt       time.Time           `json:"createdAt" bson:"created_at"`
	ExpiresAt       *time.Time          `json:"expiresAt" bson:"expires_at"`
	LastServed      *time.Time          `json:"lastServed" bson:"last_served"`
	ImpressionCount int64               `json:"impressionCount" bson:"impression_count"`
	BrandID         *primitive.ObjectID `json:"brandId,omitempty" bson:"brand_id,omitempty"`
}

// Expired reports whether the ad's TTL has elapsed as of now.
func (a *Ad) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// AdRequest is the payload for onboarding a new ad, either globally or
// attached to a brand.
type AdRequest struct {
	AdName     string            `json:"adName" validate:"required"`
	BidPrice   float64           `json:"bidPrice" validate:"gte=0"`
	AdImageURL string            `json:"adImageUrl"`
	Metadata   map[string]string `json:"metadata"`
	TTL        int64             `json:"ttl" validate:"gte=0"`
}

type AdResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    *Ad    `json:"data,omitempty"`
}

type AdsResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    []Ad   `json:"data,omitempty"`
}
