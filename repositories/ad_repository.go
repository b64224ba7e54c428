package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/menuqr_backend/models"
)

// AdRepository is typed access over the ads collection. It owns no rotation
// policy; the rotation service drives it.
type AdRepository struct {
	collection *mongo.Collection
}

func NewAdRepository(db *mongo.Database) *AdRepository {
	return &AdRepository{
		collection: db.Collection("ads"),
	}
}

// notExpiredFilter matches ads that never expire or whose TTL has not
// elapsed as of now.
func notExpiredFilter(now time.Time) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gte": now}},
		},
	}
}

// Candidates returns the non-expired ads in scope, sorted by bid_price
// descending then last_served ascending (nulls sort first, so never-served
// ads lead among equal bids). A nil brandID means the global scope.
func (r *AdRepository) Candidates(ctx context.Context, brandID *primitive.ObjectID) ([]models.Ad, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := notExpiredFilter(time.Now().UTC())
	if brandID != nil {
		filter["brand_id"] = *brandID
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "bid_price", Value: -1},
		{Key: "last_served", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []models.Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// Serve marks the ad as served at now and increments its impression count,
// conditioned on last_served still holding the value the caller observed.
// Returns ErrServeConflict if a concurrent caller got there first, so the
// caller can re-read and pick again. The returned ad is the post-update view.
func (r *AdRepository) Serve(ctx context.Context, id primitive.ObjectID, observedLastServed *time.Time, now time.Time) (*models.Ad, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": id}
	if observedLastServed == nil {
		filter["last_served"] = nil
	} else {
		filter["last_served"] = *observedLastServed
	}

	update := bson.M{
		"$set": bson.M{"last_served": now},
		"$inc": bson.M{"impression_count": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var served models.Ad
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&served)
	if err == mongo.ErrNoDocuments {
		return nil, ErrServeConflict
	}
	if err != nil {
		return nil, err
	}
	return &served, nil
}

// Insert stores a new ad and returns its id.
func (r *AdRepository) Insert(ctx context.Context, ad models.Ad) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, ad)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// DeleteExpired removes every ad whose expiry has passed and returns the
// number removed. Safe to run repeatedly and concurrently with selection.
func (r *AdRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$ne": nil, "$lte": now},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// All returns every ad, newest first, for the management surface.
func (r *AdRepository) All(ctx context.Context) ([]models.Ad, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []models.Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// ByBrand returns the brand's non-expired ads.
func (r *AdRepository) ByBrand(ctx context.Context, brandID primitive.ObjectID) ([]models.Ad, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := notExpiredFilter(time.Now().UTC())
	filter["brand_id"] = brandID

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []models.Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}
