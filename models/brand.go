package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Brand struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BrandName string             `json:"brandName" bson:"brand_name"`
	Metadata  map[string]string  `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

type BrandRequest struct {
	BrandName string            `json:"brandName" validate:"required"`
	Metadata  map[string]string `json:"metadata"`
}

type BrandsResponse struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    []Brand `json:"data,omitempty"`
}
