package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Restaurant owns its menu tree outright. The whole tree is stored as one
// document; Version is the optimistic-concurrency token every menus write
// compares-and-swaps on.
type Restaurant struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Location string             `json:"location" bson:"location"`
	Menus    []Menu             `json:"menus" bson:"menus"`
	Version  int64              `json:"-" bson:"version"`
}

// Menu is identified by ID (an ObjectID hex assigned at creation); the name
// is display-only and not unique.
type Menu struct {
	ID          string     `json:"id" bson:"id"`
	Name        string     `json:"name" bson:"name"`
	WelcomeText string     `json:"welcomeText,omitempty" bson:"welcome_text,omitempty"`
	Categories  []Category `json:"categories" bson:"categories"`
}

// Category carries no surrogate id; it is addressed by name within its menu
// (first match wins).
type Category struct {
	Name   string `json:"name" bson:"name"`
	Dishes []Dish `json:"dishes" bson:"dishes"`
}

// Dish is addressed by position within its category.
type Dish struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

type RestaurantRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}

type MenuRequest struct {
	Name        string `json:"name" validate:"required"`
	WelcomeText string `json:"welcomeText"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type DishRequest struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}
