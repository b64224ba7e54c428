package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
)

var (
	ErrMenuNotFound     = errors.New("menu not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrIndexOutOfRange covers category and dish positions outside the
	// current sequence. Positions are valid only as of the most recent read.
	ErrIndexOutOfRange = errors.New("index out of range")
)

const menuCacheTTL = 30 * time.Second

// RestaurantStore is the slice of the restaurant repository the menu layer
// needs: one read and one versioned whole-menus write.
type RestaurantStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error)
	ReplaceMenus(ctx context.Context, id primitive.ObjectID, version int64, menus []models.Menu) error
}

// MenuService runs every nested menu mutation through the same protocol:
// fetch the restaurant document, locate the target in memory, apply the edit,
// write the whole menus sequence back with a version compare-and-swap. It
// holds no cross-call state. The optional Redis cache only serves the
// diner-facing menus read; every mutation drops the cached entry.
type MenuService struct {
	store RestaurantStore
	cache *redis.Client
}

func NewMenuService(store RestaurantStore, cache *redis.Client) *MenuService {
	return &MenuService{store: store, cache: cache}
}

func menuCacheKey(restaurantID primitive.ObjectID) string {
	return "menus:" + restaurantID.Hex()
}

// Menus returns the restaurant's menus, served from cache when possible.
func (s *MenuService) Menus(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Menu, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, menuCacheKey(restaurantID)).Result(); err == nil {
			var menus []models.Menu
			if err := json.Unmarshal([]byte(raw), &menus); err == nil {
				return menus, nil
			}
		}
	}

	restaurant, err := s.store.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(restaurant.Menus); err == nil {
			if err := s.cache.Set(ctx, menuCacheKey(restaurantID), raw, menuCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache menus for %s: %v", restaurantID.Hex(), err)
			}
		}
	}
	return restaurant.Menus, nil
}

// Menu locates a single menu by id.
func (s *MenuService) Menu(ctx context.Context, restaurantID primitive.ObjectID, menuID string) (*models.Menu, error) {
	restaurant, err := s.store.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	menu := findMenu(restaurant.Menus, menuID)
	if menu == nil {
		return nil, ErrMenuNotFound
	}
	return menu, nil
}

// AddMenu appends a new menu with a freshly assigned id.
func (s *MenuService) AddMenu(ctx context.Context, restaurantID primitive.ObjectID, req models.MenuRequest) (*models.Menu, error) {
	menu := models.Menu{
		ID:          primitive.NewObjectID().Hex(),
		Name:        req.Name,
		WelcomeText: req.WelcomeText,
		Categories:  []models.Category{},
	}
	err := s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		return append(menus, menu), nil
	})
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// RenameMenu updates the menu's display name and welcome text.
func (s *MenuService) RenameMenu(ctx context.Context, restaurantID primitive.ObjectID, menuID string, req models.MenuRequest) error {
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		menu := findMenu(menus, menuID)
		if menu == nil {
			return nil, ErrMenuNotFound
		}
		menu.Name = req.Name
		if req.WelcomeText != "" {
			menu.WelcomeText = req.WelcomeText
		}
		return menus, nil
	})
}

// AddCategory appends a category to the menu.
func (s *MenuService) AddCategory(ctx context.Context, restaurantID primitive.ObjectID, menuID string, category models.Category) error {
	if category.Dishes == nil {
		category.Dishes = []models.Dish{}
	}
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		menu := findMenu(menus, menuID)
		if menu == nil {
			return nil, ErrMenuNotFound
		}
		menu.Categories = append(menu.Categories, category)
		return menus, nil
	})
}

// UpdateCategory renames the category at the given position.
func (s *MenuService) UpdateCategory(ctx context.Context, restaurantID primitive.ObjectID, menuID string, index int, name string) error {
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		menu := findMenu(menus, menuID)
		if menu == nil {
			return nil, ErrMenuNotFound
		}
		if index < 0 || index >= len(menu.Categories) {
			return nil, fmt.Errorf("category %d: %w", index, ErrIndexOutOfRange)
		}
		menu.Categories[index].Name = name
		return menus, nil
	})
}

// DeleteCategory removes the category at the given position.
func (s *MenuService) DeleteCategory(ctx context.Context, restaurantID primitive.ObjectID, menuID string, index int) error {
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		menu := findMenu(menus, menuID)
		if menu == nil {
			return nil, ErrMenuNotFound
		}
		if index < 0 || index >= len(menu.Categories) {
			return nil, fmt.Errorf("category %d: %w", index, ErrIndexOutOfRange)
		}
		menu.Categories = append(menu.Categories[:index], menu.Categories[index+1:]...)
		return menus, nil
	})
}

// AddDish appends a dish to the named category.
func (s *MenuService) AddDish(ctx context.Context, restaurantID primitive.ObjectID, menuID, categoryName string, dish models.Dish) error {
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		category, err := locateCategory(menus, menuID, categoryName)
		if err != nil {
			return nil, err
		}
		category.Dishes = append(category.Dishes, dish)
		return menus, nil
	})
}

// UpdateDish replaces the dish at the given position in the named category.
func (s *MenuService) UpdateDish(ctx context.Context, restaurantID primitive.ObjectID, menuID, categoryName string, index int, dish models.Dish) error {
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		category, err := locateCategory(menus, menuID, categoryName)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(category.Dishes) {
			return nil, fmt.Errorf("dish %d: %w", index, ErrIndexOutOfRange)
		}
		category.Dishes[index] = dish
		return menus, nil
	})
}

// DeleteDish removes the dish at the given position in the named category.
func (s *MenuService) DeleteDish(ctx context.Context, restaurantID primitive.ObjectID, menuID, categoryName string, index int) error {
	return s.mutate(ctx, restaurantID, func(menus []models.Menu) ([]models.Menu, error) {
		category, err := locateCategory(menus, menuID, categoryName)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(category.Dishes) {
			return nil, fmt.Errorf("dish %d: %w", index, ErrIndexOutOfRange)
		}
		category.Dishes = append(category.Dishes[:index], category.Dishes[index+1:]...)
		return menus, nil
	})
}

// mutate is the shared read-modify-write protocol. The edit runs against the
// freshly fetched document; the write replaces the whole menus sequence,
// conditioned on the version read. A version conflict surfaces to the caller
// rather than silently losing a writer.
func (s *MenuService) mutate(ctx context.Context, restaurantID primitive.ObjectID, edit func([]models.Menu) ([]models.Menu, error)) error {
	restaurant, err := s.store.Get(ctx, restaurantID)
	if err != nil {
		return err
	}

	menus, err := edit(restaurant.Menus)
	if err != nil {
		return err
	}

	if err := s.store.ReplaceMenus(ctx, restaurant.ID, restaurant.Version, menus); err != nil {
		return err
	}
	s.invalidate(ctx, restaurantID)
	return nil
}

func (s *MenuService) invalidate(ctx context.Context, restaurantID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, menuCacheKey(restaurantID)).Err(); err != nil {
		log.Printf("Failed to invalidate menu cache for %s: %v", restaurantID.Hex(), err)
	}
}

// findMenu returns a pointer into menus for the first id match, or nil.
func findMenu(menus []models.Menu, menuID string) *models.Menu {
	for i := range menus {
		if menus[i].ID == menuID {
			return &menus[i]
		}
	}
	return nil
}

// locateCategory resolves menu id then category name, first match each.
func locateCategory(menus []models.Menu, menuID, categoryName string) (*models.Category, error) {
	menu := findMenu(menus, menuID)
	if menu == nil {
		return nil, ErrMenuNotFound
	}
	for i := range menu.Categories {
		if menu.Categories[i].Name == categoryName {
			return &menu.Categories[i], nil
		}
	}
	return nil, ErrCategoryNotFound
}
