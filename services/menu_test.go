package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
)

// fakeRestaurantStore honors the version compare-and-swap contract of the
// Mongo-backed repository. beforeReplace, when set, runs inside ReplaceMenus
// before the version check so tests can inject a concurrent writer.
type fakeRestaurantStore struct {
	mu            sync.Mutex
	restaurants   map[primitive.ObjectID]*models.Restaurant
	beforeReplace func()
}

func newFakeRestaurantStore(restaurants ...models.Restaurant) *fakeRestaurantStore {
	store := &fakeRestaurantStore{restaurants: make(map[primitive.ObjectID]*models.Restaurant)}
	for i := range restaurants {
		r := restaurants[i]
		store.restaurants[r.ID] = &r
	}
	return store
}

func deepCopyMenus(menus []models.Menu) []models.Menu {
	raw, _ := json.Marshal(menus)
	var out []models.Menu
	_ = json.Unmarshal(raw, &out)
	return out
}

func (s *fakeRestaurantStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, repositories.ErrRestaurantNotFound
	}
	copied := *r
	copied.Menus = deepCopyMenus(r.Menus)
	return &copied, nil
}

func (s *fakeRestaurantStore) ReplaceMenus(ctx context.Context, id primitive.ObjectID, version int64, menus []models.Menu) error {
	if s.beforeReplace != nil {
		s.beforeReplace()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return repositories.ErrRestaurantNotFound
	}
	if r.Version != version {
		return repositories.ErrConflict
	}
	r.Menus = deepCopyMenus(menus)
	r.Version++
	return nil
}

func seedRestaurant() models.Restaurant {
	return models.Restaurant{
		ID:       primitive.NewObjectID(),
		Name:     "Chez Test",
		Location: "12 Rue de la Gare",
		Menus: []models.Menu{
			{
				ID:   primitive.NewObjectID().Hex(),
				Name: "Dinner",
				Categories: []models.Category{
					{
						Name:   "Mains",
						Dishes: []models.Dish{{Name: "Soup", Price: 5.0}},
					},
				},
			},
		},
		Version: 1,
	}
}

func TestAddDishDeleteDishRoundTrip(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menuID := restaurant.Menus[0].ID
	before := deepCopyMenus(restaurant.Menus)

	err := svc.AddDish(ctx, restaurant.ID, menuID, "Mains", models.Dish{Name: "Steak", Price: 18.5})
	require.NoError(t, err)

	// New dish lands at the end of the sequence
	current, err := store.Get(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, current.Menus[0].Categories[0].Dishes, 2)

	err = svc.DeleteDish(ctx, restaurant.ID, menuID, "Mains", 1)
	require.NoError(t, err)

	current, err = store.Get(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, before[0].Categories[0].Dishes, current.Menus[0].Categories[0].Dishes)
}

func TestDeleteDishTwiceOutOfRange(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menuID := restaurant.Menus[0].ID

	require.NoError(t, svc.DeleteDish(ctx, restaurant.ID, menuID, "Mains", 0))

	current, err := store.Get(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Menus[0].Categories[0].Dishes)

	err = svc.DeleteDish(ctx, restaurant.ID, menuID, "Mains", 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMutationNotFoundTaxonomy(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menuID := restaurant.Menus[0].ID
	dish := models.Dish{Name: "Pasta", Price: 12}

	err := svc.AddDish(ctx, primitive.NewObjectID(), menuID, "Mains", dish)
	assert.ErrorIs(t, err, repositories.ErrRestaurantNotFound)

	err = svc.AddDish(ctx, restaurant.ID, "missing-menu", "Mains", dish)
	assert.ErrorIs(t, err, ErrMenuNotFound)

	err = svc.AddDish(ctx, restaurant.ID, menuID, "Desserts", dish)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	err = svc.UpdateDish(ctx, restaurant.ID, menuID, "Mains", 5, dish)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	err = svc.UpdateCategory(ctx, restaurant.ID, menuID, 3, "Starters")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAddMenuAssignsID(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menu, err := svc.AddMenu(ctx, restaurant.ID, models.MenuRequest{Name: "Lunch", WelcomeText: "Bon appetit"})
	require.NoError(t, err)
	assert.NotEmpty(t, menu.ID)
	assert.NotEqual(t, restaurant.Menus[0].ID, menu.ID)

	current, err := store.Get(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, current.Menus, 2)
	assert.Equal(t, "Lunch", current.Menus[1].Name)
	assert.Equal(t, "Bon appetit", current.Menus[1].WelcomeText)
	assert.NotNil(t, current.Menus[1].Categories)
}

func TestCategoryLifecycle(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menuID := restaurant.Menus[0].ID

	require.NoError(t, svc.AddCategory(ctx, restaurant.ID, menuID, models.Category{Name: "Desserts"}))
	require.NoError(t, svc.UpdateCategory(ctx, restaurant.ID, menuID, 1, "Sweets"))

	current, err := store.Get(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, current.Menus[0].Categories, 2)
	assert.Equal(t, "Sweets", current.Menus[0].Categories[1].Name)

	require.NoError(t, svc.DeleteCategory(ctx, restaurant.ID, menuID, 1))
	current, err = store.Get(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, current.Menus[0].Categories, 1)
}

func TestRenameMenu(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menuID := restaurant.Menus[0].ID
	require.NoError(t, svc.RenameMenu(ctx, restaurant.ID, menuID, models.MenuRequest{Name: "Supper"}))

	menu, err := svc.Menu(ctx, restaurant.ID, menuID)
	require.NoError(t, err)
	assert.Equal(t, "Supper", menu.Name)
}

// A writer that loses the version race gets a conflict instead of silently
// clobbering the other writer's menus.
func TestConcurrentMutationConflict(t *testing.T) {
	restaurant := seedRestaurant()
	store := newFakeRestaurantStore(restaurant)
	svc := NewMenuService(store, nil)
	ctx := context.Background()

	menuID := restaurant.Menus[0].ID

	interfered := false
	store.beforeReplace = func() {
		if interfered {
			return
		}
		interfered = true
		store.mu.Lock()
		store.restaurants[restaurant.ID].Version++
		store.mu.Unlock()
	}

	err := svc.AddDish(ctx, restaurant.ID, menuID, "Mains", models.Dish{Name: "Salad", Price: 7})
	assert.ErrorIs(t, err, repositories.ErrConflict)
}
