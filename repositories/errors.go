package repositories

import "errors"

var (
	// ErrRestaurantNotFound is returned when no restaurant document matches
	// the requested id.
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrBrandNotFound is returned when no brand document matches the
	// requested id or search.
	ErrBrandNotFound = errors.New("brand not found")

	// ErrAdNotFound is returned when no ad document matches the requested id.
	ErrAdNotFound = errors.New("ad not found")

	// ErrConflict is returned when a versioned write lost to a concurrent
	// writer. The caller re-reads and retries.
	ErrConflict = errors.New("document modified concurrently")

	// ErrServeConflict is returned when the conditional serve update found
	// the ad already served by a concurrent caller.
	ErrServeConflict = errors.New("ad already served by concurrent caller")
)
