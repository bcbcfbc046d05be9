package animal

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for animals. All query semantics
// (ordering, limits, projections) live behind this interface so the service
// can be tested against an in-memory fake.
type Repository interface {
	Create(ctx context.Context, a *Animal) (*Animal, error)

	// Update persists every mutable field of a. Returns ErrAnimalNotFound
	// when the id is absent.
	Update(ctx context.Context, a *Animal) (*Animal, error)

	// Delete is idempotent: removing an absent id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*Animal, error)
	GetBySlug(ctx context.Context, slug string) (*Animal, error)

	// CountSlugLike counts existing slugs matching ^base(-[0-9]+)?$
	// case-insensitively.
	CountSlugLike(ctx context.Context, base string) (int, error)

	// ListPage returns one page ordered by created_at descending, plus the
	// total record count.
	ListPage(ctx context.Context, offset, limit int) ([]Animal, int, error)

	// ListByCategory returns animals with the given category; an empty
	// category means "any animal that has at least one category".
	ListByCategory(ctx context.Context, category string) ([]Animal, error)

	// CategoriesWithCounts aggregates one row per (animal, category) pair,
	// grouped and ordered by count descending (category ascending on ties).
	CategoriesWithCounts(ctx context.Context) ([]CategoryCount, error)

	// SearchText is a relevance-ranked full-text match over name and
	// description, best match first.
	SearchText(ctx context.Context, query string, limit int) ([]Animal, error)

	// SearchNear returns the whitelisted map projection, nearest first.
	SearchNear(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]MapAnimal, error)

	// ListByIDs fetches the given animals, newest first. Used for hearts.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Animal, error)
}
