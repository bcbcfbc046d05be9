package animal

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Service is the business-logic contract for the animal catalog. Slug
// assignment, ownership checks and photo handling all happen here; handlers
// stay thin.
type Service interface {
	Create(ctx context.Context, authorID uuid.UUID, req CreateAnimalRequest, photo *PhotoUpload) (*Animal, error)
	Update(ctx context.Context, id, userID uuid.UUID, role string, req UpdateAnimalRequest, photo *PhotoUpload) (*Animal, error)
	Delete(ctx context.Context, id, userID uuid.UUID, role string) error

	GetBySlug(ctx context.Context, slug string) (*Animal, error)

	// GetForEdit fetches an animal for the edit form, enforcing ownership.
	GetForEdit(ctx context.Context, id, userID uuid.UUID, role string) (*Animal, error)

	ListPage(ctx context.Context, page int) (*AnimalPage, error)
	BrowseCategories(ctx context.Context, category string) (*CategoryBrowse, error)
	SearchText(ctx context.Context, query string) ([]Animal, error)
	SearchNear(ctx context.Context, lng, lat float64) ([]MapAnimal, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Animal, error)

	// ExportCatalog builds an Excel workbook of the full catalog.
	ExportCatalog(ctx context.Context) (*excelize.File, error)
}
