package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"wildbook-backend/internal/domains/animal"
	"wildbook-backend/internal/shared/utils"
)

const (
	pageSize        = 6
	searchLimit     = 5
	nearLimit       = 100
	nearMaxDistance = 100_000_000 // meters; wide enough to cover the globe

	exportMaxRows = 10_000
)

// PhotoStorage is the slice of the object store the service needs.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// PhotoProcessor validates and resizes uploaded images.
type PhotoProcessor interface {
	ValidateImage(data []byte) error
	ProcessPhoto(data []byte) ([]byte, error)
}

type AnimalService struct {
	repo      animal.Repository
	storage   PhotoStorage
	processor PhotoProcessor
}

func NewAnimalService(repo animal.Repository, storage PhotoStorage, processor PhotoProcessor) animal.Service {
	return &AnimalService{
		repo:      repo,
		storage:   storage,
		processor: processor,
	}
}

// assignSlug derives the final slug for a name. The disambiguator is the
// count of existing base-or-base-numbered slugs plus one, not the highest
// numeric suffix seen. The unique index on animals.slug turns the remaining
// race into a conflict error instead of a silent duplicate.
func (s *AnimalService) assignSlug(ctx context.Context, name string) (string, error) {
	base := utils.GenerateSlug(name)
	if base == "" {
		return "", animal.ErrEmptyName
	}

	matches, err := s.repo.CountSlugLike(ctx, base)
	if err != nil {
		return "", fmt.Errorf("failed to check existing slugs: %w", err)
	}
	if matches == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, matches+1), nil
}

// normalizeDescription trims the text and turns embedded newlines into
// explicit line-break markers at write time.
func normalizeDescription(description string) string {
	d := strings.TrimSpace(description)
	d = strings.ReplaceAll(d, "\r\n", "\n")
	return strings.ReplaceAll(d, "\n", "<br />")
}

func (s *AnimalService) storePhoto(ctx context.Context, photo *animal.PhotoUpload) (*string, error) {
	if err := s.processor.ValidateImage(photo.Data); err != nil {
		return nil, err
	}

	resized, err := s.processor.ProcessPhoto(photo.Data)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("animals/%s.jpg", uuid.NewString())
	if _, err := s.storage.Upload(ctx, key, resized, "image/jpeg"); err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *AnimalService) Create(ctx context.Context, authorID uuid.UUID, req animal.CreateAnimalRequest, photo *animal.PhotoUpload) (*animal.Animal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, animal.ErrEmptyName
	}

	// Slug assignment runs before the record exists; the new animal is not
	// visible to readers until the insert completes.
	slug, err := s.assignSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	a := &animal.Animal{
		Name:        name,
		Slug:        slug,
		Description: normalizeDescription(req.Description),
		Categories:  req.Categories,
		Location: animal.Location{
			Type:        "Point",
			Coordinates: [2]float64{req.Lng, req.Lat},
			Habitat:     req.Habitat,
		},
		AuthorID: authorID,
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}

	if photo != nil {
		key, err := s.storePhoto(ctx, photo)
		if err != nil {
			return nil, err
		}
		a.Photo = key
	}

	return s.repo.Create(ctx, a)
}

func (s *AnimalService) Update(ctx context.Context, id, userID uuid.UUID, role string, req animal.UpdateAnimalRequest, photo *animal.PhotoUpload) (*animal.Animal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := animal.ConfirmOwner(existing, userID, role); err != nil {
		return nil, err
	}

	// The slug is re-derived only when the name actually changes.
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, animal.ErrEmptyName
		}
		if name != existing.Name {
			slug, err := s.assignSlug(ctx, name)
			if err != nil {
				return nil, err
			}
			existing.Name = name
			existing.Slug = slug
		}
	}

	if req.Description != nil {
		existing.Description = normalizeDescription(*req.Description)
	}
	if req.Categories != nil {
		existing.Categories = *req.Categories
	}
	if req.Lng != nil {
		existing.Location.Coordinates[0] = *req.Lng
	}
	if req.Lat != nil {
		existing.Location.Coordinates[1] = *req.Lat
	}
	if req.Habitat != nil {
		existing.Location.Habitat = *req.Habitat
	}
	existing.Location.Type = "Point"

	if photo != nil {
		key, err := s.storePhoto(ctx, photo)
		if err != nil {
			return nil, err
		}
		existing.Photo = key
	}

	return s.repo.Update(ctx, existing)
}

// Delete removes an animal. Deleting an absent id succeeds; deleting
// someone else's animal does not.
func (s *AnimalService) Delete(ctx context.Context, id, userID uuid.UUID, role string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == animal.ErrAnimalNotFound {
			return nil
		}
		return err
	}

	if err := animal.ConfirmOwner(existing, userID, role); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *AnimalService) GetBySlug(ctx context.Context, slug string) (*animal.Animal, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *AnimalService) GetForEdit(ctx context.Context, id, userID uuid.UUID, role string) (*animal.Animal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := animal.ConfirmOwner(a, userID, role); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnimalService) ListPage(ctx context.Context, page int) (*animal.AnimalPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	animals, total, err := s.repo.ListPage(ctx, offset, pageSize)
	if err != nil {
		return nil, err
	}

	pages := int(math.Ceil(float64(total) / float64(pageSize)))

	// Asking for a page past the end of a non-empty collection sends the
	// caller to the last valid page instead of an empty one.
	if len(animals) == 0 && offset > 0 && total > 0 {
		return nil, &animal.PageOverflowError{Requested: page, LastPage: pages}
	}

	return &animal.AnimalPage{
		Animals: animals,
		Page:    page,
		Pages:   pages,
		Total:   total,
	}, nil
}

func (s *AnimalService) BrowseCategories(ctx context.Context, category string) (*animal.CategoryBrowse, error) {
	counts, err := s.repo.CategoriesWithCounts(ctx)
	if err != nil {
		return nil, err
	}

	animals, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	return &animal.CategoryBrowse{
		Category:   category,
		Categories: counts,
		Animals:    animals,
	}, nil
}

func (s *AnimalService) SearchText(ctx context.Context, query string) ([]animal.Animal, error) {
	return s.repo.SearchText(ctx, query, searchLimit)
}

func (s *AnimalService) SearchNear(ctx context.Context, lng, lat float64) ([]animal.MapAnimal, error) {
	return s.repo.SearchNear(ctx, lng, lat, nearMaxDistance, nearLimit)
}

func (s *AnimalService) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]animal.Animal, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *AnimalService) ExportCatalog(ctx context.Context) (*excelize.File, error) {
	animals, _, err := s.repo.ListPage(ctx, 0, exportMaxRows)
	if err != nil {
		return nil, err
	}

	return buildCatalogWorkbook(animals)
}

func buildCatalogWorkbook(animals []animal.Animal) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Animals"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Slug", "Description", "Categories", "Habitat", "Longitude", "Latitude", "Photo", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, a := range animals {
		photo := ""
		if a.Photo != nil {
			photo = *a.Photo
		}
		values := []interface{}{
			a.Name,
			a.Slug,
			a.Description,
			strings.Join(a.Categories, ", "),
			a.Location.Habitat,
			a.Location.Coordinates[0],
			a.Location.Coordinates[1],
			photo,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	return f, nil
}
