package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildbook-backend/internal/domains/animal"
)

// fakeRepository is an in-memory animal.Repository good enough for the
// service's query patterns.
type fakeRepository struct {
	animals map[uuid.UUID]*animal.Animal
	order   []uuid.UUID // insertion order, newest last
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{animals: make(map[uuid.UUID]*animal.Animal)}
}

func (r *fakeRepository) Create(_ context.Context, a *animal.Animal) (*animal.Animal, error) {
	for _, existing := range r.animals {
		if existing.Slug == a.Slug {
			return nil, animal.ErrDuplicateSlug
		}
	}

	clone := *a
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.animals[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	return &clone, nil
}

func (r *fakeRepository) Update(_ context.Context, a *animal.Animal) (*animal.Animal, error) {
	if _, ok := r.animals[a.ID]; !ok {
		return nil, animal.ErrAnimalNotFound
	}
	clone := *a
	clone.UpdatedAt = time.Now()
	r.animals[a.ID] = &clone
	return &clone, nil
}

func (r *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.animals, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*animal.Animal, error) {
	a, ok := r.animals[id]
	if !ok {
		return nil, animal.ErrAnimalNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeRepository) GetBySlug(_ context.Context, slug string) (*animal.Animal, error) {
	for _, a := range r.animals {
		if a.Slug == slug {
			clone := *a
			return &clone, nil
		}
	}
	return nil, animal.ErrAnimalNotFound
}

func (r *fakeRepository) CountSlugLike(_ context.Context, base string) (int, error) {
	re := regexp.MustCompile(fmt.Sprintf(`(?i)^%s(-[0-9]+)?$`, regexp.QuoteMeta(base)))
	count := 0
	for _, a := range r.animals {
		if re.MatchString(a.Slug) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) newestFirst() []animal.Animal {
	out := make([]animal.Animal, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, *r.animals[r.order[i]])
	}
	return out
}

func (r *fakeRepository) ListPage(_ context.Context, offset, limit int) ([]animal.Animal, int, error) {
	all := r.newestFirst()
	total := len(all)
	if offset >= total {
		return []animal.Animal{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeRepository) ListByCategory(_ context.Context, category string) ([]animal.Animal, error) {
	out := []animal.Animal{}
	for _, a := range r.newestFirst() {
		if category == "" {
			if len(a.Categories) > 0 {
				out = append(out, a)
			}
			continue
		}
		for _, c := range a.Categories {
			if c == category {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRepository) CategoriesWithCounts(_ context.Context) ([]animal.CategoryCount, error) {
	counts := map[string]int{}
	for _, a := range r.animals {
		for _, c := range a.Categories {
			counts[c]++
		}
	}
	out := make([]animal.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, animal.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (r *fakeRepository) SearchText(_ context.Context, query string, limit int) ([]animal.Animal, error) {
	out := []animal.Animal{}
	for _, a := range r.newestFirst() {
		if len(out) == limit {
			break
		}
		if containsFold(a.Name, query) || containsFold(a.Description, query) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepository) SearchNear(_ context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]animal.MapAnimal, error) {
	out := []animal.MapAnimal{}
	for _, a := range r.newestFirst() {
		if len(out) == limit {
			break
		}
		out = append(out, animal.MapAnimal{
			Slug:        a.Slug,
			Name:        a.Name,
			Description: a.Description,
			Location:    a.Location,
			Photo:       a.Photo,
		})
	}
	return out, nil
}

func (r *fakeRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]animal.Animal, error) {
	out := []animal.Animal{}
	for _, id := range ids {
		if a, ok := r.animals[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return len(needle) > 0 &&
		regexp.MustCompile(`(?i)`+regexp.QuoteMeta(needle)).MatchString(haystack)
}

func newTestService(repo animal.Repository) animal.Service {
	return NewAnimalService(repo, nil, nil)
}

func createAnimal(t *testing.T, svc animal.Service, authorID uuid.UUID, name string) *animal.Animal {
	t.Helper()
	created, err := svc.Create(context.Background(), authorID, animal.CreateAnimalRequest{
		Name:    name,
		Habitat: "Savanna",
		Lng:     23.5,
		Lat:     -19.2,
	}, nil)
	require.NoError(t, err)
	return created
}

func TestCreateAssignsSlug(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	created := createAnimal(t, svc, authorID, "African Elephant")
	assert.Equal(t, "african-elephant", created.Slug)
	assert.Equal(t, authorID, created.AuthorID)
	assert.Equal(t, "Point", created.Location.Type)
	assert.NotNil(t, created.Categories)
}

func TestCreateDisambiguatesSlugByCount(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	first := createAnimal(t, svc, authorID, "African Elephant")
	second := createAnimal(t, svc, authorID, "African Elephant")
	third := createAnimal(t, svc, authorID, "African Elephant")

	assert.Equal(t, "african-elephant", first.Slug)
	assert.Equal(t, "african-elephant-2", second.Slug)
	assert.Equal(t, "african-elephant-3", third.Slug)
}

func TestCreateSlugCountSurvivesDeletions(t *testing.T) {
	// The disambiguator is the count of matching slugs, not the highest
	// suffix: after deleting the -2 record the next insert gets -3 only if
	// three records still match, otherwise the count restarts.
	repo := newFakeRepository()
	svc := newTestService(repo)
	authorID := uuid.New()

	createAnimal(t, svc, authorID, "Red Fox")
	second := createAnimal(t, svc, authorID, "Red Fox")
	require.Equal(t, "red-fox-2", second.Slug)

	require.NoError(t, svc.Delete(context.Background(), second.ID, authorID, "user"))

	third := createAnimal(t, svc, authorID, "Red Fox")
	assert.Equal(t, "red-fox-2", third.Slug)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Create(context.Background(), uuid.New(), animal.CreateAnimalRequest{
		Name:    "   ",
		Habitat: "Savanna",
	}, nil)
	assert.Error(t, err)
}

func TestCreateNormalizesDescription(t *testing.T) {
	svc := newTestService(newFakeRepository())

	created, err := svc.Create(context.Background(), uuid.New(), animal.CreateAnimalRequest{
		Name:        "Okapi",
		Description: "line one\r\nline two\nline three",
		Habitat:     "Forest",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "line one<br />line two<br />line three", created.Description)
}

func TestUpdateKeepsSlugWhenNameUnchanged(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	created := createAnimal(t, svc, authorID, "Snow Leopard")

	desc := "updated description"
	updated, err := svc.Update(context.Background(), created.ID, authorID, "user", animal.UpdateAnimalRequest{
		Name:        &created.Name,
		Description: &desc,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "snow-leopard", updated.Slug)
	assert.Equal(t, desc, updated.Description)
}

func TestUpdateReassignsSlugOnRename(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	created := createAnimal(t, svc, authorID, "Snow Leopard")

	newName := "Clouded Leopard"
	updated, err := svc.Update(context.Background(), created.ID, authorID, "user", animal.UpdateAnimalRequest{
		Name: &newName,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "clouded-leopard", updated.Slug)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	created := createAnimal(t, svc, authorID, "Snow Leopard")

	name := "Renamed"
	_, err := svc.Update(context.Background(), created.ID, uuid.New(), "user", animal.UpdateAnimalRequest{
		Name: &name,
	}, nil)
	assert.ErrorIs(t, err, animal.ErrNotOwner)
}

func TestUpdateAllowsAdmin(t *testing.T) {
	svc := newTestService(newFakeRepository())

	created := createAnimal(t, svc, uuid.New(), "Snow Leopard")

	name := "Renamed"
	updated, err := svc.Update(context.Background(), created.ID, uuid.New(), "admin", animal.UpdateAnimalRequest{
		Name: &name,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteAbsentIDSucceeds(t *testing.T) {
	svc := newTestService(newFakeRepository())

	err := svc.Delete(context.Background(), uuid.New(), uuid.New(), "user")
	assert.NoError(t, err)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc := newTestService(newFakeRepository())

	created := createAnimal(t, svc, uuid.New(), "Fennec Fox")

	err := svc.Delete(context.Background(), created.ID, uuid.New(), "user")
	assert.ErrorIs(t, err, animal.ErrNotOwner)

	err = svc.Delete(context.Background(), created.ID, uuid.New(), "admin")
	assert.NoError(t, err)
}

func TestListPagePagination(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	for i := 0; i < 13; i++ {
		createAnimal(t, svc, authorID, fmt.Sprintf("Animal %d", i))
	}

	page, err := svc.ListPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page.Animals, 6)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 13, page.Total)

	last, err := svc.ListPage(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, last.Animals, 1)
}

func TestListPageOverflowReturnsRedirectError(t *testing.T) {
	svc := newTestService(newFakeRepository())
	authorID := uuid.New()

	for i := 0; i < 13; i++ {
		createAnimal(t, svc, authorID, fmt.Sprintf("Animal %d", i))
	}

	_, err := svc.ListPage(context.Background(), 99)
	var overflow *animal.PageOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 99, overflow.Requested)
	assert.Equal(t, 3, overflow.LastPage)
}

func TestListPageEmptyCatalog(t *testing.T) {
	svc := newTestService(newFakeRepository())

	// No records at all: any page renders empty, no redirect loop.
	page, err := svc.ListPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, page.Animals)
	assert.Equal(t, 0, page.Total)
}

func TestListPageClampsLowPages(t *testing.T) {
	svc := newTestService(newFakeRepository())
	createAnimal(t, svc, uuid.New(), "Okapi")

	page, err := svc.ListPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestBrowseCategories(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	authorID := uuid.New()

	mustCreate := func(name string, categories []string) {
		_, err := svc.Create(context.Background(), authorID, animal.CreateAnimalRequest{
			Name:       name,
			Habitat:    "Forest",
			Categories: categories,
		}, nil)
		require.NoError(t, err)
	}

	mustCreate("Panda", []string{"Mammal", "Herbivore"})
	mustCreate("Tiger", []string{"Mammal", "Carnivore"})
	mustCreate("Eagle", []string{"Bird", "Carnivore"})
	mustCreate("Mystery", nil)

	browse, err := svc.BrowseCategories(context.Background(), "")
	require.NoError(t, err)

	require.NotEmpty(t, browse.Categories)
	assert.Equal(t, 2, browse.Categories[0].Count)
	assert.Len(t, browse.Animals, 3) // the uncategorized animal is excluded

	byCategory, err := svc.BrowseCategories(context.Background(), "Bird")
	require.NoError(t, err)
	assert.Len(t, byCategory.Animals, 1)
	assert.Equal(t, "Bird", byCategory.Category)
}

func TestSearchNearEmptyResult(t *testing.T) {
	svc := newTestService(newFakeRepository())

	animals, err := svc.SearchNear(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, animals)
	assert.Empty(t, animals)
}

func TestExportCatalog(t *testing.T) {
	svc := newTestService(newFakeRepository())
	createAnimal(t, svc, uuid.New(), "Okapi")

	f, err := svc.ExportCatalog(context.Background())
	require.NoError(t, err)

	name, err := f.GetCellValue("Animals", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Okapi", name)
}
