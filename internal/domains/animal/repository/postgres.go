package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wildbook-backend/internal/domains/animal"
	"wildbook-backend/pkg/cache"
)

// postgresRepository implements animal.Repository on pgxpool, with Redis
// caching for the hot slug-lookup path.
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) animal.Repository {
	return &postgresRepository{pool: pool, cache: cache}
}

const (
	slugCacheKeyPrefix = "animal:slug:"
	cacheTTL           = 15 * time.Minute
)

const animalColumns = `id, name, slug, description, categories, longitude, latitude, habitat, photo, author_id, created_at, updated_at`

func scanAnimal(row pgx.Row) (*animal.Animal, error) {
	var a animal.Animal
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Slug,
		&a.Description,
		&a.Categories,
		&a.Location.Coordinates[0],
		&a.Location.Coordinates[1],
		&a.Location.Habitat,
		&a.Photo,
		&a.AuthorID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Location.Type = "Point"
	return &a, nil
}

func collectAnimals(rows pgx.Rows) ([]animal.Animal, error) {
	defer rows.Close()

	animals := []animal.Animal{}
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan animal: %w", err)
		}
		animals = append(animals, *a)
	}
	return animals, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, a *animal.Animal) (*animal.Animal, error) {
	query := `
        INSERT INTO animals (name, slug, description, categories, longitude, latitude, habitat, photo, author_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + animalColumns

	created, err := scanAnimal(r.pool.QueryRow(
		ctx,
		query,
		a.Name,
		a.Slug,
		a.Description,
		a.Categories,
		a.Location.Coordinates[0],
		a.Location.Coordinates[1],
		a.Location.Habitat,
		a.Photo,
		a.AuthorID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.Message, "slug") {
			return nil, animal.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}

	return created, nil
}

func (r *postgresRepository) Update(ctx context.Context, a *animal.Animal) (*animal.Animal, error) {
	query := `
        UPDATE animals
        SET name = $2, slug = $3, description = $4, categories = $5,
            longitude = $6, latitude = $7, habitat = $8, photo = $9,
            updated_at = now()
        WHERE id = $1
        RETURNING ` + animalColumns

	updated, err := scanAnimal(r.pool.QueryRow(
		ctx,
		query,
		a.ID,
		a.Name,
		a.Slug,
		a.Description,
		a.Categories,
		a.Location.Coordinates[0],
		a.Location.Coordinates[1],
		a.Location.Habitat,
		a.Photo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, animal.ErrAnimalNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.Message, "slug") {
			return nil, animal.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to update animal: %w", err)
	}

	// The slug may have changed; drop any cached lookup for this record.
	_ = r.cache.DeletePattern(ctx, slugCacheKeyPrefix+"*")

	return updated, nil
}

// Delete tolerates absent ids: a DELETE matching zero rows is success.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := r.GetByID(ctx, id)
	if errors.Is(err, animal.ErrAnimalNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM animals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete animal: %w", err)
	}

	_ = r.cache.Delete(ctx, slugCacheKeyPrefix+a.Slug)
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*animal.Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals WHERE id = $1`

	a, err := scanAnimal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, animal.ErrAnimalNotFound
		}
		return nil, fmt.Errorf("failed to get animal by id: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*animal.Animal, error) {
	cacheKey := slugCacheKeyPrefix + slug

	var cached animal.Animal
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	query := `SELECT ` + animalColumns + ` FROM animals WHERE slug = $1`

	a, err := scanAnimal(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, animal.ErrAnimalNotFound
		}
		return nil, fmt.Errorf("failed to get animal by slug: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, a, cacheTTL)
	return a, nil
}

func (r *postgresRepository) CountSlugLike(ctx context.Context, base string) (int, error) {
	pattern := fmt.Sprintf(`^%s(-[0-9]+)?$`, regexp.QuoteMeta(base))

	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM animals WHERE slug ~* $1`, pattern).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count slugs: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) ListPage(ctx context.Context, offset, limit int) ([]animal.Animal, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM animals`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count animals: %w", err)
	}

	query := `
        SELECT ` + animalColumns + `
        FROM animals
        ORDER BY created_at DESC
        OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list animals: %w", err)
	}

	animals, err := collectAnimals(rows)
	if err != nil {
		return nil, 0, err
	}
	return animals, total, nil
}

func (r *postgresRepository) ListByCategory(ctx context.Context, category string) ([]animal.Animal, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if category == "" {
		// "any": every animal that has at least one category
		query := `
            SELECT ` + animalColumns + `
            FROM animals
            WHERE cardinality(categories) > 0
            ORDER BY created_at DESC`
		rows, err = r.pool.Query(ctx, query)
	} else {
		query := `
            SELECT ` + animalColumns + `
            FROM animals
            WHERE $1 = ANY(categories)
            ORDER BY created_at DESC`
		rows, err = r.pool.Query(ctx, query, category)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list animals by category: %w", err)
	}

	return collectAnimals(rows)
}

func (r *postgresRepository) CategoriesWithCounts(ctx context.Context) ([]animal.CategoryCount, error) {
	// One row per (animal, category) pair, grouped and counted.
	// Ties break on category name ascending so the order is stable.
	query := `
        SELECT c.category, COUNT(*) AS count
        FROM animals, unnest(categories) AS c(category)
        GROUP BY c.category
        ORDER BY count DESC, c.category ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer rows.Close()

	counts := []animal.CategoryCount{}
	for rows.Next() {
		var cc animal.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

func (r *postgresRepository) SearchText(ctx context.Context, query string, limit int) ([]animal.Animal, error) {
	sql := `
        SELECT ` + animalColumns + `
        FROM animals
        WHERE search @@ plainto_tsquery('english', $1)
        ORDER BY ts_rank(search, plainto_tsquery('english', $1)) DESC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search animals: %w", err)
	}

	return collectAnimals(rows)
}

func (r *postgresRepository) SearchNear(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]animal.MapAnimal, error) {
	// Great-circle distance (haversine) in meters, computed in SQL.
	query := `
        SELECT slug, name, description, longitude, latitude, habitat, photo
        FROM animals
        WHERE 2 * 6371000 * asin(sqrt(
                power(sin(radians((latitude - $2) / 2)), 2) +
                cos(radians($2)) * cos(radians(latitude)) *
                power(sin(radians((longitude - $1) / 2)), 2)
              )) <= $3
        ORDER BY 2 * 6371000 * asin(sqrt(
                power(sin(radians((latitude - $2) / 2)), 2) +
                cos(radians($2)) * cos(radians(latitude)) *
                power(sin(radians((longitude - $1) / 2)), 2)
              )) ASC
        LIMIT $4`

	rows, err := r.pool.Query(ctx, query, lng, lat, maxDistanceMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search animals near point: %w", err)
	}
	defer rows.Close()

	results := []animal.MapAnimal{}
	for rows.Next() {
		var m animal.MapAnimal
		if err := rows.Scan(
			&m.Slug,
			&m.Name,
			&m.Description,
			&m.Location.Coordinates[0],
			&m.Location.Coordinates[1],
			&m.Location.Habitat,
			&m.Photo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan map animal: %w", err)
		}
		m.Location.Type = "Point"
		results = append(results, m)
	}
	return results, rows.Err()
}

func (r *postgresRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]animal.Animal, error) {
	if len(ids) == 0 {
		return []animal.Animal{}, nil
	}

	query := `
        SELECT ` + animalColumns + `
        FROM animals
        WHERE id = ANY($1)
        ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals by ids: %w", err)
	}

	return collectAnimals(rows)
}
