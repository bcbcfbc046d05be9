package animal

import (
	"time"

	"github.com/google/uuid"
)

// Location is a GeoJSON-style point with the habitat label the sighting
// belongs to. Coordinates are [longitude, latitude].
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
	Habitat     string     `json:"habitat"`
}

// Animal is the primary catalog entity.
//
// Database mapping (animals table):
//
//	id           UUID PRIMARY KEY
//	name         TEXT NOT NULL
//	slug         TEXT NOT NULL UNIQUE
//	description  TEXT NOT NULL DEFAULT ''
//	categories   TEXT[] NOT NULL DEFAULT '{}'
//	longitude    DOUBLE PRECISION NOT NULL
//	latitude     DOUBLE PRECISION NOT NULL
//	habitat      TEXT NOT NULL
//	photo        TEXT NULL
//	author_id    UUID NOT NULL REFERENCES users(id)
//	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
type Animal struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Categories  []string  `json:"categories" db:"categories"`
	Location    Location  `json:"location"`
	Photo       *string   `json:"photo,omitempty" db:"photo"`
	AuthorID    uuid.UUID `json:"author_id" db:"author_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MapAnimal is the reduced projection returned by the proximity API. The
// field whitelist is deliberate: never the full record.
type MapAnimal struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
	Photo       *string  `json:"photo,omitempty"`
}

// CategoryCount is one row of the category aggregation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ConfirmOwner checks mutation rights: the record's author, or an admin.
func ConfirmOwner(a *Animal, userID uuid.UUID, role string) error {
	if role == "admin" || a.AuthorID == userID {
		return nil
	}
	return ErrNotOwner
}
