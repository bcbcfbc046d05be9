package animal

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateAnimalRequest carries the multipart form fields of the add form.
// The photo file itself is handled separately by the handler.
type CreateAnimalRequest struct {
	Name        string   `form:"name" json:"name"`
	Description string   `form:"description" json:"description"`
	Categories  []string `form:"categories" json:"categories"`
	Lng         float64  `form:"lng" json:"lng"`
	Lat         float64  `form:"lat" json:"lat"`
	Habitat     string   `form:"habitat" json:"habitat"`
}

func (r CreateAnimalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Habitat, validation.Required),
		validation.Field(&r.Lng, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&r.Lat, validation.Min(-90.0), validation.Max(90.0)),
	)
}

// UpdateAnimalRequest is a partial patch; nil fields are left unchanged.
type UpdateAnimalRequest struct {
	Name        *string   `form:"name" json:"name"`
	Description *string   `form:"description" json:"description"`
	Categories  *[]string `form:"categories" json:"categories"`
	Lng         *float64  `form:"lng" json:"lng"`
	Lat         *float64  `form:"lat" json:"lat"`
	Habitat     *string   `form:"habitat" json:"habitat"`
}

func (r UpdateAnimalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Habitat, validation.NilOrNotEmpty),
		validation.Field(&r.Lng, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&r.Lat, validation.Min(-90.0), validation.Max(90.0)),
	)
}

// PhotoUpload is an uploaded image as read from the multipart form.
type PhotoUpload struct {
	Data        []byte
	ContentType string
}

// AnimalPage is one page of the catalog listing.
type AnimalPage struct {
	Animals []Animal `json:"animals"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	Total   int      `json:"total"`
}

// CategoryBrowse is the category page payload: the aggregated counts plus
// the animals matching the selected category (or any category).
type CategoryBrowse struct {
	Category   string          `json:"category,omitempty"`
	Categories []CategoryCount `json:"categories"`
	Animals    []Animal        `json:"animals"`
}
