package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"wildbook-backend/internal/domains/animal"
	"wildbook-backend/internal/shared/response"
	"wildbook-backend/pkg/logger"
)

type AnimalHandler struct {
	service animal.Service
}

func NewAnimalHandler(service animal.Service) *AnimalHandler {
	return &AnimalHandler{service: service}
}

// ListAnimals handles GET /animals and GET /animals/page/:page.
// A page past the end of a non-empty catalog redirects to the last page.
func (h *AnimalHandler) ListAnimals(c *gin.Context) {
	page := 1
	if p := c.Param("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			response.BadRequest(c, "invalid page number")
			return
		}
		page = parsed
	}

	result, err := h.service.ListPage(c.Request.Context(), page)
	if err != nil {
		var overflow *animal.PageOverflowError
		if errors.As(err, &overflow) {
			c.Redirect(http.StatusFound, fmt.Sprintf("/api/v1/animals/page/%d", overflow.LastPage))
			return
		}
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Animals, &response.Meta{
		Page:  result.Page,
		Pages: result.Pages,
		Limit: len(result.Animals),
		Total: result.Total,
	})
}

// GetBySlug handles GET /animals/slug/:slug.
func (h *AnimalHandler) GetBySlug(c *gin.Context) {
	a, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// CreateAnimal handles POST /animals (multipart form, login required).
func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req animal.CreateAnimalRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid form data")
		return
	}

	photo, err := readPhoto(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req, photo)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// EditAnimal handles GET /animals/:id/edit — the edit-form fetch,
// owner-gated.
func (h *AnimalHandler) EditAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal id")
		return
	}

	a, err := h.service.GetForEdit(c.Request.Context(), id, userID, c.GetString("role"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// UpdateAnimal handles PUT /animals/:id (multipart form, owner-gated).
func (h *AnimalHandler) UpdateAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal id")
		return
	}

	var req animal.UpdateAnimalRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid form data")
		return
	}

	photo, err := readPhoto(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, userID, c.GetString("role"), req, photo)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DeleteAnimal handles DELETE /animals/:id. Deleting an absent id succeeds.
func (h *AnimalHandler) DeleteAnimal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID, c.GetString("role")); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// BrowseCategories handles GET /categories and GET /categories/:category.
func (h *AnimalHandler) BrowseCategories(c *gin.Context) {
	result, err := h.service.BrowseCategories(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// SearchAnimals handles GET /animals/search?q=.
func (h *AnimalHandler) SearchAnimals(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	animals, err := h.service.SearchText(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, animals)
}

// NearAnimals handles GET /animals/near?lng=&lat=.
func (h *AnimalHandler) NearAnimals(c *gin.Context) {
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLng != nil || errLat != nil {
		response.BadRequest(c, "lng and lat query parameters are required")
		return
	}

	animals, err := h.service.SearchNear(c.Request.Context(), lng, lat)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, animals)
}

// ExportAnimals handles GET /animals/export (admin only).
func (h *AnimalHandler) ExportAnimals(c *gin.Context) {
	f, err := h.service.ExportCatalog(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="animals.xlsx"`)

	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to stream export", err)
	}
}

func (h *AnimalHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", validationErrs)
	case errors.Is(err, animal.ErrAnimalNotFound):
		response.NotFound(c, "animal not found")
	case errors.Is(err, animal.ErrNotOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, animal.ErrEmptyName):
		response.BadRequest(c, err.Error())
	case errors.Is(err, animal.ErrDuplicateSlug):
		response.Conflict(c, "an animal with this slug already exists")
	default:
		logger.Error("animal handler error", err)
		response.InternalServerError(c, "something went wrong")
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// readPhoto pulls the optional "photo" file out of the multipart form.
func readPhoto(c *gin.Context) (*animal.PhotoUpload, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		// no file attached
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open uploaded photo")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read uploaded photo")
	}

	return &animal.PhotoUpload{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, nil
}
