package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
)

const apartmentsCacheKey = "lookup:apartments"

// UserHandler feeds the user and apartment pickers of the admin invoice form
type UserHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewUserHandler(db *gorm.DB, cache *services.RedisCache) *UserHandler {
	return &UserHandler{db: db, cache: cache}
}

// ListUsers returns users with their apartment, optionally filtered by role
func (h *UserHandler) ListUsers(c echo.Context) error {
	query := h.db.WithContext(c.Request().Context()).Preload("Apartment").Order("name ASC")
	if role := c.QueryParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return serviceError(c, err, msgErrLookup)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

func (h *UserHandler) ListApartments(c echo.Context) error {
	ctx := c.Request().Context()
	apartments, err := services.GetOrSet(h.cache, ctx, apartmentsCacheKey, 5*time.Minute, func() ([]models.Apartment, error) {
		var list []models.Apartment
		err := h.db.WithContext(ctx).Order("building ASC, apartment_number ASC").Find(&list).Error
		return list, err
	})
	if err != nil {
		return serviceError(c, err, msgErrLookup)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"apartments": apartments,
	})
}
