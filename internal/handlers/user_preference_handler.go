package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"apartment_app_echo/internal/models"
)

type UserPreferenceHandler struct {
	DB *gorm.DB
}

func NewUserPreferenceHandler(db *gorm.DB) *UserPreferenceHandler {
	return &UserPreferenceHandler{DB: db}
}

// GetUserPreference returns the caller's reminder channel, defaulting to email
func (h *UserPreferenceHandler) GetUserPreference(c echo.Context) error {
	userID := getUintFromContext(c, "userID")

	var pref models.UserNotifPreference
	err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.UserNotifPreference{
			UserID:             userID,
			Channel:            models.NotificationChannelEmail,
			WhatsappTargetType: models.WhatsappTargetTypePersonal,
		}
	} else if err != nil {
		return serviceError(c, err, msgErrPreference)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"preference": pref,
	})
}

type preferenceRequest struct {
	Channel            string `json:"channel" form:"channel"`
	WhatsappTargetType string `json:"whatsapp_target_type" form:"whatsapp_target_type"`
	WhatsappGroupID    string `json:"whatsapp_group_id" form:"whatsapp_group_id"`
}

// UpdateUserPreference upserts the caller's preference
func (h *UserPreferenceHandler) UpdateUserPreference(c echo.Context) error {
	userID := getUintFromContext(c, "userID")

	var req preferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	channel := models.NotificationChannel(strings.ToLower(strings.TrimSpace(req.Channel)))
	if !channel.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidChannel)
	}
	target := strings.ToLower(strings.TrimSpace(req.WhatsappTargetType))
	switch target {
	case "":
		target = models.WhatsappTargetTypePersonal
	case models.WhatsappTargetTypePersonal, models.WhatsappTargetTypeGroup:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidWhatsappTgt)
	}
	if target == models.WhatsappTargetTypeGroup && strings.TrimSpace(req.WhatsappGroupID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidWhatsappTgt)
	}

	db := h.DB.WithContext(c.Request().Context())
	var pref models.UserNotifPreference
	err := db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.UserNotifPreference{UserID: userID}
	} else if err != nil {
		return serviceError(c, err, msgErrPreference)
	}

	pref.Channel = channel
	pref.WhatsappTargetType = target
	pref.WhatsappGroupID = strings.TrimSpace(req.WhatsappGroupID)

	if err := db.Save(&pref).Error; err != nil {
		return serviceError(c, err, msgErrPreference)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"preference": pref,
	})
}
