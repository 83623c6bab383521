package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

const (
	msgUnauthenticated = "Người dùng chưa đăng nhập"
	msgForbidden       = "Không có quyền truy cập"
)

// TokenVerifier is the slice of the Firebase auth client the middleware needs
type TokenVerifier interface {
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// RequireAuth accepts either the "session" cookie set at login or a Firebase
// ID token in the Authorization header, and resolves the local user record.
// Downstream handlers read userID, userRole and userEmail from the context.
func RequireAuth(verifier TokenVerifier, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil || db == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthenticated)
			}

			ctx := c.Request().Context()
			token, err := verifyRequest(ctx, verifier, c)
			if err != nil {
				if cookie, cerr := c.Cookie("session"); cerr == nil && cookie.Value != "" {
					c.SetCookie(&http.Cookie{
						Name:     "session",
						Value:    "",
						MaxAge:   -1,
						HttpOnly: true,
						Path:     "/",
					})
				}
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthenticated)
			}

			var user models.User
			err = db.WithContext(ctx).Where("firebase_uid = ?", token.UID).First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthenticated)
			}
			if err != nil {
				log := logger.WithComponent("auth")
				log.Error().Err(err).Str("uid", token.UID).Msg("failed to load user")
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			c.Set("userUID", token.UID)
			c.Set("userID", user.ID)
			c.Set("userRole", string(user.Role))
			c.Set("userEmail", user.Email)

			return next(c)
		}
	}
}

func verifyRequest(ctx context.Context, verifier TokenVerifier, c echo.Context) (*auth.Token, error) {
	if header := c.Request().Header.Get("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return nil, errors.New("invalid authorization format")
		}
		return verifier.VerifyIDToken(ctx, token)
	}

	cookie, err := c.Cookie("session")
	if err != nil || cookie.Value == "" {
		return nil, errors.New("missing session")
	}
	return verifier.VerifySessionCookie(ctx, cookie.Value)
}

// RequireAdmin must run after RequireAuth
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(string)
			if models.UserRole(role) != models.UserRoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
			}
			return next(c)
		}
	}
}
