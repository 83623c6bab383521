package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/views"
)

// CustomErrorHandler answers API routes with {"error": message} and every
// other route with an HTML error page.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	errorTitle := "Lỗi server"
	errorMessage := ""

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			errorMessage = msg
		}
	}
	// echo fills bare errors with the status text
	if errorMessage == http.StatusText(code) {
		errorMessage = ""
	}

	switch code {
	case http.StatusNotFound:
		errorTitle = "Không tìm thấy"
		if errorMessage == "" {
			errorMessage = "Trang bạn tìm không tồn tại."
		}
	case http.StatusForbidden:
		errorTitle = "Không có quyền"
		if errorMessage == "" {
			errorMessage = msgForbidden
		}
	case http.StatusUnauthorized:
		errorTitle = "Chưa đăng nhập"
		if errorMessage == "" {
			errorMessage = msgUnauthenticated
		}
	case http.StatusBadRequest:
		errorTitle = "Yêu cầu không hợp lệ"
		if errorMessage == "" {
			errorMessage = "Yêu cầu không hợp lệ"
		}
	default:
		if errorMessage == "" {
			errorMessage = "Đã xảy ra lỗi, vui lòng thử lại sau."
		}
	}

	log := logger.WithComponent("http")
	event := log.Warn()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Int("status", code).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("request failed")

	path := c.Request().URL.Path
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/auth/") {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]interface{}{
			"success": false,
			"error":   errorMessage,
		})
		return
	}

	props := views.ErrorPageProps{
		Code:         code,
		ErrorTitle:   errorTitle,
		ErrorMessage: errorMessage,
		BackLink:     "/",
		BackText:     "Về trang chủ",
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	if renderErr := views.ErrorPage(props).Render(c.Request().Context(), c.Response()); renderErr != nil {
		log.Error().Err(renderErr).Msg("failed to render error page")
	}
}
