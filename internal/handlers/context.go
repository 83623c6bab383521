package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
)

// Response messages shown to residents and staff
const (
	msgInvoiceNotFound     = "Không tìm thấy hóa đơn"
	msgNotInvoiceOwner     = "Bạn không có quyền thanh toán hóa đơn này"
	msgNoInvoiceAccess     = "Bạn không có quyền xem hóa đơn này"
	msgInvoiceAlreadyPaid  = "Hóa đơn đã được thanh toán"
	msgRequestInProgress   = "Yêu cầu đang được xử lý"
	msgUnsupportedFileType = "Chỉ hỗ trợ định dạng ảnh: JPEG, PNG, GIF, WebP"
	msgFileTooLarge        = "Kích thước tệp không được vượt quá 5MB"
	msgMissingFile         = "Không có tệp được tải lên"
	msgInvalidInvoiceID    = "Mã hóa đơn không hợp lệ"
	msgInvalidDate         = "Ngày không hợp lệ, định dạng YYYY-MM-DD"
	msgInvalidBody         = "Dữ liệu không hợp lệ"

	msgPaymentSuccess = "Thanh toán thành công"
	msgInvoiceCreated = "Tạo hóa đơn thành công"

	msgErrConfirmPayment  = "Lỗi server khi xác nhận thanh toán"
	msgErrListInvoices    = "Lỗi server khi lấy danh sách hóa đơn"
	msgErrGetInvoice      = "Lỗi server khi lấy hóa đơn"
	msgErrStats           = "Lỗi server khi lấy thống kê hóa đơn"
	msgErrRevenue         = "Lỗi server khi lấy báo cáo doanh thu"
	msgErrCreateInvoice   = "Lỗi server khi tạo hóa đơn"
	msgErrPaymentURL      = "Lỗi server khi tạo URL thanh toán"
	msgErrUpload          = "Lỗi server khi tải ảnh lên"
	msgErrTransactions    = "Lỗi server khi lấy lịch sử giao dịch"
	msgErrRecurring       = "Lỗi server khi xử lý hóa đơn định kỳ"
	msgErrPreference      = "Lỗi server khi lưu cài đặt thông báo"
	msgErrLookup          = "Lỗi server khi lấy dữ liệu"
	msgErrPDF             = "Lỗi server khi xuất PDF hóa đơn"
	msgInvalidChannel     = "Kênh thông báo không hợp lệ"
	msgInvalidWhatsappTgt = "Loại người nhận WhatsApp không hợp lệ"
)

func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

func getUintFromContext(c echo.Context, key string) uint {
	val := c.Get(key)
	if val == nil {
		return 0
	}
	uintVal, ok := val.(uint)
	if !ok {
		return 0
	}
	return uintVal
}

func isAdmin(c echo.Context) bool {
	return models.UserRole(getStringFromContext(c, "userRole")) == models.UserRoleAdmin
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, msgInvalidInvoiceID)
	}
	return uint(id), nil
}

// queryInt returns 0 for a missing or malformed value so services apply defaults
func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

// serviceError maps domain errors onto HTTP errors. Anything unrecognised is
// logged and reported with fallback, so internals never reach the client.
func serviceError(c echo.Context, err error, fallback string) error {
	var validation *services.ValidationError
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgInvoiceNotFound)
	case errors.Is(err, services.ErrNotInvoiceOwner):
		return echo.NewHTTPError(http.StatusForbidden, msgNotInvoiceOwner)
	case errors.Is(err, services.ErrInvoiceAlreadyPaid):
		return echo.NewHTTPError(http.StatusBadRequest, msgInvoiceAlreadyPaid)
	case errors.Is(err, services.ErrRequestInProgress):
		return echo.NewHTTPError(http.StatusConflict, msgRequestInProgress)
	case errors.Is(err, services.ErrUnsupportedFileType):
		return echo.NewHTTPError(http.StatusBadRequest, msgUnsupportedFileType)
	case errors.Is(err, services.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, msgFileTooLarge)
	case errors.Is(err, services.ErrMissingFile):
		return echo.NewHTTPError(http.StatusBadRequest, msgMissingFile)
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	}

	log := logger.WithComponent("http")
	log.Error().Err(err).
		Str("path", c.Path()).
		Uint("user_id", getUintFromContext(c, "userID")).
		Msg(fallback)
	return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
}
