package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/logging"
)

func init() {
	// incomes render as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Response is the envelope of every API response.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func ok(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, Response{Success: true, Message: msg, Data: data})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusConflict,
	apperr.KindBusinessRule:   http.StatusUnprocessableEntity,
	apperr.KindRateLimited:    http.StatusTooManyRequests,
}

var statusCode = map[int]string{
	http.StatusBadRequest:            apperr.CodeValidation,
	http.StatusUnauthorized:          apperr.CodeUnauthorized,
	http.StatusForbidden:             apperr.CodeForbidden,
	http.StatusNotFound:              apperr.CodeNotFound,
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusConflict:              apperr.CodeConflict,
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusUnsupportedMediaType:  "UNSUPPORTED_MEDIA_TYPE",
	http.StatusTooManyRequests:       apperr.CodeRateLimited,
	http.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

// StatusOf maps an error onto its HTTP status and envelope body.
func StatusOf(err error) (int, ErrorBody) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if s, ok := kindStatus[ae.Kind]; ok {
			return s, ErrorBody{Code: ae.Code, Message: ae.Message, Details: ae.Details}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, ok := statusCode[he.Code]
		if !ok {
			code = apperr.CodeInternal
		}
		msg := http.StatusText(he.Code)
		if s, isStr := he.Message.(string); isStr && s != "" {
			msg = s
		}
		if he.Code == http.StatusNotFound {
			msg = "Route not found"
		}
		return he.Code, ErrorBody{Code: code, Message: msg}
	}

	return http.StatusInternalServerError, ErrorBody{Code: apperr.CodeInternal, Message: "Internal server error"}
}

// ErrorHandler renders every error as the envelope. Internal details never reach the
// client; they are logged instead.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := StatusOf(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Error("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, Response{Success: false, Error: &body})
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).WithError(werr).Warn("write error response")
		}
	}
}
