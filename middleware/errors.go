package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorHandler renders every error returned by a handler or middleware in the
// standard envelope. With debug set, unexpected errors expose their message.
func ErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message, details := classify(err, debug)
		if status >= http.StatusInternalServerError {
			log.Printf("[%s] %s %s: %v", requestID(c), c.Request().Method, c.Request().URL.Path, err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = utils.Fail(c, status, message, details)
		}
		if writeErr != nil {
			log.Printf("[%s] failed to write error response: %v", requestID(c), writeErr)
		}
	}
}

func classify(err error, debug bool) (int, string, map[string]string) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError && debug && appErr.Err != nil {
			return appErr.Status, appErr.Error(), appErr.Details
		}
		return appErr.Status, appErr.Message, appErr.Details
	}

	if details, ok := utils.ValidationDetails(err); ok {
		return http.StatusBadRequest, "Validation failed", details
	}

	if errors.Is(err, utils.ErrDuplicate) || mongo.IsDuplicateKeyError(err) {
		return http.StatusBadRequest, "Duplicate value for a unique field", nil
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Internal != nil {
			if details, ok := utils.ValidationDetails(httpErr.Internal); ok {
				return http.StatusBadRequest, "Validation failed", details
			}
		}
		return httpErr.Code, fmt.Sprint(httpErr.Message), nil
	}

	if debug {
		return http.StatusInternalServerError, err.Error(), nil
	}
	return http.StatusInternalServerError, "Internal server error", nil
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
