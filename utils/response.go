package utils

import (
	"net/http"

	"github.com/brushbolt/store-backend/models"
	"github.com/labstack/echo/v4"
)

// Envelope is the single response shape used by every route.
type Envelope struct {
	Success    bool               `json:"success"`
	Data       interface{}        `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Details    map[string]string  `json:"details,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Paginated writes a list together with its page metadata. A nil slice is
// still rendered as an empty array.
func Paginated[T any](c echo.Context, items []T, p models.Pagination) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Pagination: &p})
}

func Fail(c echo.Context, status int, message string, details map[string]string) error {
	return c.JSON(status, Envelope{Success: false, Error: message, Details: details})
}
