package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AckBody acknowledges a processed signal
type AckBody struct {
	Status string `json:"status"`
	Action string `json:"action"`
}

// IgnoredBody reports a signal that required no state change
type IgnoredBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorBody carries a caller-visible error message
type ErrorBody struct {
	Error string `json:"error"`
}

// AckResponse sends a 200 acknowledgement with the applied action
func AckResponse(c echo.Context, action string) error {
	return c.JSON(http.StatusOK, AckBody{Status: "ok", Action: action})
}

// IgnoredResponse sends a 200 for a signal matching the open direction
func IgnoredResponse(c echo.Context) error {
	return c.JSON(http.StatusOK, IgnoredBody{
		Status:  "ignored",
		Message: "Trade already open in same direction",
	})
}

// BadRequestResponse sends a 400 with the validation message
func BadRequestResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// InternalServerErrorResponse sends a 500 with the error message
func InternalServerErrorResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorBody{Error: message})
}
