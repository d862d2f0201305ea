package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/labstack/echo/v4"
)

// NotFoundJSON returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s) have consistent JSON format
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// statusFor maps the swap failure taxonomy onto HTTP status codes.
// Anything outside it came from the RPC node or the Raydium API.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, swap.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid swap request"
	case errors.Is(err, swap.ErrPoolNotFound):
		return http.StatusNotFound, "pool not found"
	case errors.Is(err, swap.ErrArithmeticOverflow), errors.Is(err, swap.ErrDivideByZero):
		return http.StatusUnprocessableEntity, "swap cannot be priced"
	case errors.Is(err, swap.ErrSwapDisabled):
		return http.StatusUnprocessableEntity, "pool does not accept swaps"
	case errors.Is(err, swap.ErrInstructionEncoding), errors.Is(err, swap.ErrIncompletePlan):
		return http.StatusUnprocessableEntity, "swap cannot be built"
	case errors.Is(err, swap.ErrMalformedAccountData):
		return http.StatusBadGateway, "unreadable pool state"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream timeout"
	default:
		return http.StatusBadGateway, "upstream request failed"
	}
}
