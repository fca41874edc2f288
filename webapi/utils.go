package webapi

import (
	"errors"

	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// ErrorResponseJSON returns a response following RFC 9457 Problem Details.
func ErrorResponseJSON(
	c *fiber.Ctx,
	status int,
	title string,
	detail any,
) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()

	if err := c.Status(status).JSON(pd); err != nil {
		return err
	}
	// JSON sets application/json; override after serializing.
	c.Response().Header.SetContentType("application/problem+json")
	return nil
}

// SuccessResponseJSON returns a standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// DomainErrorJSON maps a domain error to its status code and writes the
// problem response.
func DomainErrorJSON(c *fiber.Ctx, title string, err error) error {
	return ErrorResponseJSON(c, ErrorToStatusCode(err), title, err.Error())
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, sale.ErrSaleNotFound),
		errors.Is(err, sale.ErrItemNotFound),
		errors.Is(err, sale.ErrPaymentNotFound),
		errors.Is(err, sale.ErrVersionNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrStoreNotFound),
		errors.Is(err, catalog.ErrCustomerNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, sale.ErrInvalidState),
		errors.Is(err, sale.ErrDuplicateProduct):
		return fiber.StatusConflict
	case errors.Is(err, sale.ErrPaymentMismatch),
		errors.Is(err, sale.ErrEmptySale),
		errors.Is(err, sale.ErrVoidReasonRequired),
		errors.Is(err, sale.ErrRefundExceedsQuantity),
		errors.Is(err, sale.ErrNothingToRefund),
		errors.Is(err, catalog.ErrPriceNotAvailable),
		errors.Is(err, money.ErrCurrencyMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, sale.ErrQuantityNotPositive),
		errors.Is(err, sale.ErrUnitPriceNegative),
		errors.Is(err, sale.ErrDiscountOutOfRange),
		errors.Is(err, sale.ErrNoCustomer),
		errors.Is(err, sale.ErrPaymentAmountNotPositive):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. Returns a pointer to the struct (populated), or
// writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}

// parseUUIDParam reads a UUID path parameter, writing a 400 on failure.
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid "+name, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// actorID reads the acting employee from the X-Actor-ID header. An absent
// or malformed header yields uuid.Nil; authentication is out of scope here
// and handled by the gateway in front of this service.
func actorID(c *fiber.Ctx) uuid.UUID {
	id, err := uuid.Parse(c.Get("X-Actor-ID"))
	if err != nil {
		return uuid.Nil
	}
	return id
}
