package handlers

import (
	"errors"
	"log"
	"strconv"

	"casestore/internal/apperrors"
	"casestore/internal/models"

	"github.com/gofiber/fiber/v2"
)

// sendSuccess writes the success envelope. extra is merged into the top level.
func sendSuccess(c *fiber.Ctx, status int, message string, data interface{}, extra fiber.Map) error {
	payload := fiber.Map{"success": true}
	if message != "" {
		payload["message"] = message
	}
	if data != nil {
		payload["data"] = data
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.Status(status).JSON(payload)
}

func sendPage[T any](c *fiber.Ctx, page models.PageResult[T]) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return sendSuccess(c, fiber.StatusOK, "", items, fiber.Map{
		"count":       len(items),
		"total":       page.Total,
		"pages":       page.Pages(),
		"currentPage": page.Page.Normalize().Number,
	})
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInsufficientStock),
		errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrInvalidTransition):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, apperrors.ErrAccountDisabled):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler or middleware as the error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	payload := fiber.Map{"success": false, "message": err.Error()}

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		payload["errors"] = verr.Fields
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.OriginalURL(), err)
		payload["message"] = "Internal server error"
		payload["error"] = err.Error()
	}
	return c.Status(status).JSON(payload)
}

// parseBody decodes the JSON body into out, reporting malformed input as a 400.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// queryPage reads the page and limit query parameters. Missing or malformed values become 0.
func queryPage(c *fiber.Ctx) models.Page {
	return models.Page{Number: c.QueryInt("page"), Limit: c.QueryInt("limit")}
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Invalid(key, key+" must be a number")
	}
	return &v, nil
}
