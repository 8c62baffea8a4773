package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gofiber/fiber/v2"
)

const (
	KindValidation     = "validation_error"
	KindAuthentication = "authentication_error"
	KindInvalidToken   = "invalid_token"
	KindNotFound       = "not_found"
	KindExportDisabled = "export_disabled"
	KindInternal       = "internal_error"
)

// errBadBody is returned for request bodies that cannot be decoded.
func errBadBody() error {
	return common.NewValidationError("invalid request body")
}

// NewErrorHandler maps domain errors onto status codes and the
// ErrorResponse body. Unclassified errors are logged and answered with a
// bare 500.
func NewErrorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status == fiber.StatusInternalServerError {
			log.Error(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, ErrorResponse) {
	var ve *common.ValidationError
	var fe *fiber.Error

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ErrorResponse{Error: KindValidation, Message: ve.Message, Fields: ve.Fields}
	case errors.Is(err, common.ErrMalformedToken):
		return fiber.StatusBadRequest, ErrorResponse{Error: KindValidation, Message: "token is invalid or malformed"}
	case errors.Is(err, common.ErrInvalidToken):
		return fiber.StatusUnauthorized, ErrorResponse{Error: KindInvalidToken, Message: "token is invalid or expired"}
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized, ErrorResponse{Error: KindAuthentication, Message: "authentication credentials were not provided or are invalid"}
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, ErrorResponse{Error: KindNotFound, Message: "not found"}
	case errors.Is(err, common.ErrExportDisabled):
		return fiber.StatusServiceUnavailable, ErrorResponse{Error: KindExportDisabled, Message: "export is not configured"}
	case errors.As(err, &fe):
		return fe.Code, ErrorResponse{Error: kindForStatus(fe.Code), Message: fe.Message}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Error: KindInternal, Message: "an internal error occurred"}
	}
}

func kindForStatus(code int) string {
	switch {
	case code == fiber.StatusNotFound:
		return KindNotFound
	case code == fiber.StatusUnauthorized:
		return KindAuthentication
	case code >= 500:
		return KindInternal
	default:
		return KindValidation
	}
}
