package handlers

import (
	"errors"

	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func statusOf(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail converts a service error into a fiber error carrying the client-facing
// message; ErrorHandler renders it.
func fail(err error) error {
	return fiber.NewError(statusOf(err), service.MessageOf(err))
}

// bind parses the JSON body into dst and validates it. msg, when set,
// replaces the validator's own message.
func bind(c *fiber.Ctx, dst any, msg string) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if vmsg := utils.ValidateStruct(dst); vmsg != "" {
		if msg != "" {
			vmsg = msg
		}
		return fiber.NewError(fiber.StatusBadRequest, vmsg)
	}
	return nil
}

// ErrorHandler writes every returned error in the {"success": false} envelope.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return utils.JSONError(c, code, msg)
	}
}
