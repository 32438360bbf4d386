package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// retryAfterSeconds sugerido al cliente ante conflictos de concurrencia.
const retryAfterSeconds = "1"

// statusFor mapea el Kind de dominio a un status HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindValidation, domain.KindInsufficientStock, domain.KindAlreadyCancelled:
		return fiber.StatusBadRequest
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con el cuerpo de error estándar. Los errores sin tipo se
// registran y se devuelven como INTERNAL sin filtrar el detalle.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	de, ok := domain.AsError(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	body := dto.ErrorResponse{Code: de.Code, Message: de.Message}
	if de.Retryable() {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		body.Retryable = true
		log.Warn().Str("path", c.Path()).Str("code", de.Code).Msg("conflicto de concurrencia")
	}
	return c.Status(statusFor(de.Kind)).JSON(body)
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func forbiddenStore(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a la tienda"})
}
