package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// WriteErrorForTest expone writeError a los tests externos.
func WriteErrorForTest(c *fiber.Ctx, err error) error {
	return writeError(c, logger.Nop(), err)
}
