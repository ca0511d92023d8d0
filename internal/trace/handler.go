package trace

import (
	"strings"

	"herbtrace-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

func param(c *fiber.Ctx, name string) (string, error) {
	v := strings.TrimSpace(c.Params(name))
	if v == "" {
		return "", apperr.Validation("", name)
	}
	return v, nil
}

// GET /trace/lab/:id
func LabTraceHandler(a *Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := param(c, "id")
		if err != nil {
			return err
		}
		chain, err := a.LabChain(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(chain)
	}
}

// GET /trace/product-batch/:batchId
func ProductBatchTraceHandler(a *Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := param(c, "batchId")
		if err != nil {
			return err
		}
		chain, err := a.ProductBatchChain(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(chain)
	}
}

// GET /chains
func ListChainsHandler(a *Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chains, err := a.ListChains(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(chains)
	}
}

// GET /chains/:id
func ChainHandler(a *Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := param(c, "id")
		if err != nil {
			return err
		}
		chain, err := a.Chain(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(chain)
	}
}

// GET /api/lab-batches
func LabBatchesHandler(a *Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		batches, err := a.LabBatches(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"batches": batches})
	}
}
