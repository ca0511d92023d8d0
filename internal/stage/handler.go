package stage

import (
	"encoding/json"
	"errors"
	"log/slog"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/auth"
	"herbtrace-backend/internal/qr"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the request body; a value of the wrong JSON type (for
// example a quantity sent as text) is reported against its field.
func parseBody(c *fiber.Ctx, out any) error {
	err := c.BodyParser(out)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation("", typeErr.Field)
	}
	return apperr.Validation("Invalid request body")
}

func respond[T any](c *fiber.Ctx, enc *qr.Encoder, key, message string, res *Result[T]) error {
	qrURL, err := enc.DataURL(res.Token)
	if err != nil {
		// the record is already stored; the token alone is enough to continue
		slog.Warn("could not render QR code", "err", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   message,
		key:         res.Record,
		"qrToken":   res.Token,
		"qrCodeURL": qrURL,
	})
}

// POST /collector
func CreateCollectorHandler(rec *Recorder, enc *qr.Encoder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentActor(c)
		if actor == nil {
			return rec.fail(StageCollector, apperr.Auth("Not authenticated"))
		}
		var body CollectorInput
		if err := parseBody(c, &body); err != nil {
			return rec.fail(StageCollector, err)
		}
		res, err := rec.RecordCollector(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return respond(c, enc, "collector", "Collector record created", res)
	}
}

// POST /transport
func CreateTransportHandler(rec *Recorder, enc *qr.Encoder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentActor(c)
		if actor == nil {
			return rec.fail(StageTransport, apperr.Auth("Not authenticated"))
		}
		var body TransportInput
		if err := parseBody(c, &body); err != nil {
			return rec.fail(StageTransport, err)
		}
		res, err := rec.RecordTransport(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return respond(c, enc, "transport", "Transport recorded", res)
	}
}

// POST /processing
func CreateProcessingHandler(rec *Recorder, enc *qr.Encoder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentActor(c)
		if actor == nil {
			return rec.fail(StageProcessing, apperr.Auth("Not authenticated"))
		}
		var body ProcessingInput
		if err := parseBody(c, &body); err != nil {
			return rec.fail(StageProcessing, err)
		}
		res, err := rec.RecordProcessing(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return respond(c, enc, "processing", "Processing recorded", res)
	}
}

// POST /labtesting
func CreateLabTestHandler(rec *Recorder, enc *qr.Encoder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentActor(c)
		if actor == nil {
			return rec.fail(StageLabTest, apperr.Auth("Not authenticated"))
		}
		var body LabTestInput
		if err := parseBody(c, &body); err != nil {
			return rec.fail(StageLabTest, err)
		}
		res, err := rec.RecordLabTest(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return respond(c, enc, "labTest", "Lab test recorded", res)
	}
}

// POST /api/product-batch
func CreateProductBatchHandler(rec *Recorder, enc *qr.Encoder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := auth.CurrentActor(c)
		if actor == nil {
			return rec.fail(StageProductBatch, apperr.Auth("Not authenticated"))
		}
		var body ProductBatchInput
		if err := parseBody(c, &body); err != nil {
			return rec.fail(StageProductBatch, err)
		}
		res, err := rec.RecordProductBatch(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return respond(c, enc, "productBatch", "Product batch created", res)
	}
}
