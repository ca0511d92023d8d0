// Package stage records one supply-chain stage at a time: it checks the
// submission, attributes it to the caller, persists it and hands back the QR
// token the next stage will scan.
package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/audit"
	"herbtrace-backend/internal/auth"
	"herbtrace-backend/internal/metrics"
	"herbtrace-backend/internal/models"
	"herbtrace-backend/internal/qr"

	"github.com/go-playground/validator/v10"
)

const (
	StageCollector    = "collector"
	StageTransport    = "transport"
	StageProcessing   = "processing"
	StageLabTest      = "lab_test"
	StageProductBatch = "product_batch"
)

const defaultBatchLocation = "Default Location"

type Store interface {
	CreateCollector(ctx context.Context, c *models.Collector) error
	CreateTransport(ctx context.Context, t *models.Transport) error
	CreateProcessing(ctx context.Context, p *models.Processing) error
	CreateLabTest(ctx context.Context, l *models.LabTest) error
	CreateProductBatch(ctx context.Context, b *models.ProductBatch) error
	Collector(ctx context.Context, id string) (*models.Collector, error)
	LabTests(ctx context.Context, ids []string) ([]models.LabTest, error)
}

type AuditWriter interface {
	WriteLog(ctx context.Context, opts audit.LogOptions) error
}

// Result is a persisted record plus the payload to embed in its QR code.
type Result[T any] struct {
	Record *T
	Token  string
}

type Recorder struct {
	store    Store
	audit    AuditWriter
	validate *validator.Validate
	now      func() time.Time
}

func NewRecorder(store Store, aw AuditWriter) *Recorder {
	return &Recorder{
		store:    store,
		audit:    aw,
		validate: newValidator(),
		now:      time.Now,
	}
}

func (r *Recorder) RecordCollector(ctx context.Context, actor *auth.Actor, in CollectorInput) (*Result[models.Collector], error) {
	if actor == nil {
		return nil, r.fail(StageCollector, apperr.Auth("Not authenticated"))
	}
	in.normalize()
	if in.Location != nil && in.Location.Lat == nil && in.Location.Lng == nil {
		in.Location = nil
	}
	if err := r.check(in); err != nil {
		return nil, r.fail(StageCollector, err)
	}

	rec := &models.Collector{
		UserID:      actor.ID,
		Species:     in.Species,
		Quantity:    *in.Quantity,
		FarmingType: in.FarmingType,
		PlantPart:   in.PlantPart,
		Location:    in.Location.model(),
		Sensors:     in.Sensors.model(),
		Timestamp:   r.now(),
	}
	if err := r.store.CreateCollector(ctx, rec); err != nil {
		return nil, r.fail(StageCollector, apperr.Storage("Could not save collector record", err))
	}

	r.recorded(ctx, actor, StageCollector, rec.ID, fmt.Sprintf("Collected %.2f of %s", rec.Quantity, rec.Species), rec)
	return &Result[models.Collector]{Record: rec, Token: qr.CollectorToken(rec.ID)}, nil
}

func (r *Recorder) RecordTransport(ctx context.Context, actor *auth.Actor, in TransportInput) (*Result[models.Transport], error) {
	if actor == nil {
		return nil, r.fail(StageTransport, apperr.Auth("Not authenticated"))
	}
	in.normalize()
	if err := r.check(in); err != nil {
		return nil, r.fail(StageTransport, err)
	}
	if err := r.requireCollector(ctx, in.CollectorID); err != nil {
		return nil, r.fail(StageTransport, err)
	}

	rec := &models.Transport{
		CollectorID:   in.CollectorID,
		TransporterID: actor.ID,
		QuantityKg:    *in.QuantityKg,
		Location:      in.Location.model(),
		Destination:   in.Destination,
		Timestamp:     r.now(),
	}
	if err := r.store.CreateTransport(ctx, rec); err != nil {
		return nil, r.fail(StageTransport, apperr.Storage("Could not save transport record", err))
	}

	r.recorded(ctx, actor, StageTransport, rec.ID, fmt.Sprintf("Transported %.2f kg to %s", rec.QuantityKg, rec.Destination), rec)
	return &Result[models.Transport]{Record: rec, Token: qr.CollectorToken(in.CollectorID)}, nil
}

func (r *Recorder) RecordProcessing(ctx context.Context, actor *auth.Actor, in ProcessingInput) (*Result[models.Processing], error) {
	if actor == nil {
		return nil, r.fail(StageProcessing, apperr.Auth("Not authenticated"))
	}
	in.normalize()
	if err := r.check(in); err != nil {
		return nil, r.fail(StageProcessing, err)
	}
	if err := r.requireCollector(ctx, in.CollectorID); err != nil {
		return nil, r.fail(StageProcessing, err)
	}

	rec := &models.Processing{
		CollectorID:         in.CollectorID,
		ProcessorID:         actor.ID,
		ReceivedQuantityKg:  *in.ReceivedQuantityKg,
		ProcessedQuantityKg: *in.ProcessedQuantityKg,
		ProcessingType:      in.ProcessingType,
		Location:            in.Location.model(),
		Timestamp:           r.now(),
	}
	if err := r.store.CreateProcessing(ctx, rec); err != nil {
		return nil, r.fail(StageProcessing, apperr.Storage("Could not save processing record", err))
	}

	r.recorded(ctx, actor, StageProcessing, rec.ID, fmt.Sprintf("Processed (%s) %.2f of %.2f kg", rec.ProcessingType, rec.ProcessedQuantityKg, rec.ReceivedQuantityKg), rec)
	return &Result[models.Processing]{Record: rec, Token: qr.CollectorToken(in.CollectorID)}, nil
}

func (r *Recorder) RecordLabTest(ctx context.Context, actor *auth.Actor, in LabTestInput) (*Result[models.LabTest], error) {
	if actor == nil {
		return nil, r.fail(StageLabTest, apperr.Auth("Not authenticated"))
	}
	in.normalize()
	if err := r.check(in); err != nil {
		return nil, r.fail(StageLabTest, err)
	}
	if err := r.requireCollector(ctx, in.CollectorID); err != nil {
		return nil, r.fail(StageLabTest, err)
	}

	rec := &models.LabTest{
		CollectorID:      in.CollectorID,
		LabTechnicianID:  actor.ID,
		TestedQuantityKg: *in.TestedQuantityKg,
		TestType:         in.TestType,
		Result:           in.Result,
		CertificateLinks: in.CertificateLinks,
		Location:         in.Location.model(),
		Timestamp:        r.now(),
	}
	if err := r.store.CreateLabTest(ctx, rec); err != nil {
		return nil, r.fail(StageLabTest, apperr.Storage("Could not save lab test", err))
	}

	r.recorded(ctx, actor, StageLabTest, rec.ID, fmt.Sprintf("Lab test (%s) on %.2f kg", rec.TestType, rec.TestedQuantityKg), rec)
	return &Result[models.LabTest]{Record: rec, Token: qr.LabTestToken(rec.ID)}, nil
}

// RecordProductBatch composes a batch from existing lab tests. Quantity falls
// back to the sum of the tested quantities, weight per product to 1.
func (r *Recorder) RecordProductBatch(ctx context.Context, actor *auth.Actor, in ProductBatchInput) (*Result[models.ProductBatch], error) {
	if actor == nil {
		return nil, r.fail(StageProductBatch, apperr.Auth("Not authenticated"))
	}
	in.normalize()
	if err := r.check(in); err != nil {
		return nil, r.fail(StageProductBatch, err)
	}

	labs, err := r.store.LabTests(ctx, in.BatchIDs)
	if err != nil {
		return nil, r.fail(StageProductBatch, apperr.Storage("Could not load lab batches", err))
	}
	if len(labs) != len(in.BatchIDs) {
		return nil, r.fail(StageProductBatch, apperr.Validation("Some batches are invalid", "batchIds"))
	}

	quantity := 0.0
	if in.Quantity != nil && *in.Quantity > 0 {
		quantity = *in.Quantity
	} else {
		for _, l := range labs {
			quantity += l.TestedQuantityKg
		}
	}
	weight := 1.0
	if in.WeightPerProduct != nil && *in.WeightPerProduct > 0 {
		weight = *in.WeightPerProduct
	}
	location := in.Location
	if location == "" {
		location = defaultBatchLocation
	}

	rec := &models.ProductBatch{
		ManufacturerID:   actor.ID,
		ProductName:      in.ProductName,
		Quantity:         quantity,
		WeightPerProduct: weight,
		Location:         location,
		VedaUsed:         in.VedaUsed,
		LabTests:         labs,
	}
	if err := r.store.CreateProductBatch(ctx, rec); err != nil {
		return nil, r.fail(StageProductBatch, apperr.Storage("Could not save product batch", err))
	}

	token, err := qr.ProductBatchToken(rec.ID, rec.ManufacturerID)
	if err != nil {
		return nil, r.fail(StageProductBatch, apperr.Storage("Could not build QR payload", err))
	}

	r.recorded(ctx, actor, StageProductBatch, rec.ID, fmt.Sprintf("Product batch %s from %d lab batches", rec.ProductName, len(labs)), rec)
	return &Result[models.ProductBatch]{Record: rec, Token: token}, nil
}

func (r *Recorder) requireCollector(ctx context.Context, id string) error {
	c, err := r.store.Collector(ctx, id)
	if err != nil {
		return apperr.Storage("Could not load collector record", err)
	}
	if c == nil {
		return apperr.NotFound("Collector not found")
	}
	return nil
}

// recorded runs the bookkeeping after a successful write. The audit row is
// best effort: it is not written in the same transaction as the record.
func (r *Recorder) recorded(ctx context.Context, actor *auth.Actor, stage, id, desc string, rec any) {
	metrics.StageRecords.WithLabelValues(stage).Inc()
	if r.audit == nil {
		return
	}
	err := r.audit.WriteLog(ctx, audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.Username,
		EntityType:  stage,
		EntityID:    id,
		Action:      models.AuditActionCreate,
		Description: desc,
		After:       rec,
	})
	if err != nil {
		slog.Warn("could not write audit log", "stage", stage, "id", id, "err", err)
	}
}

func (r *Recorder) fail(stage string, err error) error {
	metrics.StageFailures.WithLabelValues(stage, string(apperr.KindOf(err))).Inc()
	return err
}
