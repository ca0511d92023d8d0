package stage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/audit"
	"herbtrace-backend/internal/auth"
	"herbtrace-backend/internal/models"
	"herbtrace-backend/internal/qr"
	"herbtrace-backend/internal/store"
	"herbtrace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type auditSpy struct {
	entries []audit.LogOptions
	err     error
}

func (a *auditSpy) WriteLog(_ context.Context, opts audit.LogOptions) error {
	a.entries = append(a.entries, opts)
	return a.err
}

// brokenStore fails every write; reads behave as if the collector exists.
type brokenStore struct {
	Store
}

var errDiskFull = errors.New("disk full")

func (brokenStore) Collector(_ context.Context, id string) (*models.Collector, error) {
	return &models.Collector{ID: id}, nil
}
func (brokenStore) CreateCollector(context.Context, *models.Collector) error   { return errDiskFull }
func (brokenStore) CreateTransport(context.Context, *models.Transport) error   { return errDiskFull }
func (brokenStore) CreateProcessing(context.Context, *models.Processing) error { return errDiskFull }
func (brokenStore) CreateLabTest(context.Context, *models.LabTest) error       { return errDiskFull }

func newRecorder(t *testing.T) (*Recorder, *store.Gorm, *auditSpy) {
	t.Helper()
	st := store.New(testutil.NewDB(t))
	spy := &auditSpy{}
	r := NewRecorder(st, spy)
	r.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return r, st, spy
}

var (
	collectorActor = &auth.Actor{ID: "user-collector", Username: "asha", Role: models.RoleCollector}
	labActor       = &auth.Actor{ID: "user-lab", Username: "lab1", Role: models.RoleLabTesting}
)

func neem() CollectorInput {
	return CollectorInput{
		Species:     "Neem",
		Quantity:    ptr(5.0),
		FarmingType: models.FarmingWild,
		PlantPart:   models.PartBark,
	}
}

func here() *LocationInput {
	return &LocationInput{Lat: ptr(12.97), Lng: ptr(77.59)}
}

func seedCollector(t *testing.T, r *Recorder) string {
	t.Helper()
	res, err := r.RecordCollector(context.Background(), collectorActor, neem())
	require.NoError(t, err)
	return res.Record.ID
}

func TestRecordCollector(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist the record and use its id as token", func(t *testing.T) {
		r, st, spy := newRecorder(t)

		res, err := r.RecordCollector(ctx, collectorActor, neem())
		require.NoError(t, err)
		assert.NotEmpty(t, res.Record.ID)
		assert.Equal(t, res.Record.ID, res.Token)
		assert.Equal(t, collectorActor.ID, res.Record.UserID)

		got, err := st.Collector(ctx, res.Record.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Neem", got.Species)

		require.Len(t, spy.entries, 1)
		assert.Equal(t, StageCollector, spy.entries[0].EntityType)
		assert.Equal(t, res.Record.ID, spy.entries[0].EntityID)
		assert.Equal(t, "asha", spy.entries[0].UserName)
	})

	t.Run("should reject unauthenticated callers before validating", func(t *testing.T) {
		r, _, spy := newRecorder(t)

		_, err := r.RecordCollector(ctx, nil, CollectorInput{})
		assert.True(t, apperr.Is(err, apperr.KindAuth))
		assert.Empty(t, spy.entries)
	})

	t.Run("should name every missing field", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		_, err := r.RecordCollector(ctx, collectorActor, CollectorInput{Species: "  ", FarmingType: "Hydroponic"})
		require.True(t, apperr.Is(err, apperr.KindValidation))

		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, []string{"farmingType", "plantPart", "quantity", "species"}, ae.Fields)
	})

	t.Run("should reject a non-positive quantity", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		in := neem()
		in.Quantity = ptr(0.0)
		_, err := r.RecordCollector(ctx, collectorActor, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("location is optional but must be complete", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		in := neem()
		in.Location = &LocationInput{}
		_, err := r.RecordCollector(ctx, collectorActor, in)
		require.NoError(t, err)

		in.Location = &LocationInput{Lat: ptr(12.0)}
		_, err = r.RecordCollector(ctx, collectorActor, in)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, []string{"location.lng"}, ae.Fields)
	})

	t.Run("blank sensor readings are stored as null", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		in := neem()
		in.Sensors = &SensorsInput{Temperature: ptr(" 28C "), Humidity: ptr("")}
		res, err := r.RecordCollector(ctx, collectorActor, in)
		require.NoError(t, err)
		require.NotNil(t, res.Record.Sensors.Temperature)
		assert.Equal(t, "28C", *res.Record.Sensors.Temperature)
		assert.Nil(t, res.Record.Sensors.Humidity)
	})

	t.Run("storage failures produce no token", func(t *testing.T) {
		spy := &auditSpy{}
		r := NewRecorder(brokenStore{}, spy)

		res, err := r.RecordCollector(ctx, collectorActor, neem())
		assert.Nil(t, res)
		assert.True(t, apperr.Is(err, apperr.KindStorage))
		assert.ErrorIs(t, err, errDiskFull)
		assert.Empty(t, spy.entries)
	})

	t.Run("a failing audit log does not fail the submission", func(t *testing.T) {
		r, _, spy := newRecorder(t)
		spy.err = errors.New("audit table locked")

		_, err := r.RecordCollector(ctx, collectorActor, neem())
		assert.NoError(t, err)
	})
}

func TestRecordTransport(t *testing.T) {
	ctx := context.Background()
	transporter := &auth.Actor{ID: "user-transport", Username: "ravi", Role: models.RoleTransporter}

	t.Run("should pass the collector id through as token", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		cid := seedCollector(t, r)

		res, err := r.RecordTransport(ctx, transporter, TransportInput{
			CollectorID: cid,
			QuantityKg:  ptr(4.5),
			Location:    here(),
			Destination: "Processing Plant A",
		})
		require.NoError(t, err)
		assert.Equal(t, cid, res.Token)
		assert.Equal(t, transporter.ID, res.Record.TransporterID)
	})

	t.Run("should require a complete location", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		cid := seedCollector(t, r)

		_, err := r.RecordTransport(ctx, transporter, TransportInput{
			CollectorID: cid,
			QuantityKg:  ptr(4.5),
			Destination: "Plant",
		})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, []string{"location"}, ae.Fields)
	})

	t.Run("should report an unknown collector as not found", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		_, err := r.RecordTransport(ctx, transporter, TransportInput{
			CollectorID: "does-not-exist",
			QuantityKg:  ptr(1.0),
			Location:    here(),
			Destination: "Plant",
		})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestRecordProcessing(t *testing.T) {
	ctx := context.Background()
	plant := &auth.Actor{ID: "user-plant", Username: "plant", Role: models.RoleProcessingPlant}

	t.Run("processed quantity above received quantity is accepted", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		cid := seedCollector(t, r)

		res, err := r.RecordProcessing(ctx, plant, ProcessingInput{
			CollectorID:         cid,
			ReceivedQuantityKg:  ptr(2.0),
			ProcessedQuantityKg: ptr(3.0),
			ProcessingType:      models.ProcessingDrying,
			Location:            here(),
		})
		require.NoError(t, err)
		assert.Equal(t, cid, res.Token)
		assert.Equal(t, plant.ID, res.Record.ProcessorID)
	})

	t.Run("should reject unknown processing types", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		cid := seedCollector(t, r)

		_, err := r.RecordProcessing(ctx, plant, ProcessingInput{
			CollectorID:         cid,
			ReceivedQuantityKg:  ptr(2.0),
			ProcessedQuantityKg: ptr(1.0),
			ProcessingType:      "fermenting",
			Location:            here(),
		})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, []string{"processingType"}, ae.Fields)
	})

	t.Run("storage failures surface as storage errors", func(t *testing.T) {
		r := NewRecorder(brokenStore{}, nil)

		_, err := r.RecordProcessing(ctx, plant, ProcessingInput{
			CollectorID:         "c1",
			ReceivedQuantityKg:  ptr(2.0),
			ProcessedQuantityKg: ptr(1.0),
			ProcessingType:      models.ProcessingDrying,
			Location:            here(),
		})
		assert.True(t, apperr.Is(err, apperr.KindStorage))
	})
}

func TestRecordLabTest(t *testing.T) {
	ctx := context.Background()

	t.Run("should prefix the token and drop blank certificate links", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		cid := seedCollector(t, r)

		res, err := r.RecordLabTest(ctx, labActor, LabTestInput{
			CollectorID:      cid,
			TestedQuantityKg: ptr(0.5),
			TestType:         models.TestContamination,
			Result:           "Within limits",
			CertificateLinks: []string{"https://certs.example/a", "  "},
			Location:         here(),
		})
		require.NoError(t, err)
		assert.Equal(t, qr.LabTestPrefix+res.Record.ID, res.Token)
		assert.Equal(t, labActor.ID, res.Record.LabTechnicianID)
		assert.Len(t, res.Record.CertificateLinks, 1)
	})

	t.Run("should require a result", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		cid := seedCollector(t, r)

		_, err := r.RecordLabTest(ctx, labActor, LabTestInput{
			CollectorID:      cid,
			TestedQuantityKg: ptr(0.5),
			TestType:         models.TestPH,
			Location:         here(),
		})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, []string{"result"}, ae.Fields)
	})
}

func TestRecordProductBatch(t *testing.T) {
	ctx := context.Background()
	maker := &auth.Actor{ID: "user-maker", Username: "maker", Role: models.RoleManufacturer}

	seedLab := func(t *testing.T, r *Recorder, qty float64) string {
		t.Helper()
		cid := seedCollector(t, r)
		res, err := r.RecordLabTest(ctx, labActor, LabTestInput{
			CollectorID:      cid,
			TestedQuantityKg: ptr(qty),
			TestType:         models.TestPH,
			Result:           "6.8",
			Location:         here(),
		})
		require.NoError(t, err)
		return res.Record.ID
	}

	t.Run("should default quantity, weight and location", func(t *testing.T) {
		r, st, _ := newRecorder(t)
		l1 := seedLab(t, r, 2)
		l2 := seedLab(t, r, 3)

		res, err := r.RecordProductBatch(ctx, maker, ProductBatchInput{
			BatchIDs:    []string{l1, l2, l1},
			ProductName: "Neem capsules",
			VedaUsed:    models.SourceAtharvaVeda,
		})
		require.NoError(t, err)
		assert.Equal(t, 5.0, res.Record.Quantity)
		assert.Equal(t, 1.0, res.Record.WeightPerProduct)
		assert.Equal(t, "Default Location", res.Record.Location)
		assert.Equal(t, maker.ID, res.Record.ManufacturerID)

		var payload qr.ProductBatchPayload
		require.NoError(t, json.Unmarshal([]byte(res.Token), &payload))
		assert.Equal(t, res.Record.ID, payload.ProductBatchID)
		assert.Equal(t, maker.ID, payload.ManufacturerID)

		got, err := st.ProductBatch(ctx, res.Record.ID)
		require.NoError(t, err)
		assert.Len(t, got.LabTests, 2)
	})

	t.Run("should reject unknown lab tests", func(t *testing.T) {
		r, _, _ := newRecorder(t)
		l1 := seedLab(t, r, 2)

		_, err := r.RecordProductBatch(ctx, maker, ProductBatchInput{
			BatchIDs:    []string{l1, "ghost"},
			ProductName: "Neem capsules",
			VedaUsed:    models.SourceRigVeda,
		})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, "Some batches are invalid", ae.Message)
	})

	t.Run("should require a selection and a source text", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		_, err := r.RecordProductBatch(ctx, maker, ProductBatchInput{ProductName: "Neem capsules"})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, []string{"batchIds", "vedaUsed"}, ae.Fields)
	})

	t.Run("should reject unauthenticated callers", func(t *testing.T) {
		r, _, _ := newRecorder(t)

		_, err := r.RecordProductBatch(ctx, nil, ProductBatchInput{})
		assert.True(t, apperr.Is(err, apperr.KindAuth))
	})
}
