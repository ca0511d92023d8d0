// Package trace reassembles supply chains from the stage records that point
// back at a collector lot.
//
// Every traversal is all-or-nothing: a store failure anywhere aborts it with a
// StorageError and no partial chain is returned.
package trace

import (
	"context"
	"time"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/metrics"
	"herbtrace-backend/internal/models"
	"herbtrace-backend/internal/qr"
)

type Store interface {
	Collector(ctx context.Context, id string) (*models.Collector, error)
	Collectors(ctx context.Context, ids []string) ([]models.Collector, error)
	AllCollectors(ctx context.Context) ([]models.Collector, error)
	TransportsByCollector(ctx context.Context, collectorID string) ([]models.Transport, error)
	TransportsByCollectors(ctx context.Context, collectorIDs []string) ([]models.Transport, error)
	AllTransports(ctx context.Context) ([]models.Transport, error)
	LatestProcessing(ctx context.Context, collectorID string) (*models.Processing, error)
	ProcessingsByCollectors(ctx context.Context, collectorIDs []string) ([]models.Processing, error)
	AllProcessings(ctx context.Context) ([]models.Processing, error)
	LabTest(ctx context.Context, id string) (*models.LabTest, error)
	LatestLabTest(ctx context.Context, collectorID string) (*models.LabTest, error)
	AllLabTests(ctx context.Context) ([]models.LabTest, error)
	ProductBatch(ctx context.Context, id string) (*models.ProductBatch, error)
}

type UsernameResolver interface {
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

type Assembler struct {
	store Store
	users UsernameResolver
}

func NewAssembler(store Store, users UsernameResolver) *Assembler {
	return &Assembler{store: store, users: users}
}

func storageErr(err error) error {
	return apperr.Storage("Could not load chain", err)
}

func observe(variant string, start time.Time) {
	metrics.TraceDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
}

// CollectorChain walks a chain from its collector record.
func (a *Assembler) CollectorChain(ctx context.Context, collectorID string) (*Chain, error) {
	defer observe("collector", time.Now())

	c, err := a.store.Collector(ctx, collectorID)
	if err != nil {
		return nil, storageErr(err)
	}
	if c == nil {
		return nil, apperr.NotFound("Collector not found")
	}
	lab, err := a.store.LatestLabTest(ctx, c.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	return a.chainFrom(ctx, c, lab)
}

// LabChain walks a chain from a lab test id, bare or as its QR token.
func (a *Assembler) LabChain(ctx context.Context, labID string) (*Chain, error) {
	defer observe("lab", time.Now())

	lab, err := a.store.LabTest(ctx, qr.StripLabTestPrefix(labID))
	if err != nil {
		return nil, storageErr(err)
	}
	if lab == nil {
		return nil, apperr.NotFound("Lab test not found")
	}
	c, err := a.store.Collector(ctx, lab.CollectorID)
	if err != nil {
		return nil, storageErr(err)
	}
	if c == nil {
		return nil, apperr.NotFound("Collector not found")
	}
	return a.chainFrom(ctx, c, lab)
}

// Chain resolves id as a lab test first and falls back to a collector id.
// A prefixed lab token never falls back.
func (a *Assembler) Chain(ctx context.Context, id string) (*Chain, error) {
	defer observe("any", time.Now())

	bare := qr.StripLabTestPrefix(id)
	lab, err := a.store.LabTest(ctx, bare)
	if err != nil {
		return nil, storageErr(err)
	}

	collectorID := bare
	if lab != nil {
		collectorID = lab.CollectorID
	} else if bare != id {
		return nil, apperr.NotFound("Lab test not found")
	}

	c, err := a.store.Collector(ctx, collectorID)
	if err != nil {
		return nil, storageErr(err)
	}
	if c == nil {
		return nil, apperr.NotFound("Collector not found")
	}
	if lab == nil {
		if lab, err = a.store.LatestLabTest(ctx, c.ID); err != nil {
			return nil, storageErr(err)
		}
	}
	return a.chainFrom(ctx, c, lab)
}

// chainFrom loads transport and processing for c and resolves every owner.
// lab is the already chosen lab test, possibly nil.
func (a *Assembler) chainFrom(ctx context.Context, c *models.Collector, lab *models.LabTest) (*Chain, error) {
	transports, err := a.store.TransportsByCollector(ctx, c.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	processing, err := a.store.LatestProcessing(ctx, c.ID)
	if err != nil {
		return nil, storageErr(err)
	}

	ids := []string{c.UserID}
	for _, t := range transports {
		ids = append(ids, t.TransporterID)
	}
	if processing != nil {
		ids = append(ids, processing.ProcessorID)
	}
	if lab != nil {
		ids = append(ids, lab.LabTechnicianID)
	}
	n, err := a.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &Chain{
		Collector:  n.collector(*c),
		Transport:  n.transports(transports),
		Processing: n.processing(processing),
		Lab:        n.lab(lab),
	}, nil
}

// ProductBatchChain gathers everything upstream of a manufactured batch.
func (a *Assembler) ProductBatchChain(ctx context.Context, batchID string) (*ProductChain, error) {
	defer observe("product_batch", time.Now())

	b, err := a.store.ProductBatch(ctx, batchID)
	if err != nil {
		return nil, storageErr(err)
	}
	if b == nil {
		return nil, apperr.NotFound("Product batch not found")
	}

	collectorIDs := distinctCollectors(b.LabTests)
	collectors, err := a.store.Collectors(ctx, collectorIDs)
	if err != nil {
		return nil, storageErr(err)
	}
	transports, err := a.store.TransportsByCollectors(ctx, collectorIDs)
	if err != nil {
		return nil, storageErr(err)
	}
	processings, err := a.store.ProcessingsByCollectors(ctx, collectorIDs)
	if err != nil {
		return nil, storageErr(err)
	}

	ids := []string{b.ManufacturerID}
	for _, l := range b.LabTests {
		ids = append(ids, l.LabTechnicianID)
	}
	for _, c := range collectors {
		ids = append(ids, c.UserID)
	}
	for _, t := range transports {
		ids = append(ids, t.TransporterID)
	}
	for _, p := range processings {
		ids = append(ids, p.ProcessorID)
	}
	n, err := a.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	labs := make([]LabTestView, 0, len(b.LabTests))
	for i := range b.LabTests {
		labs = append(labs, *n.lab(&b.LabTests[i]))
	}
	collectorViews := make([]CollectorView, 0, len(collectors))
	for _, c := range collectors {
		collectorViews = append(collectorViews, n.collector(c))
	}
	processingViews := make([]ProcessingView, 0, len(processings))
	for i := range processings {
		processingViews = append(processingViews, *n.processing(&processings[i]))
	}

	return &ProductChain{
		ProductBatch: ProductBatchView{
			ProductBatch: *b,
			Manufacturer: n.ref(b.ManufacturerID),
			LabTests:     labs,
		},
		Collectors: collectorViews,
		Transport:  n.transports(transports),
		Processing: processingViews,
	}, nil
}

func distinctCollectors(labs []models.LabTest) []string {
	seen := make(map[string]struct{}, len(labs))
	out := make([]string, 0, len(labs))
	for _, l := range labs {
		if _, ok := seen[l.CollectorID]; ok {
			continue
		}
		seen[l.CollectorID] = struct{}{}
		out = append(out, l.CollectorID)
	}
	return out
}

// ListChains materializes one summary per collector for the overview
// dashboard. A chain is completed once it has both processing and a lab test.
func (a *Assembler) ListChains(ctx context.Context) ([]ChainSummary, error) {
	defer observe("list", time.Now())

	collectors, err := a.store.AllCollectors(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	transports, err := a.store.AllTransports(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	processings, err := a.store.AllProcessings(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	labs, err := a.store.AllLabTests(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	ids := make([]string, 0, len(collectors)+len(transports)+len(processings)+len(labs))
	transportsBy := make(map[string][]models.Transport)
	for _, t := range transports {
		transportsBy[t.CollectorID] = append(transportsBy[t.CollectorID], t)
		ids = append(ids, t.TransporterID)
	}
	// both lists are newest first, so the first hit is the latest record
	processingBy := make(map[string]*models.Processing)
	for i := range processings {
		p := &processings[i]
		if _, ok := processingBy[p.CollectorID]; !ok {
			processingBy[p.CollectorID] = p
			ids = append(ids, p.ProcessorID)
		}
	}
	labBy := make(map[string]*models.LabTest)
	for i := range labs {
		l := &labs[i]
		if _, ok := labBy[l.CollectorID]; !ok {
			labBy[l.CollectorID] = l
			ids = append(ids, l.LabTechnicianID)
		}
	}
	for _, c := range collectors {
		ids = append(ids, c.UserID)
	}

	n, err := a.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ChainSummary, 0, len(collectors))
	for _, c := range collectors {
		p := processingBy[c.ID]
		l := labBy[c.ID]
		out = append(out, ChainSummary{
			ID:         c.ID,
			Collector:  n.collector(c),
			Transport:  n.transports(transportsBy[c.ID]),
			Processing: n.processing(p),
			Lab:        n.lab(l),
			Completed:  p != nil && l != nil,
		})
	}
	return out, nil
}

// LabBatches lists lab-tested lots newest first for composing product batches.
func (a *Assembler) LabBatches(ctx context.Context) ([]LabBatch, error) {
	defer observe("lab_batches", time.Now())

	labs, err := a.store.AllLabTests(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	collectors, err := a.store.Collectors(ctx, distinctCollectors(labs))
	if err != nil {
		return nil, storageErr(err)
	}

	ids := make([]string, 0, len(collectors))
	byID := make(map[string]models.Collector, len(collectors))
	for _, c := range collectors {
		byID[c.ID] = c
		ids = append(ids, c.UserID)
	}
	n, err := a.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]LabBatch, 0, len(labs))
	for _, l := range labs {
		var cv *CollectorView
		if c, ok := byID[l.CollectorID]; ok {
			v := n.collector(c)
			cv = &v
		}
		out = append(out, LabBatch{
			ID:               l.ID,
			LabTestID:        l.ID,
			CollectorID:      l.CollectorID,
			Collector:        cv,
			TestedQuantityKg: l.TestedQuantityKg,
			TestType:         l.TestType,
			Result:           l.Result,
			CreatedAt:        l.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

func (a *Assembler) resolve(ctx context.Context, ids []string) (names, error) {
	m, err := a.users.Usernames(ctx, ids)
	if err != nil {
		return nil, storageErr(err)
	}
	return names(m), nil
}
