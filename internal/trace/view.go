package trace

import (
	"herbtrace-backend/internal/models"
)

// UserRef is an owner reference resolved for display. Username is empty when
// the user no longer exists.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type CollectorView struct {
	models.Collector
	User UserRef `json:"user"`
}

type TransportView struct {
	models.Transport
	Transporter UserRef `json:"transporter"`
}

type ProcessingView struct {
	models.Processing
	Processor UserRef `json:"processor"`
}

type LabTestView struct {
	models.LabTest
	LabTechnician UserRef `json:"labTechnician"`
}

// ProductBatchView replaces the embedded lab tests with resolved views.
type ProductBatchView struct {
	models.ProductBatch
	Manufacturer UserRef       `json:"manufacturer"`
	LabTests     []LabTestView `json:"labTests"`
}

// Chain is one collector lot with its downstream stages. Processing and Lab
// are nil when no record exists yet.
type Chain struct {
	Collector  CollectorView   `json:"collector"`
	Transport  []TransportView `json:"transport"`
	Processing *ProcessingView `json:"processing"`
	Lab        *LabTestView    `json:"lab"`
}

type ChainSummary struct {
	ID         string          `json:"id"`
	Collector  CollectorView   `json:"collector"`
	Transport  []TransportView `json:"transport"`
	Processing *ProcessingView `json:"processing"`
	Lab        *LabTestView    `json:"lab"`
	Completed  bool            `json:"completed"`
}

// ProductChain is the consumer view of a manufactured batch. Transport and
// processing records are flat lists; callers correlate them by collectorId.
type ProductChain struct {
	ProductBatch ProductBatchView `json:"productBatch"`
	Collectors   []CollectorView  `json:"collectors"`
	Transport    []TransportView  `json:"transport"`
	Processing   []ProcessingView `json:"processing"`
}

type LabBatch struct {
	ID               string          `json:"id"`
	LabTestID        string          `json:"labTestId"`
	CollectorID      string          `json:"collectorId"`
	Collector        *CollectorView  `json:"collector"`
	TestedQuantityKg float64         `json:"testedQuantityKg"`
	TestType         models.TestType `json:"testType"`
	Result           string          `json:"result"`
	CreatedAt        string          `json:"createdAt"`
}

type names map[string]string

func (n names) ref(id string) UserRef {
	return UserRef{ID: id, Username: n[id]}
}

func (n names) collector(c models.Collector) CollectorView {
	return CollectorView{Collector: c, User: n.ref(c.UserID)}
}

func (n names) transports(ts []models.Transport) []TransportView {
	out := make([]TransportView, 0, len(ts))
	for _, t := range ts {
		out = append(out, TransportView{Transport: t, Transporter: n.ref(t.TransporterID)})
	}
	return out
}

func (n names) processing(p *models.Processing) *ProcessingView {
	if p == nil {
		return nil
	}
	return &ProcessingView{Processing: *p, Processor: n.ref(p.ProcessorID)}
}

func (n names) lab(l *models.LabTest) *LabTestView {
	if l == nil {
		return nil
	}
	return &LabTestView{LabTest: *l, LabTechnician: n.ref(l.LabTechnicianID)}
}
