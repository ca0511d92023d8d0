package stage

import (
	"strings"

	"herbtrace-backend/internal/models"
)

type LocationInput struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

func (l *LocationInput) model() models.Location {
	if l == nil {
		return models.Location{}
	}
	return models.Location{Lat: l.Lat, Lng: l.Lng}
}

type SensorsInput struct {
	Temperature  *string `json:"temperature"`
	Humidity     *string `json:"humidity"`
	SoilMoisture *string `json:"soilMoisture"`
	PH           *string `json:"pH"`
}

func (s *SensorsInput) model() models.Sensors {
	if s == nil {
		return models.Sensors{}
	}
	return models.Sensors{
		Temperature:  blankToNil(s.Temperature),
		Humidity:     blankToNil(s.Humidity),
		SoilMoisture: blankToNil(s.SoilMoisture),
		PH:           blankToNil(s.PH),
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// CollectorInput: location is optional, but when given both halves must be present.
type CollectorInput struct {
	Species     string             `json:"species" validate:"required"`
	Quantity    *float64           `json:"quantity" validate:"required,gt=0"`
	FarmingType models.FarmingType `json:"farmingType" validate:"required,enum"`
	PlantPart   models.PlantPart   `json:"plantPart" validate:"required,enum"`
	Location    *LocationInput     `json:"location" validate:"omitempty"`
	Sensors     *SensorsInput      `json:"sensors"`
}

type TransportInput struct {
	CollectorID string         `json:"collectorId" validate:"required"`
	QuantityKg  *float64       `json:"quantityKg" validate:"required,gt=0"`
	Location    *LocationInput `json:"location" validate:"required"`
	Destination string         `json:"destination" validate:"required"`
}

// ProcessingInput does not require processedQuantityKg <= receivedQuantityKg;
// the form enforces that client side.
type ProcessingInput struct {
	CollectorID         string                `json:"collectorId" validate:"required"`
	ReceivedQuantityKg  *float64              `json:"receivedQuantityKg" validate:"required,gt=0"`
	ProcessedQuantityKg *float64              `json:"processedQuantityKg" validate:"required,gt=0"`
	ProcessingType      models.ProcessingType `json:"processingType" validate:"required,enum"`
	Location            *LocationInput        `json:"location" validate:"required"`
}

type LabTestInput struct {
	CollectorID      string          `json:"collectorId" validate:"required"`
	TestedQuantityKg *float64        `json:"testedQuantityKg" validate:"required,gt=0"`
	TestType         models.TestType `json:"testType" validate:"required,enum"`
	Result           string          `json:"result" validate:"required"`
	CertificateLinks []string        `json:"certificateLinks"`
	Location         *LocationInput  `json:"location" validate:"required"`
}

// ProductBatchInput has no manufacturer field: the batch always belongs to the caller.
type ProductBatchInput struct {
	BatchIDs         []string          `json:"batchIds" validate:"required,min=1,dive,required"`
	ProductName      string            `json:"productName" validate:"required"`
	Quantity         *float64          `json:"quantity" validate:"omitempty,gte=0"`
	WeightPerProduct *float64          `json:"weightPerProduct" validate:"omitempty,gte=0"`
	Location         string            `json:"location"`
	VedaUsed         models.SourceText `json:"vedaUsed" validate:"required,enum"`
}

func (in *CollectorInput) normalize() {
	in.Species = strings.TrimSpace(in.Species)
}

func (in *TransportInput) normalize() {
	in.CollectorID = strings.TrimSpace(in.CollectorID)
	in.Destination = strings.TrimSpace(in.Destination)
}

func (in *ProcessingInput) normalize() {
	in.CollectorID = strings.TrimSpace(in.CollectorID)
}

func (in *LabTestInput) normalize() {
	in.CollectorID = strings.TrimSpace(in.CollectorID)
	in.Result = strings.TrimSpace(in.Result)
	links := make([]string, 0, len(in.CertificateLinks))
	for _, l := range in.CertificateLinks {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	in.CertificateLinks = links
}

func (in *ProductBatchInput) normalize() {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Location = strings.TrimSpace(in.Location)

	seen := make(map[string]struct{}, len(in.BatchIDs))
	ids := make([]string, 0, len(in.BatchIDs))
	for _, id := range in.BatchIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	in.BatchIDs = ids
}
