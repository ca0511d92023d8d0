// Package qr builds the payloads that carry a chain forward from one stage to
// the next, and renders them as PNG data URLs for the scanning frontend.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/skip2/go-qrcode"
)

// LabTestPrefix marks a payload that names a lab test rather than a collector.
const LabTestPrefix = "LabTestID:"

// CollectorToken is the payload of the collector, transport and processing stages.
func CollectorToken(collectorID string) string {
	return collectorID
}

func LabTestToken(labTestID string) string {
	return LabTestPrefix + labTestID
}

// StripLabTestPrefix accepts either a bare lab test id or its prefixed token.
func StripLabTestPrefix(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), LabTestPrefix)
}

type ProductBatchPayload struct {
	ProductBatchID string `json:"productBatchId"`
	ManufacturerID string `json:"manufacturerId"`
}

func ProductBatchToken(batchID, manufacturerID string) (string, error) {
	b, err := json.Marshal(ProductBatchPayload{ProductBatchID: batchID, ManufacturerID: manufacturerID})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type Encoder struct {
	size int
}

func NewEncoder(size int) *Encoder {
	return &Encoder{size: size}
}

// DataURL encodes the payload as a base64 PNG data URL.
func (e *Encoder) DataURL(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, e.size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
