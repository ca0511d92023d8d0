package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabTestBeforeCreate(t *testing.T) {
	l := &LabTest{CollectorID: "c-1", TestType: TestMoisture, Result: "8%"}
	require.NoError(t, l.BeforeCreate(nil))

	assert.NotEmpty(t, l.ID)
	assert.NotNil(t, l.CertificateLinks)
	assert.Empty(t, l.CertificateLinks)

	kept := &LabTest{ID: "l-1"}
	require.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "l-1", kept.ID)
}

func TestProductBatchCarriesLabTests(t *testing.T) {
	b := ProductBatch{LabTests: []LabTest{{ID: "l-1"}, {ID: "l-2"}}}
	assert.Len(t, b.LabTests, 2)
}
