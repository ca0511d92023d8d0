package models

// Each enumeration is a closed string type: the stored value is the wire value,
// the label table drives display and membership checks.

type FarmingType string

const (
	FarmingOrganic      FarmingType = "Organic"
	FarmingConventional FarmingType = "Conventional"
	FarmingWild         FarmingType = "Wild"
)

var farmingLabels = map[FarmingType]string{
	FarmingOrganic:      "Organic",
	FarmingConventional: "Conventional",
	FarmingWild:         "Wild harvested",
}

func (f FarmingType) Valid() bool {
	_, ok := farmingLabels[f]
	return ok
}

func (f FarmingType) Label() string { return farmingLabels[f] }

type PlantPart string

const (
	PartLeaf       PlantPart = "Leaf"
	PartRoot       PlantPart = "Root"
	PartStem       PlantPart = "Stem"
	PartFlower     PlantPart = "Flower"
	PartSeed       PlantPart = "Seed"
	PartRhizome    PlantPart = "Rhizome"
	PartTubers     PlantPart = "Tubers"
	PartWholePlant PlantPart = "Whole Plant"
	PartBark       PlantPart = "Bark"
	PartHeartwood  PlantPart = "Heartwood"
	PartStigma     PlantPart = "Stigma"
	PartMycelium   PlantPart = "Mycelium"
)

var plantPartLabels = map[PlantPart]string{
	PartLeaf:       "Leaf",
	PartRoot:       "Root",
	PartStem:       "Stem",
	PartFlower:     "Flower",
	PartSeed:       "Seed",
	PartRhizome:    "Rhizome",
	PartTubers:     "Tubers",
	PartWholePlant: "Whole plant",
	PartBark:       "Bark",
	PartHeartwood:  "Heartwood",
	PartStigma:     "Stigma",
	PartMycelium:   "Mycelium",
}

func (p PlantPart) Valid() bool {
	_, ok := plantPartLabels[p]
	return ok
}

func (p PlantPart) Label() string { return plantPartLabels[p] }

type ProcessingType string

const (
	ProcessingSorting ProcessingType = "sorting"
	ProcessingGrading ProcessingType = "grading"
	ProcessingDrying  ProcessingType = "drying"
	ProcessingPacking ProcessingType = "packing"
	ProcessingOther   ProcessingType = "other"
)

var processingLabels = map[ProcessingType]string{
	ProcessingSorting: "Sorting",
	ProcessingGrading: "Grading",
	ProcessingDrying:  "Drying",
	ProcessingPacking: "Packing",
	ProcessingOther:   "Other",
}

func (p ProcessingType) Valid() bool {
	_, ok := processingLabels[p]
	return ok
}

func (p ProcessingType) Label() string { return processingLabels[p] }

type TestType string

const (
	TestMoisture      TestType = "moisture"
	TestContamination TestType = "contamination"
	TestPH            TestType = "pH"
	TestChemical      TestType = "chemical"
	TestOther         TestType = "other"
)

var testLabels = map[TestType]string{
	TestMoisture:      "Moisture",
	TestContamination: "Contamination",
	TestPH:            "pH",
	TestChemical:      "Chemical",
	TestOther:         "Other",
}

func (t TestType) Valid() bool {
	_, ok := testLabels[t]
	return ok
}

func (t TestType) Label() string { return testLabels[t] }

// SourceText is the classical text a product formulation follows.
type SourceText string

const (
	SourceRigVeda     SourceText = "Rig Veda"
	SourceSamaVeda    SourceText = "Sama Veda"
	SourceYajurVeda   SourceText = "Yajur Veda"
	SourceAtharvaVeda SourceText = "Atharva Veda"
)

var sourceTextLabels = map[SourceText]string{
	SourceRigVeda:     "Rig Veda",
	SourceSamaVeda:    "Sama Veda",
	SourceYajurVeda:   "Yajur Veda",
	SourceAtharvaVeda: "Atharva Veda",
}

func (s SourceText) Valid() bool {
	_, ok := sourceTextLabels[s]
	return ok
}

func (s SourceText) Label() string { return sourceTextLabels[s] }
